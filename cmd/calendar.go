package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/gcal"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the Google Calendar connection",
}

var calendarAuthCmd = &cobra.Command{
	Use:   "auth [CODE]",
	Short: "Authorize Google Calendar access",
	Long: `Without CODE, prints the consent URL and waits for Google to redirect the
browser to http://localhost:6789/oauth2callback. With CODE, exchanges it for a
token directly. Either way the token is stored in google.token_file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalendarAuth,
}

func init() {
	calendarCmd.AddCommand(calendarAuthCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	oauthCfg, err := gcal.OAuthConfig(cfg.ResolvePath(cfg.Google.CredentialsFile))
	if err != nil {
		return err
	}
	tokenFile := cfg.ResolvePath(cfg.Google.TokenFile)

	var code string
	if len(args) == 1 {
		code = args[0]
	} else {
		url := gcal.AuthURL(oauthCfg)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]string{"auth_url": url, "token_file": tokenFile})
		}
		fmt.Fprintf(os.Stdout, "Open this URL in your browser and grant calendar access:\n\n  %s\n\n", url)
		ln, err := gcal.Listen(oauthCfg.RedirectURL)
		if err != nil {
			fmt.Fprintln(os.Stdout, "Then run: lifereset calendar auth CODE")
			return nil
		}
		fmt.Fprintf(os.Stderr, "Waiting for the redirect to %s ...\n", oauthCfg.RedirectURL)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		code, err = gcal.WaitForCode(ctx, ln, gcal.RedirectPath(oauthCfg.RedirectURL))
		if err != nil {
			return clierr.Newf(clierr.CalendarUnavailable, "waiting for authorization: %v", err)
		}
	}

	if strings.TrimSpace(code) == "" {
		return clierr.New(clierr.InvalidInput, "authorization code is empty")
	}
	if err := gcal.Authorize(cmd.Context(), oauthCfg, code, tokenFile); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"status": "authorized", "token_file": tokenFile})
	}
	output.Messagef(os.Stdout, "Saved Google Calendar token to %s", tokenFile)
	return nil
}

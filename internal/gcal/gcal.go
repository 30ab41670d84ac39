// Package gcal pushes scheduled sprint blocks to a Google Calendar.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

const (
	tokenFileMode = 0o600
	// taskIDProperty is the private extended property holding the task ID.
	taskIDProperty = "lifereset_task_id"
	// oobRedirect is the retired out-of-band redirect some older client
	// secret files still carry.
	oobRedirect = "urn:ietf:wg:oauth:2.0:oob"
	// CallbackPort is the loopback port the consent redirect lands on.
	CallbackPort = "6789"
	// CallbackPath is the path of the consent redirect.
	CallbackPath = "/oauth2callback"
	// authState is echoed back by Google on the consent redirect.
	authState = "lifereset"
)

// Options locate the OAuth files and the target calendar.
type Options struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

// Client inserts events into one calendar.
type Client struct {
	srv        *calendar.Service
	calendarID string
}

// OAuthConfig reads the client secrets file downloaded from the Google
// Cloud console.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile) //nolint:gosec // path from planner config
	if err != nil {
		return nil, clierr.Newf(clierr.CalendarUnavailable,
			"unable to read client secret file %s: %v", credentialsFile, err).
			WithDetails(map[string]any{"credentials_file": credentialsFile})
	}
	cfg, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}
	cfg.RedirectURL = loopbackRedirect(cfg.RedirectURL)
	return cfg, nil
}

// AuthURL returns the URL the user opens to grant calendar access.
func AuthURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL(authState, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Authorize exchanges an authorization code for a token and stores it.
func Authorize(ctx context.Context, cfg *oauth2.Config, code, tokenFile string) error {
	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return SaveToken(tokenFile, tok)
}

// LoadToken reads a token previously written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) //nolint:gosec // path from planner config
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, tokenFileMode); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// New builds an authenticated client. It fails with CALENDAR_UNAVAILABLE
// and the authorization URL when no token has been stored yet.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := OAuthConfig(opts.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(opts.TokenFile)
	if err != nil {
		return nil, clierr.Newf(clierr.CalendarUnavailable,
			"no Google token at %s; run 'lifereset calendar auth' to grant access", opts.TokenFile).
			WithDetails(map[string]any{
				"token_file": opts.TokenFile,
				"auth_url":   AuthURL(cfg),
			})
	}

	srv, err := calendar.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return NewWithService(srv, opts.CalendarID), nil
}

// NewWithService wraps an existing calendar service.
func NewWithService(srv *calendar.Service, calendarID string) *Client {
	return &Client{srv: srv, calendarID: calendarID}
}

// EventFromBlock converts a block into a calendar event. Blocks without
// notes get fallback as their description.
func EventFromBlock(b planner.Block, fallback string) *calendar.Event {
	desc := b.Task.Notes
	if desc == "" {
		desc = fallback
	}
	return &calendar.Event{
		Summary:     b.Task.Title,
		Description: desc,
		Start:       &calendar.EventDateTime{DateTime: b.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: b.End.Format(time.RFC3339)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: strconv.Itoa(b.Task.ID)},
		},
	}
}

// Push inserts one event per block, in order. It stops at the first failure
// and returns the events created so far.
func (c *Client) Push(ctx context.Context, blocks []planner.Block, fallback string) ([]*calendar.Event, error) {
	created := make([]*calendar.Event, 0, len(blocks))
	for _, b := range blocks {
		ev, err := c.srv.Events.Insert(c.calendarID, EventFromBlock(b, fallback)).Context(ctx).Do()
		if err != nil {
			return created, fmt.Errorf("inserting %q: %w", b.Task.Title, err)
		}
		created = append(created, ev)
	}
	return created, nil
}

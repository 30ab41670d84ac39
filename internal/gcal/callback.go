package gcal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const callbackTimeout = 10 * time.Second

// loopbackRedirect returns the redirect used for the consent flow. Empty
// and out-of-band redirects become http://localhost:CallbackPort/oauth2callback;
// loopback redirects without a port get CallbackPort. Anything else is kept.
func loopbackRedirect(redirect string) string {
	def := "http://localhost:" + CallbackPort + CallbackPath
	if redirect == "" || redirect == oobRedirect {
		return def
	}
	u, err := url.Parse(redirect)
	if err != nil {
		return def
	}
	if !isLoopback(u.Hostname()) {
		return redirect
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), CallbackPort)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = CallbackPath
	}
	return u.String()
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// RedirectPath returns the path component of redirect, or CallbackPath.
func RedirectPath(redirect string) string {
	u, err := url.Parse(redirect)
	if err != nil || u.Path == "" {
		return CallbackPath
	}
	return u.Path
}

// Listen opens the loopback listener named by redirect. It fails when the
// redirect does not point at this machine.
func Listen(redirect string) (net.Listener, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect %q: %w", redirect, err)
	}
	if !isLoopback(u.Hostname()) || u.Port() == "" {
		return nil, fmt.Errorf("redirect %q is not a loopback address", redirect)
	}
	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listening for the consent redirect on %s: %w", u.Host, err)
	}
	return ln, nil
}

// WaitForCode serves ln until Google redirects to path with an
// authorization code, and returns that code. It stops when ctx is done.
func WaitForCode(ctx context.Context, ln net.Listener, path string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)
	report := func(r result) {
		select {
		case results <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "Authorization was denied.", http.StatusBadRequest)
			report(result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		case q.Get("state") != authState:
			http.Error(w, "Unexpected state.", http.StatusBadRequest)
			report(result{err: errors.New("authorization redirect carried an unexpected state")})
		case q.Get("code") == "":
			http.Error(w, "Authorization code not found.", http.StatusBadRequest)
			report(result{err: errors.New("authorization code not found in redirect")})
		default:
			fmt.Fprintln(w, "lifereset is authorized. You can close this window.")
			report(result{code: q.Get("code")})
		}
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: callbackTimeout,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(result{err: fmt.Errorf("serving consent redirect: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case r := <-results:
		return r.code, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

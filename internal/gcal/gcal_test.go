package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const testSecrets = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret",` +
	`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestEventFromBlock(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2026, 10, 19, 15, 5, 0, 0, loc)
	b := planner.Block{
		Task:  &task.Task{ID: 7, Title: "Pay bill", Effort: 20},
		Start: start,
		End:   start.Add(20 * time.Minute),
	}

	ev := EventFromBlock(b, "Life Reset sprint task")
	if ev.Summary != "Pay bill" {
		t.Errorf("Summary = %q", ev.Summary)
	}
	if ev.Description != "Life Reset sprint task" {
		t.Errorf("Description = %q", ev.Description)
	}
	if ev.Start.DateTime != "2026-10-19T15:05:00+02:00" || ev.End.DateTime != "2026-10-19T15:25:00+02:00" {
		t.Errorf("times = %s .. %s", ev.Start.DateTime, ev.End.DateTime)
	}
	if got := ev.ExtendedProperties.Private[taskIDProperty]; got != "7" {
		t.Errorf("task id property = %q", got)
	}

	b.Task.Notes = "bring receipts"
	if ev := EventFromBlock(b, "fallback"); ev.Description != "bring receipts" {
		t.Errorf("Description with notes = %q", ev.Description)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer"}
	if err := SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != tokenFileMode {
		t.Errorf("mode = %v", info.Mode().Perm())
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("LoadToken = %+v", got)
	}
}

func TestOAuthConfigMissingFile(t *testing.T) {
	_, err := OAuthConfig(filepath.Join(t.TempDir(), "credentials.json"))
	var ce *clierr.Error
	if !errors.As(err, &ce) || ce.Code != clierr.CalendarUnavailable {
		t.Fatalf("err = %v, want CALENDAR_UNAVAILABLE", err)
	}
}

func TestNewWithoutTokenReturnsAuthURL(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(creds, []byte(testSecrets), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := New(context.Background(), Options{
		CredentialsFile: creds,
		TokenFile:       filepath.Join(dir, "token.json"),
		CalendarID:      "primary",
	})
	var ce *clierr.Error
	if !errors.As(err, &ce) || ce.Code != clierr.CalendarUnavailable {
		t.Fatalf("err = %v, want CALENDAR_UNAVAILABLE", err)
	}
	url, _ := ce.Details["auth_url"].(string)
	if !strings.HasPrefix(url, "https://accounts.google.com/") || !strings.Contains(url, "access_type=offline") {
		t.Errorf("auth_url = %q", url)
	}
}

func TestEventFromBlockKeepsWhitespaceNotes(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	b := planner.Block{
		Task:  &task.Task{ID: 3, Title: "Stretch", Effort: 10, Notes: "  "},
		Start: start,
		End:   start.Add(10 * time.Minute),
	}
	if ev := EventFromBlock(b, "fallback"); ev.Description != "  " {
		t.Errorf("Description = %q, want the notes unchanged", ev.Description)
	}
}

// fakeCalendar records inserted events and fails the insert numbered failAt.
type fakeCalendar struct {
	mu       sync.Mutex
	failAt   int
	paths    []string
	inserted []calendar.Event
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/events") {
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
		return
	}
	var ev calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, `{"error":{"code":400,"message":"bad body"}}`, http.StatusBadRequest)
		return
	}
	f.paths = append(f.paths, r.URL.Path)
	if len(f.paths) == f.failAt {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"invalid event"}}`))
		return
	}
	f.inserted = append(f.inserted, ev)
	ev.Id = fmt.Sprintf("ev%d", len(f.inserted))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ev)
}

func newTestClient(t *testing.T, fake *fakeCalendar) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "primary")
}

func testBlocks() []planner.Block {
	start := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	titles := []string{"Pay bill", "Call mum", "Water plants"}
	blocks := make([]planner.Block, 0, len(titles))
	for i, title := range titles {
		end := start.Add(15 * time.Minute)
		blocks = append(blocks, planner.Block{
			Task:  &task.Task{ID: i + 1, Title: title, Effort: 15},
			Start: start,
			End:   end,
		})
		start = end
	}
	return blocks
}

func TestPushInsertsEventsInOrder(t *testing.T) {
	fake := &fakeCalendar{}
	c := newTestClient(t, fake)

	events, err := c.Push(context.Background(), testBlocks(), "sprint task")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(events) != 3 || events[0].Id != "ev1" || events[2].Id != "ev3" {
		t.Fatalf("events = %+v", events)
	}

	wantTitles := []string{"Pay bill", "Call mum", "Water plants"}
	for i, ev := range fake.inserted {
		if ev.Summary != wantTitles[i] {
			t.Errorf("insert %d summary = %q, want %q", i, ev.Summary, wantTitles[i])
		}
		if ev.Description != "sprint task" {
			t.Errorf("insert %d description = %q", i, ev.Description)
		}
		if got := ev.ExtendedProperties.Private[taskIDProperty]; got != fmt.Sprint(i+1) {
			t.Errorf("insert %d task id = %q", i, got)
		}
	}
	if fake.inserted[1].Start.DateTime != "2026-10-19T15:15:00Z" || fake.inserted[1].End.DateTime != "2026-10-19T15:30:00Z" {
		t.Errorf("second event = %s .. %s", fake.inserted[1].Start.DateTime, fake.inserted[1].End.DateTime)
	}
	if fake.paths[0] != "/calendars/primary/events" {
		t.Errorf("path = %q", fake.paths[0])
	}
}

func TestPushStopsAtFirstFailure(t *testing.T) {
	fake := &fakeCalendar{failAt: 2}
	c := newTestClient(t, fake)

	events, err := c.Push(context.Background(), testBlocks(), "sprint task")
	if err == nil {
		t.Fatal("Push succeeded, want error")
	}
	if !strings.Contains(err.Error(), `"Call mum"`) {
		t.Errorf("err = %v, want the failing title", err)
	}
	if len(events) != 1 || events[0].Summary != "Pay bill" {
		t.Errorf("events = %+v, want only the first", events)
	}
	if len(fake.paths) != 2 {
		t.Errorf("requests = %d, want no insert after the failure", len(fake.paths))
	}
}

func TestLoopbackRedirect(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "http://localhost:6789/oauth2callback"},
		{oobRedirect, "http://localhost:6789/oauth2callback"},
		{"http://localhost", "http://localhost:6789/oauth2callback"},
		{"http://127.0.0.1/cb", "http://127.0.0.1:6789/cb"},
		{"http://localhost:9000/oauth2callback", "http://localhost:9000/oauth2callback"},
		{"https://example.com/callback", "https://example.com/callback"},
	}
	for _, tt := range tests {
		if got := loopbackRedirect(tt.in); got != tt.want {
			t.Errorf("loopbackRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOAuthConfigUsesLoopbackRedirect(t *testing.T) {
	creds := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(creds, []byte(testSecrets), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := OAuthConfig(creds)
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if cfg.RedirectURL != "http://localhost:6789/oauth2callback" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	if !strings.Contains(AuthURL(cfg), "redirect_uri=http%3A%2F%2Flocalhost%3A6789%2Foauth2callback") {
		t.Errorf("AuthURL = %q", AuthURL(cfg))
	}
}

func TestListenRejectsRemoteRedirect(t *testing.T) {
	if _, err := Listen("https://example.com/callback"); err == nil {
		t.Error("Listen accepted a remote redirect")
	}
}

func TestWaitForCode(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "code", query: "state=lifereset&code=4%2Fabc", want: "4/abc"},
		{name: "wrong state", query: "state=other&code=abc", wantErr: true},
		{name: "denied", query: "state=lifereset&error=access_denied", wantErr: true},
		{name: "no code", query: "state=lifereset", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatal(err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			type result struct {
				code string
				err  error
			}
			done := make(chan result, 1)
			go func() {
				code, err := WaitForCode(ctx, ln, CallbackPath)
				done <- result{code, err}
			}()

			resp, err := http.Get("http://" + ln.Addr().String() + CallbackPath + "?" + tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()

			r := <-done
			if tt.wantErr {
				if r.err == nil {
					t.Errorf("WaitForCode = %q, want error", r.code)
				}
				return
			}
			if r.err != nil || r.code != tt.want {
				t.Errorf("WaitForCode = %q, %v; want %q", r.code, r.err, tt.want)
			}
		})
	}
}

func TestWaitForCodeCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := WaitForCode(ctx, ln, CallbackPath); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

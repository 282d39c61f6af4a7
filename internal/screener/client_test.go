package screener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string, opts Options) *Client {
	c := NewClient(baseURL, opts, testLogger())
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestSearch(t *testing.T) {
	var gotQuery, gotV, gotFts string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/company/search/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotV = r.URL.Query().Get("v")
		gotFts = r.URL.Query().Get("fts")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 2726, "name": "Tata Motors Ltd", "code": "TATAMOTORS", "url": "/company/TATAMOTORS/"},
			{"name": "stray heading row"},
			{"id": 3365, "name": "Tata Steel Ltd", "url": "/company/TATASTEEL/"}
		]`)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{})
	// Four runes, twelve bytes.
	companies, err := c.Search(context.Background(), "टाटा")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "टाटा" {
		t.Errorf("expected query %q, got %q", "टाटा", gotQuery)
	}
	if gotV != "4" {
		t.Errorf("expected v=4 (rune count), got %q", gotV)
	}
	if gotFts != "1" {
		t.Errorf("expected fts=1, got %q", gotFts)
	}

	if len(companies) != 2 {
		t.Fatalf("expected 2 candidates after id filter, got %d", len(companies))
	}
	if companies[0].ID != 2726 || companies[0].Name != "Tata Motors Ltd" || companies[0].Code != "TATAMOTORS" {
		t.Errorf("unexpected first candidate: %+v", companies[0])
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{})
	if _, err := c.Search(context.Background(), "tata"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		company Company
		want    string
	}{
		{Company{ID: 1, Name: "Reliance Industries", Code: "RELIANCE"}, "/company/RELIANCE/"},
		{Company{ID: 2, Name: "Tata Steel", URL: "/company/TATASTEEL/consolidated/"}, "/company/TATASTEEL/consolidated/"},
		{Company{ID: 3, Name: "M&M"}, "/company/M&M/"},
	}
	for _, tt := range tests {
		if got := tt.company.PagePath(); got != tt.want {
			t.Errorf("PagePath(%+v): expected %q, got %q", tt.company, tt.want, got)
		}
	}
}

func TestFetchPage(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/RELIANCE/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html><body>page</body></html>")
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{})
	page, err := c.FetchPage(context.Background(), "/company/RELIANCE/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(page, "page") {
		t.Errorf("unexpected page body %q", page)
	}
	if gotUA != DefaultUserAgents[0] {
		t.Errorf("expected first user agent on attempt 0, got %q", gotUA)
	}
}

func TestFetchPage_NotFoundIsFinal(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{})
	_, err := c.FetchPage(context.Background(), "/company/NOPE/")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if hits != 1 {
		t.Errorf("expected a single attempt for a 404, got %d", hits)
	}

	snap := c.Stats.Snapshot()
	if snap.Count != 1 || snap.Failures != 1 {
		t.Errorf("expected 1 failed sample, got count=%d failures=%d", snap.Count, snap.Failures)
	}
}

func TestFetchPage_RetriesTransientFailures(t *testing.T) {
	hits := 0
	var agents []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		agents = append(agents, r.Header.Get("User-Agent"))
		if hits < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "recovered")
	}))
	defer ts.Close()

	uas := []string{"agent-a", "agent-b"}
	c := newTestClient(ts.URL, Options{UserAgents: uas})
	page, err := c.FetchPage(context.Background(), "/company/X/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != "recovered" {
		t.Errorf("expected %q, got %q", "recovered", page)
	}
	if hits != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}

	// Attempt n wears uas[n % len(uas)].
	want := []string{"agent-a", "agent-b", "agent-a"}
	for i, ua := range agents {
		if ua != want[i] {
			t.Errorf("attempt %d: expected agent %q, got %q", i, want[i], ua)
		}
	}

	snap := c.Stats.Snapshot()
	if snap.Count != 3 || snap.Failures != 2 {
		t.Errorf("expected 3 samples with 2 failures, got count=%d failures=%d", snap.Count, snap.Failures)
	}
}

func TestFetchPage_ExhaustsRetryBudget(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{Retries: 3})
	_, err := c.FetchPage(context.Background(), "/company/X/")
	if err == nil {
		t.Fatal("expected an error")
	}
	if hits != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", hits)
	}
	if !strings.Contains(err.Error(), "attempts exhausted") {
		t.Errorf("unexpected error: %v", err)
	}
	if !IsRetryable(err) {
		t.Errorf("exhaustion error should still unwrap to the retryable cause: %v", err)
	}
}

func TestFetchPage_CapsBodySize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", 4096))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{MaxPageBytes: 128})
	page, err := c.FetchPage(context.Background(), "/company/X/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 128 {
		t.Errorf("expected body capped at 128 bytes, got %d", len(page))
	}
}

func TestFetchDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/fy24.pdf" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{})
	data, err := c.FetchDocument(context.Background(), ts.URL+"/reports/fy24.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("unexpected document body %q", data)
	}
}

func TestBackoffBounds(t *testing.T) {
	for range 20 {
		if d := Backoff(0); d < time.Second || d >= 1500*time.Millisecond {
			t.Fatalf("attempt 0 backoff out of range: %v", d)
		}
		if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
			t.Fatalf("capped backoff out of range: %v", d)
		}
	}
}

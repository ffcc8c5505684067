package registry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.EscapedPath() {
		case "/left-pad/latest":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"left-pad","version":"1.3.0"}`))
		case "/@scope%2Fwidget/latest":
			_, _ = w.Write([]byte(`{"version":"2.0.1"}`))
		case "/broken/latest":
			_, _ = w.Write([]byte(`{"version":`))
		case "/unversioned/latest":
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, err := New(srv.URL+"/", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v, err := c.Latest(context.Background(), "left-pad")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if v != "1.3.0" {
		t.Errorf("version = %q, want 1.3.0", v)
	}

	if _, err := c.Latest(context.Background(), "left-pad"); err != nil {
		t.Fatalf("Latest (cached): %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("registry hit %d times, want 1", got)
	}
}

func TestLatestScoped(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v, err := c.Latest(context.Background(), "@scope/widget")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if v != "2.0.1" {
		t.Errorf("version = %q, want 2.0.1", v)
	}
}

func TestLatestFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, pkg := range []string{"missing", "broken", "unversioned"} {
		_, err := c.Latest(context.Background(), pkg)
		if !errors.Is(err, ErrLookup) {
			t.Errorf("%s: expected ErrLookup, got %v", pkg, err)
		}
	}

	// Failures are not cached.
	before := hits.Load()
	_, _ = c.Latest(context.Background(), "broken")
	if hits.Load() != before+1 {
		t.Error("failed lookup was cached")
	}
}

func TestLatestKeepsCause(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Latest(ctx, "left-pad")
	if !errors.Is(err, ErrLookup) || !errors.Is(err, context.Canceled) {
		t.Errorf("canceled lookup: expected ErrLookup wrapping context.Canceled, got %v", err)
	}

	_, err = c.Latest(context.Background(), "broken")
	if !errors.Is(err, ErrLookup) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated response: expected ErrLookup wrapping io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestVersions(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := c.Versions(context.Background(), []string{"left-pad", "@scope/widget"}, 2)
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if got["left-pad"] != "1.3.0" || got["@scope/widget"] != "2.0.1" {
		t.Errorf("unexpected versions: %v", got)
	}

	if _, err := c.Versions(context.Background(), []string{"left-pad", "missing"}, 1); !errors.Is(err, ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestVersionsEmpty(t *testing.T) {
	t.Parallel()

	c, err := New("http://127.0.0.1:0", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Versions(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no versions, got %v", got)
	}
}

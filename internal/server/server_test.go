package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/feed"
	"github.com/matzehuels/masonry/pkg/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gutter := 10.0
	s := New(Config{
		Grid:     feed.GridConfig{ColumnWidth: 100, Gutter: &gutter, MinCols: 3},
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		MaxItems: 20,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postLayout(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/layout", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp, data := postLayout(t, ts, `{
		"width": 330,
		"items": [
			{"id": "a", "height": 100}, {"id": "b", "height": 150}, {"id": "c", "height": 80},
			{"id": "d", "height": 120}, {"id": "e", "height": 90}, {"id": "f", "height": 110}
		]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var got LayoutResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.State != "stable" || got.Columns != 3 || got.Height != 280 {
		t.Errorf("response = %+v", got)
	}
	if len(got.Positions) != 6 {
		t.Fatalf("positions = %d", len(got.Positions))
	}
	d := got.Positions[3]
	if d.ID != "d" || d.Top != 90 || d.Left != 220 {
		t.Errorf("d = %+v", d)
	}
}

func TestLayoutOverrides(t *testing.T) {
	ts := newTestServer(t)
	resp, data := postLayout(t, ts, `{
		"width": 1000,
		"items": [{"height": 50}, {"height": 60, "span": 2}],
		"grid": {"layout": "flexible", "gutter": 0, "min_cols": 2}
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var got LayoutResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Columns != 10 || got.ColumnWidth != 100 {
		t.Errorf("geometry = %d x %v", got.Columns, got.ColumnWidth)
	}
	if got.Positions[0].ID == "" {
		t.Error("missing item id not generated")
	}
	if got.Positions[1].Width != 200 {
		t.Errorf("span width = %v", got.Positions[1].Width)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t)
	many := bytes.NewBufferString(`{"width": 300, "items": [`)
	for i := 0; i < 21; i++ {
		if i > 0 {
			many.WriteString(",")
		}
		many.WriteString(`{"height": 1}`)
	}
	many.WriteString("]}")

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"width": `, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"zero width", `{"width": 0, "items": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"negative height", `{"width": 300, "items": [{"height": -4}]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing height", `{"width": 300, "items": [{"height": 40}, {"title": "x"}]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad layout", `{"width": 300, "items": [], "grid": {"layout": "spiral"}}`, http.StatusBadRequest, errors.ErrCodeInvalidMode},
		{"too many", many.String(), http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postLayout(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body errorBody
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("error body: %v (%s)", err, data)
			}
			if body.Code != tt.code || body.Error == "" {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestDemo(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/demo?n=12&seed=3&width=700")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Positions) != 12 {
		t.Errorf("positions = %d, want 12", len(got.Positions))
	}

	for _, q := range []string{"?width=abc", "?n=x&width=500", "?n=100&width=500"} {
		resp, err := http.Get(ts.URL + "/v1/demo" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestDemoLimitCheckedFirst(t *testing.T) {
	ts := newTestServer(t)
	start := time.Now()
	resp, err := http.Get(ts.URL + "/v1/demo?n=2000000000&width=500")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != errors.ErrCodeInvalidInput || !strings.Contains(body.Error, "max 20") {
		t.Errorf("body = %+v", body)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("rejection took %v", d)
	}
}

func TestLayoutCache(t *testing.T) {
	gutter := 10.0
	store := cache.NewMemoryCache(8)
	s := New(Config{
		Grid:   feed.GridConfig{ColumnWidth: 100, Gutter: &gutter, MinCols: 3},
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
		Cache:  store,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	body := `{"width": 330, "items": [{"height": 100}, {"height": 150}]}`
	first, data1 := postLayout(t, ts, body)
	second, data2 := postLayout(t, ts, body)

	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if !bytes.Equal(data1, data2) {
		t.Errorf("cached body differs:\n%s\n%s", data1, data2)
	}

	other, _ := postLayout(t, ts, `{"width": 440, "items": [{"height": 100}, {"height": 150}]}`)
	if got := other.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("different width X-Cache = %q, want miss", got)
	}

	bad, _ := postLayout(t, ts, `{"width": 0, "items": []}`)
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", bad.StatusCode)
	}
	if store.Len() != 2 {
		t.Errorf("cache holds %d layouts, want 2 (errors are not cached)", store.Len())
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Logger: log.NewWithOptions(io.Discard, log.Options{})})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

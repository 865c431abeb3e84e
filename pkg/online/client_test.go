package online

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type mockResp struct {
	status int
	body   string
}

type mockRoundTripper struct {
	mu        sync.Mutex
	responses []mockResp
	requests  []*http.Request
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]

	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newMockClient(responses ...mockResp) (*Client, *mockRoundTripper) {
	var rt = &mockRoundTripper{responses: responses}
	return NewClient(WithHTTPClient(&http.Client{Transport: rt})), rt
}

const startFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestQueryBook(t *testing.T) {
	var c, rt = newMockClient(mockResp{status: http.StatusOK, body: "move:e2e4\x00"})
	move, err := c.QueryBook(context.Background(), startFen)
	if err != nil {
		t.Fatal(err)
	}
	if move != "e2e4" {
		t.Error(move)
	}
	var q = rt.requests[0].URL.Query()
	if q.Get("action") != "querybest" || q.Get("board") != startFen {
		t.Error(rt.requests[0].URL)
	}
}

func TestQueryBookUnknown(t *testing.T) {
	var c, _ = newMockClient(mockResp{status: http.StatusOK, body: "unknown"})
	_, err := c.QueryBook(context.Background(), startFen)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal(err)
	}
	if !c.Available() {
		t.Error("a miss must not count as a failure")
	}
}

func TestFailuresDisableClient(t *testing.T) {
	var c, rt = newMockClient(
		mockResp{status: http.StatusInternalServerError, body: "boom"},
		mockResp{status: http.StatusServiceUnavailable, body: "busy"},
		mockResp{status: http.StatusBadGateway, body: "bad"},
	)
	for i := 0; i < maxFailures; i++ {
		_, err := c.QueryBook(context.Background(), startFen)
		var httpErr httpError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected httpError, got %v", err)
		}
	}
	if c.Available() {
		t.Fatal("client must be disabled")
	}
	if _, err := c.QueryTablebase(context.Background(), startFen); !errors.Is(err, ErrUnavailable) {
		t.Error(err)
	}
	if len(rt.requests) != maxFailures {
		t.Error("disabled client sent a request")
	}
	c.ResetFailures()
	if !c.Available() {
		t.Error("reset must enable the client")
	}
}

func TestQueryTablebase(t *testing.T) {
	var server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fen") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"category":"win","dtz":1,"moves":[{"uci":"a7a8q","category":"loss"},{"uci":"a7a8r","category":"loss"}]}`))
	}))
	defer server.Close()

	var c = NewClient(WithTablebaseURL(server.URL))
	result, err := c.QueryTablebase(context.Background(), "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Move != "a7a8q" || !result.Win() || result.Loss() {
		t.Error(result)
	}
}

func TestQueryTablebaseNoMoves(t *testing.T) {
	var c, _ = newMockClient(mockResp{status: http.StatusOK, body: `{"category":"unknown","moves":[]}`})
	if _, err := c.QueryTablebase(context.Background(), startFen); !errors.Is(err, ErrNotFound) {
		t.Error(err)
	}
}

// Package online queries public opening book and endgame tablebase services.
package online

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const (
	DefaultBookURL      = "https://www.chessdb.cn/cdb.php"
	DefaultTablebaseURL = "https://tablebase.lichess.ovh/standard"

	// after this many consecutive failures the client stops querying
	maxFailures = 3
)

var (
	ErrNotFound    = errors.New("position not found")
	ErrUnavailable = errors.New("online service disabled after repeated failures")
)

type httpError struct {
	Status int
	Body   string
}

func (e httpError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }

type Client struct {
	httpc        *http.Client
	bookURL      string
	tablebaseURL string
	failures     atomic.Int32
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithBookURL(u string) Option {
	return func(c *Client) { c.bookURL = u }
}

func WithTablebaseURL(u string) Option {
	return func(c *Client) { c.tablebaseURL = u }
}

func NewClient(opts ...Option) *Client {
	var c = &Client{
		httpc:        &http.Client{Timeout: 5 * time.Second},
		bookURL:      DefaultBookURL,
		tablebaseURL: DefaultTablebaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the client still issues queries.
func (c *Client) Available() bool {
	return c.failures.Load() < maxFailures
}

// ResetFailures re-enables a client disabled by repeated failures.
func (c *Client) ResetFailures() {
	c.failures.Store(0)
}

func (c *Client) done(err error) {
	if err == nil || errors.Is(err, ErrNotFound) {
		c.failures.Store(0)
		return
	}
	c.failures.Add(1)
}

// QueryBook returns the best book move for fen in UCI notation.
func (c *Client) QueryBook(ctx context.Context, fen string) (move string, err error) {
	if !c.Available() {
		return "", ErrUnavailable
	}
	defer func() { c.done(err) }()

	var query = url.Values{}
	query.Set("action", "querybest")
	query.Set("board", fen)
	body, err := c.get(ctx, c.bookURL+"?"+query.Encode())
	if err != nil {
		return "", err
	}
	var text = strings.TrimSpace(strings.TrimRight(string(body), "\x00"))
	if !strings.HasPrefix(text, "move:") {
		// unknown, nobestmove, invalid board
		return "", fmt.Errorf("%w: %v", ErrNotFound, text)
	}
	move = strings.TrimSpace(strings.TrimPrefix(text, "move:"))
	if move == "" {
		return "", fmt.Errorf("%w: empty move", ErrNotFound)
	}
	return move, nil
}

type TablebaseResult struct {
	Move     string
	Category string
}

// Win, Loss and Draw are from the side to move point of view. Cursed wins
// and blessed losses count as draws under the fifty-move rule.
func (r TablebaseResult) Win() bool  { return r.Category == "win" }
func (r TablebaseResult) Loss() bool { return r.Category == "loss" }

type tablebaseResponse struct {
	Category string `json:"category"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
	} `json:"moves"`
}

// QueryTablebase returns the best tablebase move for fen.
func (c *Client) QueryTablebase(ctx context.Context, fen string) (result TablebaseResult, err error) {
	if !c.Available() {
		return TablebaseResult{}, ErrUnavailable
	}
	defer func() { c.done(err) }()

	var query = url.Values{}
	query.Set("fen", fen)
	body, err := c.get(ctx, c.tablebaseURL+"?"+query.Encode())
	if err != nil {
		return TablebaseResult{}, err
	}
	var resp tablebaseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return TablebaseResult{}, fmt.Errorf("decode tablebase response: %w", err)
	}
	if len(resp.Moves) == 0 || resp.Category == "" || resp.Category == "unknown" {
		return TablebaseResult{}, ErrNotFound
	}
	return TablebaseResult{
		Move:     resp.Moves[0].UCI,
		Category: resp.Category,
	}, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, httpError{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

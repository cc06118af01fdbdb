package owarefast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/oware-session/internal/domain"
	"github.com/valyala/fasthttp"
)

const (
	pathState  = "/get_game_state"
	pathStart  = "/start"
	pathMove   = "/move/"
	pathSwitch = "/switch"
	pathUndo   = "/undo"
	pathAIMove = "/ai_move/"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client talks to the remote Oware service. Every call is a single-shot request;
// nothing is retried.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds every request. Zero leaves requests unbounded unless the
// context carries a deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.http.MaxConnsPerHost = n
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &fasthttp.Client{MaxConnsPerHost: 16},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service origin the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchState reads the authoritative game state. A failed fetch never yields a
// default state: callers get a *TransportError and must treat it as "no change".
func (c *Client) FetchState(ctx context.Context) (*domain.GameState, error) {
	var payload StatePayload
	if err := c.do(ctx, "fetch_state", fasthttp.MethodGet, pathState, &payload); err != nil {
		return nil, err
	}
	state, err := payload.ToDomain()
	if err != nil {
		return nil, &TransportError{Op: "fetch_state", Path: pathState, Err: fmt.Errorf("malformed state: %w", err)}
	}
	return state, nil
}

// StartGame resets the remote game to its initial position.
func (c *Client) StartGame(ctx context.Context) error {
	return c.do(ctx, "start_game", fasthttp.MethodPost, pathStart, nil)
}

// SubmitMove applies house n (1..6) for the current player. The result reports
// whether the remote accepted the move; it does not advance the turn.
func (c *Client) SubmitMove(ctx context.Context, n int) (bool, error) {
	path := pathMove + strconv.Itoa(n)
	var applied *bool
	if err := c.do(ctx, "submit_move", fasthttp.MethodPost, path, &applied); err != nil {
		return false, err
	}
	if applied == nil {
		return false, &TransportError{Op: "submit_move", Path: path, Err: fmt.Errorf("malformed body: expected JSON boolean")}
	}
	return *applied, nil
}

// SwitchTurn advances the current player.
func (c *Client) SwitchTurn(ctx context.Context) error {
	return c.do(ctx, "switch_turn", fasthttp.MethodPost, pathSwitch, nil)
}

// Undo reverts the most recent committed move.
func (c *Client) Undo(ctx context.Context) error {
	return c.do(ctx, "undo", fasthttp.MethodPost, pathUndo, nil)
}

// RequestAIMove asks the remote to play one full AI turn at the given depth.
// The depth is sent as given; the remote is authoritative on its bounds.
func (c *Client) RequestAIMove(ctx context.Context, depth int) error {
	return c.do(ctx, "ai_move", fasthttp.MethodPost, pathAIMove+strconv.Itoa(depth), nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: op, Path: path, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	var err error
	if deadline, ok := c.computeDeadline(ctx); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return &TransportError{Op: op, Path: path, Err: fmt.Errorf("request failed: %w", err)}
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return &TransportError{Op: op, Path: path, Status: status, Body: truncate(string(resp.Body()), 512)}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &TransportError{Op: op, Path: path, Status: status, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func (c *Client) computeDeadline(ctx context.Context) (time.Time, bool) {
	dl, hasCtx := ctx.Deadline()
	if c.defaultTimeout <= 0 {
		return dl, hasCtx
	}
	clientDL := time.Now().Add(c.defaultTimeout)
	if hasCtx && dl.Before(clientDL) {
		return dl, true
	}
	return clientDL, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// DefaultTimeout bounds a single request when the caller sets none.
const DefaultTimeout = 15 * time.Second

// Client talks to the rentals API at Base.
type Client struct {
	Base    string
	HTTP    *http.Client
	Session types.Session
	Logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithSession sets the session that supplies the bearer credential.
func WithSession(s types.Session) Option {
	return func(c *Client) { c.Session = s }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// New returns a client for the API rooted at base.
func New(base string, opts ...Option) *Client {
	c := &Client{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

var (
	_ types.ApartmentTransport = (*Client)(nil)
	_ types.ContractTransport  = (*Client)(nil)
	_ types.Authenticator      = (*Client)(nil)
)

// errorBody covers the message keys the API uses in error responses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	default:
		return b.Detail
	}
}

// do sends one request. in is encoded as the JSON body when non-nil; out
// receives the decoded response when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return &types.RemoteError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return &types.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session != nil {
		if tok := c.Session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("request failed", "op", op, "method", method, "path", path, "error", err)
		return &types.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.Logger.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode/100 != 2 {
		return c.remoteError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &types.RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) remoteError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	msg := ""
	if json.Unmarshal(raw, &eb) == nil {
		msg = eb.text()
	}
	c.Logger.Warn("request rejected", "op", op, "status", resp.StatusCode, "message", msg)
	return &types.RemoteError{Op: op, Status: resp.StatusCode, Message: msg}
}

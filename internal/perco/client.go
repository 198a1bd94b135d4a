package perco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"faceenroll/internal/logging"
	"faceenroll/internal/metrics"
)

// Config holds connection settings for the Perco web API.
type Config struct {
	BaseURL  string
	Login    string
	Password string
	Timeout  time.Duration
	// ReauthOn401 makes the client log in again once when a call is rejected
	// with 401 and replay that call. Off means the first token is kept for the
	// client lifetime.
	ReauthOn401 bool
}

// Client calls the Perco access-control API with a bearer token obtained at construction.
type Client struct {
	baseURL  string
	login    string
	password string
	reauth   bool
	http     *http.Client
	log      logging.Logger
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	token    string
	tokenExp time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client and logs in. It fails when the auth endpoint is
// unreachable or answers without a token.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("perco: base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		login:    cfg.Login,
		password: cfg.Password,
		reauth:   cfg.ReauthOn401,
		http:     &http.Client{Timeout: timeout},
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// TokenExpiry returns the expiry advertised by the token, zero when unknown.
func (c *Client) TokenExpiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokenExp
}

// Devices lists the controllers registered in Perco.
func (c *Client) Devices(ctx context.Context) (json.RawMessage, error) {
	status, body, err := c.do(ctx, "devices", http.MethodGet, "/api/devices", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.statusError(ctx, "devices", status, body)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}
	return body, nil
}

// Bio returns the biometric entries of a user. The status code is not
// inspected; only a body that is not JSON is an error.
func (c *Client) Bio(ctx context.Context, userID int64) (json.RawMessage, error) {
	_, body, err := c.do(ctx, "get_bio", http.MethodGet, bioPath(userID), nil, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		c.log.Warn(ctx, "perco bio response is not json", "user_id", userID, "body", truncate(body))
		return nil, ErrInvalidJSON
	}
	return body, nil
}

// UpdateBio replaces the face template of a user with the given base64 JPEG payload.
func (c *Client) UpdateBio(ctx context.Context, userID int64, base64Photo string) (json.RawMessage, error) {
	record := NewFaceTemplate(base64Photo)
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("perco: marshal template: %w", err)
	}
	query := url.Values{"type": {strconv.Itoa(bioTypeFace)}}

	status, body, err := c.do(ctx, "update_bio", http.MethodPut, bioPath(userID), query, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.log.Error(ctx, "perco bio update rejected", "user_id", userID, "status", status, "body", truncate(body))
		return nil, &StatusError{Op: "update_bio", Code: status, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}
	if isEmptyJSON(body) {
		return nil, ErrEmptyResult
	}
	return body, nil
}

func (c *Client) authenticate(ctx context.Context) error {
	start := time.Now()
	err := c.requestToken(ctx)
	c.metrics.ObservePerco("auth", err, time.Since(start))
	return err
}

func (c *Client) requestToken(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"login": c.login, "password": c.password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/system/auth", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("perco: create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("perco: auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("perco: read auth response: %w", err)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("perco: decode auth response (%s): %w", resp.Status, err)
	}
	if out.Token == "" {
		return fmt.Errorf("%w (%s)", ErrNoToken, resp.Status)
	}

	exp := tokenExpiry(out.Token)
	c.mu.Lock()
	c.token = out.Token
	c.tokenExp = exp
	c.mu.Unlock()
	c.metrics.SetTokenExpiry(exp)

	if exp.IsZero() {
		c.log.Info(ctx, "perco login ok")
	} else {
		c.log.Info(ctx, "perco login ok", "token_expires_at", exp)
	}
	return nil
}

// do sends one request and returns the status and body. With reauth enabled
// a 401 triggers one new login and one replay.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	start := time.Now()
	status, body, err := c.send(ctx, method, path, query, payload)
	if err == nil && status == http.StatusUnauthorized && c.reauth {
		c.log.Warn(ctx, "perco token rejected, logging in again", "op", op)
		if aerr := c.authenticate(ctx); aerr != nil {
			err = aerr
		} else {
			status, body, err = c.send(ctx, method, path, query, payload)
		}
	}
	obsErr := err
	if obsErr == nil && status >= 300 {
		obsErr = &StatusError{Op: op, Code: status}
	}
	c.metrics.ObservePerco(op, obsErr, time.Since(start))
	return status, body, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("perco: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("perco: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("perco: read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) statusError(ctx context.Context, op string, status int, body []byte) error {
	c.log.Error(ctx, "perco call failed", "op", op, "status", status, "body", truncate(body))
	return &StatusError{Op: op, Code: status, Body: string(body)}
}

func bioPath(userID int64) string {
	return "/api/users/bio/" + strconv.FormatInt(userID, 10)
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

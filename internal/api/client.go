// Package api is the console's client for the library REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ayush/library-console/internal/models"
)

// ErrUnauthorized is wrapped by errors for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// Error is returned for every failed backend call. Message holds the
// server-supplied message when the response body carried one.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("backend returned %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the server message carried by err, or the transport error
// text when there is none.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// ServerMessage returns only the server-supplied message, or "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client calls the backend over HTTP. The bearer token set with
// SetAuthToken is attached to every subsequent request.
type Client struct {
	baseURL    string
	loginURL   string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, loginURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		loginURL:   loginURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthToken sets the bearer token; an empty token clears it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// WithToken returns a copy of c that shares its transport but carries its
// own token, so concurrent browser sessions never see each other's header.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		loginURL:   c.loginURL,
		httpClient: c.httpClient,
		token:      token,
	}
}

func (c *Client) Users() *Resource[models.User]   { return NewResource[models.User](c, "users") }
func (c *Client) Books() *Resource[models.Book]   { return NewResource[models.Book](c, "books") }
func (c *Client) Genres() *Resource[models.Genre] { return NewResource[models.Genre](c, "genres") }
func (c *Client) Loans() *LoanResource {
	return &LoanResource{Resource: NewResource[models.Loan](c, "loans")}
}

// Login posts credentials to the unversioned login endpoint.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, c.loginURL, req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Err: fmt.Errorf("%s %s: encode: %w", method, url, err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Err: fmt.Errorf("%s %s: %w", method, url, err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.AuthToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Err: fmt.Errorf("%s %s: %w", method, url, err)}
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("%s %s: read: %w", method, url, err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("%s %s: decode: %w", method, url, err)}
	}
	return nil
}

// checkResp turns a non-2xx response into an *Error, pulling the message out
// of a {"message": ...} or {"error": ...} body when present.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	e := &Error{Status: resp.StatusCode, Message: payload.Message}
	if e.Message == "" {
		e.Message = payload.Error
	}
	if resp.StatusCode == http.StatusUnauthorized {
		e.Err = ErrUnauthorized
	}
	return e
}

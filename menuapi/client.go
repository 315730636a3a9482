// Package menuapi is the HTTP client of the restaurant API. The server owns
// pricing, persistence, auth and the order lifecycle; this package only moves
// requests and normalizes failures into *RequestError.
package menuapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"menu-telegram/models"
)

const maxErrorBody = 1 << 20

type Config struct {
	BaseURL string
	// Timeout of zero leaves calls unbounded.
	Timeout time.Duration
	// Transport is the innermost round tripper; defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	client *http.Client
	config Config
}

func NewClient(cfg Config) *Client {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		client: &http.Client{
			Transport: &AuthTransport{Base: otelhttp.NewTransport(base)},
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newRequestError(method, path, resp.StatusCode, payload)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	if in == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	buf, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(buf), "application/json", out)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", models.Credentials{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges form-encoded credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok models.Token
	err := c.do(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) BecomeMaster(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/become-master", nil, "", nil)
}

// Me returns the profile of the token's owner, or nil on 204.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u *models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, "", &u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.doJSON(ctx, http.MethodPost, "/menu", in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, id int64, in models.MenuItemInput) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/menu/%d", id), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/menu/%d", id), nil, "", nil)
}

// ClearMenu deletes every menu item.
func (c *Client) ClearMenu(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/menu", nil, "", nil)
}

func (c *Client) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	var o models.Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders", in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, "", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) MarkServed(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/served", id), nil, "", nil)
}

func (c *Client) ClearOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/orders", nil, "", nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, "", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, "", nil)
}

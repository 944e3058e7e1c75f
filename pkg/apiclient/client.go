// Package apiclient is a typed client for the Blood Alert REST API. It backs
// notification centers and dashboards that run outside the API process.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bloodalert/config"
	"bloodalert/internal/models"
)

// ErrUnauthorized is returned after a 401; the stored token has been purged.
var ErrUnauthorized = errors.New("session expired, please log in again")

const networkMessage = "Network error. Please check your connection and try again."

var statusMessages = map[int]string{
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusUnprocessableEntity: "Please correct the highlighted fields.",
	http.StatusTooManyRequests:     "Too many requests. Please slow down and try again shortly.",
	http.StatusInternalServerError: "Something went wrong on our end. Please try again later.",
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer (or a transport failure when Status is 0).
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	// OnUnauthorized runs after a 401, once the token is cleared.
	OnUnauthorized func()
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

func NewFromConfig(cfg *config.APIConfig, token string) *Client {
	return New(cfg.BaseURL, token, cfg.Timeout)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[API CLIENT] %s %s: %v", method, path, err)
		return &APIError{Message: networkMessage, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: networkMessage, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.SetToken("")
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: statusMessages[resp.StatusCode]}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Fields = eb.Fields
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		log.Printf("[API CLIENT] %s %s: %d", method, path, resp.StatusCode)
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var env envelope[T]
	err := c.do(ctx, http.MethodGet, path, nil, &env)
	return env.Data, err
}

// Notifications. The server scopes these calls by the bearer token, so the
// userID arguments only satisfy the notification source contract.

func (c *Client) ListNotifications(ctx context.Context, _ string) (*models.NotificationList, error) {
	var list models.NotificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, _ string, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, _ string) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, _ string, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil)
}

// Dashboard

func (c *Client) Summary(ctx context.Context) (*models.Summary, error) {
	sum, err := get[models.Summary](ctx, c, "/admin/summary")
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *Client) ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error) {
	return get[[]models.BloodRequest](ctx, c, "/blood-requests")
}

func (c *Client) ListDonations(ctx context.Context) ([]models.Donation, error) {
	return get[[]models.Donation](ctx, c, "/donations")
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return get[[]models.User](ctx, c, "/users")
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// Package client is the frontend's HTTP client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskhub/internal/domain"
)

// APIError is a non-2xx answer; Msg is the envelope message.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string { return fmt.Sprintf("api %d: %s", e.Status, e.Msg) }

// Message returns the API's message when err is an *APIError.
func Message(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "Something went wrong, please try again"
}

type Client struct {
	base string
	hc   *http.Client
}

// New returns a client for base, e.g. http://127.0.0.1:5000/api.
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), hc: hc}
}

type envelope struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		if env.Msg == "" {
			env.Msg = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Msg: env.Msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return "", nil, err
	}
	return out.Token, &out.User, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	var out struct {
		Tasks []domain.Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, "/tasks", token, nil, &out)
	return out.Tasks, err
}

func (c *Client) GetTask(ctx context.Context, token, id string) (*domain.Task, error) {
	var out struct {
		Task domain.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, in domain.TaskInput) (*domain.Task, error) {
	var out struct {
		Task domain.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", token, in, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, in domain.TaskInput) (*domain.Task, error) {
	var out struct {
		Task domain.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), token, nil, nil)
}

// UserPayload is the admin create/update body. Empty fields are omitted so
// an update leaves them unchanged.
type UserPayload struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/users", token, nil, &out)
	return out.Users, err
}

func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, p UserPayload) (*domain.UserSummary, error) {
	var out struct {
		User domain.UserSummary `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", token, p, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, p UserPayload) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), token, p, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil, nil)
}

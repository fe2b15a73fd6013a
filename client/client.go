// Package client is the thin REST client for the TrustByte task API. One
// request per call, no retries: a failed mutation is surfaced to the caller
// and reconciliation is left to the next full task refetch.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/domain"
)

const maxResponseBody = 1 << 20 // 1 MiB

// APIError carries the server's {success:false, message} envelope. The
// message is surfaced verbatim to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client talks to one TrustByte API server on behalf of one user.
type Client struct {
	base  string
	http  *http.Client
	token string
	email string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSession preloads the token and email of an existing session.
func WithSession(s Session) Option {
	return func(c *Client) {
		c.token = s.Token
		c.email = s.Email
	}
}

// New creates a client for the API at base, e.g. "http://localhost:8081".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	JWTToken string `json:"jwtToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type taskResponse struct {
	Task domain.Task `json:"task"`
}

type allTasksRequest struct {
	User string `json:"user"`
}

type deleteTaskRequest struct {
	ID primitive.ObjectID `json:"_id"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	req := registerRequest{Name: name, Email: email, Password: password}
	return c.post(ctx, "/auth/register", req, nil, noAuth)
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp loginResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp, noAuth); err != nil {
		return Session{}, err
	}
	c.token = resp.JWTToken
	c.email = resp.Email
	return Session{Name: resp.Name, Email: resp.Email, Token: resp.JWTToken}, nil
}

// AllTasks fetches the authenticated user's full task list.
func (c *Client) AllTasks(ctx context.Context) ([]domain.Task, error) {
	var resp tasksResponse
	// The task-list route historically receives the raw token, no Bearer
	// prefix, plus the owner email in the body.
	if err := c.post(ctx, "/api/alltasks", allTasksRequest{User: c.email}, &resp, rawAuth); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// AddTask creates a task and returns it with its server-assigned id. Each
// call carries a fresh idempotency key so an accidental replay upstream is
// rejected server-side.
func (c *Client) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.User = c.email
	var resp taskResponse
	err := c.postWith(ctx, "/api/addtask", t, &resp, bearerAuth, http.Header{
		"Idempotency-Key": []string{uuid.NewString()},
	})
	if err != nil {
		return domain.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask persists a full task replacement. Exactly one attempt is made.
func (c *Client) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var resp taskResponse
	if err := c.post(ctx, "/api/updatetask", t, &resp, noAuth); err != nil {
		return domain.Task{}, err
	}
	return resp.Task, nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	return c.post(ctx, "/api/deletetask", deleteTaskRequest{ID: id}, nil, bearerAuth)
}

type authMode int

const (
	noAuth authMode = iota
	rawAuth
	bearerAuth
)

func (c *Client) post(ctx context.Context, path string, body, out any, auth authMode) error {
	return c.postWith(ctx, path, body, out, auth, nil)
}

func (c *Client) postWith(ctx context.Context, path string, body, out any, auth authMode, extra http.Header) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch auth {
	case rawAuth:
		req.Header.Set("Authorization", c.token)
	case bearerAuth:
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return sonic.Unmarshal(data, out)
}

func apiErrorFrom(status int, data []byte) *APIError {
	var env struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(data, &env); err != nil || env.Message == "" {
		env.Message = strings.TrimSpace(string(data))
	}
	if env.Message == "" {
		env.Message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: env.Message}
}

package api

import (
	"context"
	"errors"
	"net/url"

	"github.com/nhle/careboard/internal/model"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and organization registration.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// TaskList is the response from GET /tasks.
type TaskList struct {
	Tasks []model.Task `json:"tasks"`
}

// StatusUpdate is the request body for PUT /tasks/{id}.
type StatusUpdate struct {
	Status model.Status `json:"status"`
}

// Login exchanges credentials for a session. A non-2xx response is
// returned as *AuthenticationError with the server message, or
// defaultMessage when the server sent none.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, asAuthError(err, "Login failed")
	}
	return &resp, nil
}

// RegisterOrganization creates an organization with its admin account
// and returns the admin's session.
func (c *Client) RegisterOrganization(
	ctx context.Context,
	reg model.OrganizationRegistration,
) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register-organization", reg, &resp); err != nil {
		return nil, asAuthError(err, "Registration failed")
	}
	return &resp, nil
}

// VerifyToken probes GET /users with the client's token. Any error means
// the token cannot be trusted.
func (c *Client) VerifyToken(ctx context.Context) error {
	return c.get(ctx, "/users", nil)
}

// ListTasks fetches every task visible to the authenticated user.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var resp TaskList
	if err := c.get(ctx, "/tasks", &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask creates a task and returns the server's representation.
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	var task model.Task
	if err := c.post(ctx, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus sets the status of task id and returns the updated task.
func (c *Client) UpdateTaskStatus(
	ctx context.Context,
	id model.ID,
	status model.Status,
) (*model.Task, error) {
	var task model.Task
	path := "/tasks/" + url.PathEscape(string(id))
	if err := c.put(ctx, path, StatusUpdate{Status: status}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// asAuthError converts API rejections into *AuthenticationError and passes
// transport failures through unchanged.
func asAuthError(err error, defaultMessage string) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := apiErr.Message
	if msg == "" {
		msg = defaultMessage
	}
	return &AuthenticationError{Message: msg, Err: apiErr}
}

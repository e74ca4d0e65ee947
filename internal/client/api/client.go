package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

// CredentialSource yields the current bearer token. The session manager
// implements it; the client only reads, never stores credentials itself.
type CredentialSource interface {
	Credential() (string, error)
}

// Client talks to the task gateway. Every request carries the caller's
// bearer token; the gateway decides whose tasks are visible.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

func New(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
	}
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft model.Task) (model.Task, error) {
	var created model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", draft, &created)
	return created, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, patch, &updated)
	return updated, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (repo.Stats, error) {
	var stats repo.Stats
	err := c.do(ctx, http.MethodGet, "/api/tasks/stats", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.creds.Credential()
	if err != nil {
		return fmt.Errorf("no credential: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return ErrServer
	case resp.StatusCode == http.StatusBadRequest:
		return ErrValidation
	case resp.StatusCode >= 400:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

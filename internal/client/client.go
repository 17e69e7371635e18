package client

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

	"github.com/ent0n29/todolist/internal/todos"
)

const DefaultBaseURL = "http://localhost:5000/api/todos"

// APIError is a non-2xx answer from the todo API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("todo api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("todo api status %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client talks to the /api/todos endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) List(ctx context.Context) ([]todos.Todo, error) {
	var out []todos.Todo
	if err := c.do(ctx, http.MethodGet, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, title string) (todos.Todo, error) {
	var out todos.Todo
	err := c.do(ctx, http.MethodPost, "", map[string]string{"title": title}, &out)
	return out, err
}

type updateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (c *Client) Update(ctx context.Context, id string, patch todos.Patch) (todos.Todo, error) {
	var out todos.Todo
	body := updateRequest{Title: patch.Title, Completed: patch.Completed}
	err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id), body, &out)
	return out, err
}

func (c *Client) Toggle(ctx context.Context, id string) (todos.Todo, error) {
	var out todos.Todo
	err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id)+"/toggle", nil, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DeleteCompleted(ctx context.Context) (int64, error) {
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := c.do(ctx, http.MethodDelete, "/completed", nil, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	apiErr := &APIError{Status: res.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}
	return apiErr
}

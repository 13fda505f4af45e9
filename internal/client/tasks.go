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

	"github.com/gosuda/planner/internal/domain"
)

// TaskFields is the body of a create request.
type TaskFields struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// TaskResponse is the decoded body of every task command.
type TaskResponse struct {
	Success bool         `json:"success"`
	TaskID  string       `json:"task_id,omitempty"`
	Task    *domain.Task `json:"task,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// TaskCommands issues task requests against the server. It keeps no state
// between calls: no cache, no optimistic updates, no retries.
type TaskCommands struct {
	baseURL string
	http    *http.Client
}

// NewTaskCommands returns TaskCommands for the server at baseURL. A nil
// httpClient means http.DefaultClient.
func NewTaskCommands(baseURL string, httpClient *http.Client) *TaskCommands {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TaskCommands{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Create posts a new task.
func (tc *TaskCommands) Create(ctx context.Context, fields TaskFields) (*TaskResponse, error) {
	resp, err := tc.do(ctx, http.MethodPost, "/create_task", fields)
	if err != nil {
		return nil, fmt.Errorf("client.TaskCommands.Create: %w", err)
	}
	return resp, nil
}

// UpdateStatus sets the status of taskID.
func (tc *TaskCommands) UpdateStatus(ctx context.Context, taskID, status string) (*TaskResponse, error) {
	path := "/task/" + url.PathEscape(taskID) + "/status"
	resp, err := tc.do(ctx, http.MethodPut, path, map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("client.TaskCommands.UpdateStatus: %w", err)
	}
	return resp, nil
}

// Delete removes taskID.
func (tc *TaskCommands) Delete(ctx context.Context, taskID string) (*TaskResponse, error) {
	resp, err := tc.do(ctx, http.MethodDelete, "/task/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("client.TaskCommands.Delete: %w", err)
	}
	return resp, nil
}

func (tc *TaskCommands) do(ctx context.Context, method, path string, body any) (*TaskResponse, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := tc.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out TaskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return &out, nil
}

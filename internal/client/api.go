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

	"github.com/adanyl0v/todone/internal/models"
	"github.com/adanyl0v/todone/internal/validation"
)

const DefaultTimeout = 10 * time.Second

const (
	opFetch  = "fetch"
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
	opStats  = "stats"
)

var fallbackMessages = map[string]string{
	opFetch:  "failed to fetch todos",
	opAdd:    "failed to add todo",
	opUpdate: "failed to update todo",
	opDelete: "failed to delete todo",
	opStats:  "failed to fetch stats",
}

// TaskInput is the body of a create or update request. Nil fields are left
// out of the request.
type TaskInput struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
}

// RequestError is returned for every failed API call. Message is the
// server's message when it sent one and a generic one otherwise.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Issues     []validation.Issue
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// TaskAPI is the remote side of the client data layer.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, input TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, input TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	TaskStats(ctx context.Context) (models.TaskStats, error)
}

// API talks to the task HTTP API.
type API struct {
	baseURL    string
	httpClient *http.Client
}

var _ TaskAPI = (*API)(nil)

// NewAPI returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5001/api". A non-positive timeout means DefaultTimeout.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *API) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := a.do(ctx, opFetch, http.MethodGet, "/todos", nil, http.StatusOK, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (a *API) CreateTask(ctx context.Context, input TaskInput) (models.Task, error) {
	var task models.Task
	err := a.do(ctx, opAdd, http.MethodPost, "/todos", input, http.StatusCreated, &task)
	return task, err
}

func (a *API) UpdateTask(ctx context.Context, id string, input TaskInput) (models.Task, error) {
	var task models.Task
	err := a.do(ctx, opUpdate, http.MethodPut, "/todos/"+url.PathEscape(id), input, http.StatusOK, &task)
	return task, err
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, opDelete, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

func (a *API) TaskStats(ctx context.Context) (models.TaskStats, error) {
	var stats models.TaskStats
	err := a.do(ctx, opStats, http.MethodGet, "/todos/stats", nil, http.StatusOK, &stats)
	return stats, err
}

type errorResponse struct {
	Message string             `json:"message"`
	Errors  []validation.Issue `json:"errors"`
}

func (a *API) do(ctx context.Context, op, method, path string, in any, want int, out any) error {
	fail := func(statusCode int, err error) *RequestError {
		return &RequestError{
			Op:         op,
			StatusCode: statusCode,
			Message:    fallbackMessages[op],
			Err:        err,
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	if resp.StatusCode != want {
		reqErr := fail(resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			reqErr.Message = errResp.Message
			reqErr.Issues = errResp.Errors
		}
		return reqErr
	}

	if out == nil {
		return nil
	}
	err = json.Unmarshal(data, out)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// errorMessage is the text the UI shows for err.
func errorMessage(err error, op string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return fallbackMessages[op]
}

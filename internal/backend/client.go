// Package backend talks to the asynchronous scoring service: it submits
// payloads and fetches materialized results.
package backend

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

	"github.com/google/uuid"

	"github.com/harrison/talentmap/internal/submission"
)

const (
	submitPath  = "/api/assessment/submit"
	resultsPath = "/api/assessment/results/"

	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://127.0.0.1:8080"
)

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status,omitempty"`
}

// Result is a materialized assessment result. Scores echo what was submitted;
// Profile carries the backend's analysis verbatim.
type Result struct {
	ID             string             `json:"id"`
	Status         string             `json:"status"`
	AssessmentName string             `json:"assessmentName,omitempty"`
	Scores         submission.Payload `json:"scores"`
	Profile        json.RawMessage    `json:"profile,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Submitter sends a validated payload.
type Submitter interface {
	Submit(ctx context.Context, payload submission.Payload) (SubmitResponse, error)
}

// Fetcher retrieves a result, returning *NotFoundError while it is pending.
type Fetcher interface {
	ResultByID(ctx context.Context, id string) (*Result, error)
}

// Client is an HTTP implementation of Submitter and Fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	newKey     func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithIdempotencyKeys replaces the uuid generator for Idempotency-Key headers.
func WithIdempotencyKeys(gen func() string) ClientOption {
	return func(c *Client) {
		c.newKey = gen
	}
}

// NewClient creates a client. A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		newKey:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit posts the payload and returns the job id to poll.
func (c *Client) Submit(ctx context.Context, payload submission.Payload) (SubmitResponse, error) {
	var resp SubmitResponse
	headers := http.Header{}
	headers.Set("Idempotency-Key", c.newKey())

	if _, err := c.doJSON(ctx, http.MethodPost, submitPath, headers, payload, &resp); err != nil {
		return SubmitResponse{}, err
	}
	if strings.TrimSpace(resp.JobID) == "" {
		return SubmitResponse{}, &TransportError{StatusCode: http.StatusOK, Code: "invalid_response", Message: "response has no jobId"}
	}
	return resp, nil
}

// ResultByID fetches a result. A 404 is reported as *NotFoundError.
func (c *Client) ResultByID(ctx context.Context, id string) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("result id is required")
	}

	var result Result
	status, err := c.doJSON(ctx, http.MethodGet, resultsPath+url.PathEscape(id), nil, nil, &result)
	if status == http.StatusNotFound {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	if result.ID == "" {
		result.ID = id
	}
	return &result, nil
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doJSON performs one request and decodes a 2xx body into responseBody. It
// returns the HTTP status (0 when no response arrived).
func (c *Client) doJSON(ctx context.Context, method, path string, headers http.Header, requestBody, responseBody any) (int, error) {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &TransportError{Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		te := &TransportError{StatusCode: response.StatusCode}
		var envelope errorEnvelope
		if err := json.NewDecoder(response.Body).Decode(&envelope); err == nil {
			te.Code = envelope.Error.Code
			te.Message = envelope.Error.Message
		}
		if strings.TrimSpace(te.Message) == "" {
			te.Message = response.Status
		}
		return response.StatusCode, te
	}

	if responseBody == nil {
		return response.StatusCode, nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return response.StatusCode, &TransportError{
			StatusCode: response.StatusCode,
			Code:       "invalid_response",
			Message:    "undecodable response body",
			Err:        err,
		}
	}
	return response.StatusCode, nil
}

// Package taskclient drives one document through the remote asynchronous
// analysis service: submit, poll to a terminal state, download and decode the
// result archive. Polling and transient-failure retry are hidden from the
// caller; every failure surfaces as a typed analysis.Error.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"polisave/internal/analysis"
	"polisave/internal/config"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 120 * time.Second
	defaultRetryDelay   = time.Second
	defaultMaxRetries   = 2
)

// maxArchiveSize bounds the result archive download (128 MB).
const maxArchiveSize = 128 << 20

// Client submits analysis jobs and polls them to completion. A Client is
// safe for concurrent use; each Analyze call is an independent pipeline with
// no shared mutable state.
type Client struct {
	baseURL      string
	orgID        string
	client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	maxRetries   int
	retryDelay   time.Duration
}

// NewClient creates a task client from the analyzer config.
func NewClient(cfg *config.AnalyzerConfig) *Client {
	pollInterval := time.Duration(cfg.PollIntervalSecs) * time.Second
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := time.Duration(cfg.PollTimeoutSecs) * time.Second
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	retryDelay := time.Duration(cfg.RetryDelaySecs) * time.Second
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	requestTimeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		orgID:        cfg.OrganizationID,
		client:       &http.Client{Timeout: requestTimeout},
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		maxRetries:   maxRetries,
		retryDelay:   retryDelay,
	}
}

// Analyze submits the referenced document and blocks until the analysis
// reaches a terminal state, returning the decoded result. The task lifecycle
// is submitted → pending/processing/queued → succeeded|failed; polling stops
// on the first terminal state. Cancelling ctx aborts the in-flight request
// and any further polling with a TIMEOUT error.
func (c *Client) Analyze(ctx context.Context, signedURL string, opts *analysis.Options) (*analysis.Result, error) {
	if strings.TrimSpace(signedURL) == "" {
		return nil, analysis.NewError(analysis.CodeInvalidArgument, "no document reference supplied")
	}

	org := c.orgID
	var docID string
	if opts != nil {
		if opts.OrganizationID != "" {
			org = opts.OrganizationID
		}
		docID = opts.DocumentID
	}

	body := map[string]any{"document_url": signedURL}
	if docID != "" {
		body["document_id"] = docID
	}
	if org != "" {
		body["organization_id"] = org
	}

	submitEndpoint := c.baseURL + "/analyze"
	resp, err := c.doJSON(ctx, http.MethodPost, submitEndpoint, body, org)
	if err != nil {
		return nil, err
	}

	// The first response may already be terminal.
	switch extractState(resp) {
	case stateFailed:
		return nil, &analysis.Error{
			Code:     analysis.CodeTaskFailed,
			Message:  "remote analysis reported failure",
			Endpoint: submitEndpoint,
			Hint:     extractErrorHint(resp),
		}
	case stateSucceeded:
		return c.fetchResult(ctx, resp, submitEndpoint, org)
	}
	if url := extractResultURL(resp); url != "" {
		return c.downloadAndDecode(ctx, url, org)
	}

	taskID := extractTaskID(resp)
	if taskID == "" {
		return nil, &analysis.Error{
			Code:     analysis.CodeNoTaskID,
			Message:  "submission returned neither a task identifier nor a result",
			Endpoint: submitEndpoint,
		}
	}

	return c.poll(ctx, taskID, org)
}

// poll queries the task status endpoint at a fixed interval until a terminal
// state is observed or the wall-clock budget elapses.
func (c *Client) poll(ctx context.Context, taskID, org string) (*analysis.Result, error) {
	endpoint := c.baseURL + "/task/" + taskID
	deadline := time.Now().Add(c.pollTimeout)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, &analysis.Error{
				Code:     analysis.CodeTimeout,
				Message:  "analysis canceled while polling task " + taskID,
				Endpoint: endpoint,
				Err:      ctx.Err(),
			}
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, &analysis.Error{
					Code:     analysis.CodeTimeout,
					Message:  fmt.Sprintf("task %s did not reach a terminal state within %s", taskID, c.pollTimeout),
					Endpoint: endpoint,
				}
			}

			resp, err := c.doJSON(ctx, http.MethodGet, endpoint, nil, org)
			if err != nil {
				return nil, err
			}

			switch extractState(resp) {
			case stateFailed:
				return nil, &analysis.Error{
					Code:     analysis.CodeTaskFailed,
					Message:  "remote analysis reported failure",
					Endpoint: endpoint,
					Hint:     extractErrorHint(resp),
				}
			case stateSucceeded:
				return c.fetchResult(ctx, resp, endpoint, org)
			default:
				// pending / processing / queued: keep polling.
			}
		}
	}
}

// fetchResult resolves the archive URL from a terminal-success response and
// downloads/decodes it.
func (c *Client) fetchResult(ctx context.Context, resp map[string]any, endpoint, org string) (*analysis.Result, error) {
	url := extractResultURL(resp)
	if url == "" {
		return nil, &analysis.Error{
			Code:     analysis.CodeNoResultURL,
			Message:  "task succeeded but no archive URL is present",
			Endpoint: endpoint,
		}
	}
	return c.downloadAndDecode(ctx, url, org)
}

func (c *Client) downloadAndDecode(ctx context.Context, url, org string) (*analysis.Result, error) {
	data, err := c.doRaw(ctx, http.MethodGet, url, nil, org)
	if err != nil {
		return nil, err
	}
	return decodeArchive(data)
}

// doJSON performs a request expecting a JSON object body.
func (c *Client) doJSON(ctx context.Context, method, url string, body map[string]any, org string) (map[string]any, error) {
	data, err := c.doRaw(ctx, method, url, body, org)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &analysis.Error{
			Code:     analysis.CodeInvalidResponse,
			Message:  "empty response body",
			Endpoint: url,
		}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		ae := &analysis.Error{
			Code:     analysis.CodeInvalidResponse,
			Message:  "unparseable JSON response body",
			Endpoint: url,
			Err:      err,
		}
		return nil, ae
	}
	return m, nil
}

// doRaw performs one HTTP request with the retry discipline: timeouts and
// 5xx are transient and retried with a linearly increasing delay up to
// maxRetries additional attempts; 4xx fails immediately.
func (c *Client) doRaw(ctx context.Context, method, url string, body map[string]any, org string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
	}

	var lastErr *analysis.Error
	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * c.retryDelay
			select {
			case <-ctx.Done():
				return nil, &analysis.Error{
					Code:     analysis.CodeTimeout,
					Message:  "analysis canceled",
					Endpoint: url,
					Err:      ctx.Err(),
				}
			case <-time.After(delay):
			}
		}

		data, ae := c.attempt(ctx, method, url, payload, org)
		if ae == nil {
			return data, nil
		}
		// Cancellation and non-transient failures surface immediately.
		if ctx.Err() != nil || !transient(ae) {
			return nil, ae
		}
		lastErr = ae
	}
	return nil, lastErr
}

// attempt performs a single HTTP exchange.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, org string) ([]byte, *analysis.Error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &analysis.Error{
			Code:     analysis.CodeInvalidArgument,
			Message:  "creating request",
			Endpoint: url,
			Err:      err,
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if org != "" {
		req.Header.Set("X-Organization-Id", org)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &analysis.Error{
				Code:     analysis.CodeTimeout,
				Message:  "analysis canceled",
				Endpoint: url,
				Err:      ctx.Err(),
			}
		}
		return nil, &analysis.Error{
			Code:     analysis.CodeTimeout,
			Message:  "request timed out or aborted",
			Endpoint: url,
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize))
	if err != nil {
		return nil, &analysis.Error{
			Code:     analysis.CodeInvalidResponse,
			Message:  "reading response body",
			Endpoint: url,
			Err:      err,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	ae := &analysis.Error{
		Code:     analysis.CodeHTTPError,
		Message:  fmt.Sprintf("%s returned status %d", method, resp.StatusCode),
		Endpoint: url,
		Status:   resp.StatusCode,
	}
	if resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout {
		ae.Code = analysis.CodeTimeout
	}
	var m map[string]any
	if json.Unmarshal(data, &m) == nil {
		ae.Hint = extractErrorHint(m)
		ae.RequestID = extractRequestID(m)
	}
	return nil, ae
}

// transient reports whether a failure class is eligible for automatic retry:
// timeouts/aborts and 5xx responses. 4xx never retries.
func transient(ae *analysis.Error) bool {
	if ae.Code == analysis.CodeTimeout {
		return true
	}
	return ae.Code == analysis.CodeHTTPError && ae.Status >= 500
}

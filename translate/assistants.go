package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Assistants API wire types
// ---------------------------------------------------------------------------

type assistantRequest struct {
	Model        string `json:"model"`
	Description  string `json:"description,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type object struct {
	ID string `json:"id"`
}

type messageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runRequest struct {
	AssistantID string `json:"assistant_id"`
}

type runObject struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type messageList struct {
	Data []struct {
		ID      string `json:"id"`
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text *struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// Run statuses.
const (
	runQueued         = "queued"
	runInProgress     = "in_progress"
	runCancelling     = "cancelling"
	runCompleted      = "completed"
	runRequiresAction = "requires_action"
)

// APIError is an error response of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
}

// ---------------------------------------------------------------------------
// HTTP client
// ---------------------------------------------------------------------------

// assistantsClient is a minimal client of the OpenAI Assistants API (v2).
type assistantsClient struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

func newAssistantsClient(baseURL, apiKey string, hc *http.Client) *assistantsClient {
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	return &assistantsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		http:       hc,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

func (c *assistantsClient) createAssistant(ctx context.Context, req assistantRequest) (string, error) {
	var out object
	if err := c.do(ctx, http.MethodPost, "/assistants", nil, req, &out); err != nil {
		return "", fmt.Errorf("creating assistant: %w", err)
	}
	return out.ID, nil
}

func (c *assistantsClient) createThread(ctx context.Context) (string, error) {
	var out object
	if err := c.do(ctx, http.MethodPost, "/threads", nil, struct{}{}, &out); err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return out.ID, nil
}

func (c *assistantsClient) createMessage(ctx context.Context, threadID, content string) (string, error) {
	var out object
	req := messageRequest{Role: "user", Content: content}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", nil, req, &out); err != nil {
		return "", fmt.Errorf("creating message: %w", err)
	}
	return out.ID, nil
}

func (c *assistantsClient) createRun(ctx context.Context, threadID, assistantID string) (*runObject, error) {
	var out runObject
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", nil, runRequest{AssistantID: assistantID}, &out); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return &out, nil
}

func (c *assistantsClient) retrieveRun(ctx context.Context, threadID, runID string) (*runObject, error) {
	var out runObject
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("retrieving run: %w", err)
	}
	return &out, nil
}

// runText concatenates, in chronological order, the text of every message
// produced by a run.
func (c *assistantsClient) runText(ctx context.Context, threadID, runID string) (string, error) {
	var sb strings.Builder
	query := url.Values{"run_id": {runID}, "order": {"asc"}, "limit": {"100"}}
	for {
		var page messageList
		if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", query, nil, &page); err != nil {
			return "", fmt.Errorf("listing messages: %w", err)
		}
		for _, msg := range page.Data {
			for _, content := range msg.Content {
				if content.Text != nil {
					sb.WriteString(content.Text.Value)
				}
			}
		}
		if !page.HasMore || page.LastID == "" {
			break
		}
		query.Set("after", page.LastID)
	}
	return sb.String(), nil
}

// do sends one JSON request, retrying transport errors, 429 and 5xx
// responses with exponential backoff.
func (c *assistantsClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("OpenAI-Beta", "assistants=v2")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt < c.maxRetries && ctx.Err() == nil {
				if werr := c.wait(ctx, attempt); werr != nil {
					return werr
				}
				continue
			}
			return fmt.Errorf("API request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if attempt < c.maxRetries {
				if werr := c.wait(ctx, attempt); werr != nil {
					return werr
				}
				continue
			}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &APIError{Status: resp.StatusCode, Message: apiErrorMessage(respBody)}
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("invalid JSON response: %w", err)
		}
		return nil
	}
}

func (c *assistantsClient) wait(ctx context.Context, attempt int) error {
	d := time.Duration(math.Pow(2, float64(attempt))) * c.backoff
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func apiErrorMessage(body []byte) string {
	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return truncate(strings.TrimSpace(string(body)), 500)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

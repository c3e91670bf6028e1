// Package backend is the HTTP client for the conversational backend:
// history, chat turns and credential verification.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/identity"
	"github.com/soyeahso/lively/internal/logging"
	"github.com/soyeahso/lively/internal/version"
)

// DefaultBaseURL is where the backend listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the backend over JSON/HTTP. Chat turns carry no client
// timeout; cancellation comes from the caller's context.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// NewClient creates a client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, log *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
		log:     log.Sub("backend"),
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

type historyEntry struct {
	Speaker   string `json:"speaker"`
	Content   string `json:"content"`
	Intent    string `json:"intent,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// History fetches every stored turn in order.
func (c *Client) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	var raw []historyEntry
	if err := c.do(ctx, http.MethodGet, "/history", nil, &raw, true); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]domain.HistoryEntry, len(raw))
	for i, e := range raw {
		out[i] = domain.HistoryEntry{Speaker: e.Speaker, Content: e.Content, Intent: e.Intent}
	}
	return out, nil
}

type chatRequest struct {
	UserInput    string `json:"user_input"`
	Style        string `json:"style,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent,omitempty"`
}

// Chat sends one turn. The persona instruction goes in the field its
// selector names.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatReply, error) {
	body := chatRequest{UserInput: req.Text}
	switch req.Persona.Kind {
	case domain.SelectorStyle:
		body.Style = req.Persona.Instruction
	default:
		body.SystemPrompt = req.Persona.Instruction
	}

	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", body, &resp, true); err != nil {
		return domain.ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	return domain.ChatReply{Text: resp.Response, Intent: resp.Intent}, nil
}

type verifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Success *bool  `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// ErrNoVerdict means the verify response carried no success field, as with
// a {"detail": ...} server error body.
var ErrNoVerdict = errors.New("verify response has no verdict")

// Verify implements identity.Verifier. An explicit success:false is a
// rejection whatever the status code; anything else unreadable, or a body
// without a success field, is Unavailable.
func (c *Client) Verify(ctx context.Context, name, credential string) identity.Verdict {
	var resp verifyResponse
	err := c.do(ctx, http.MethodPost, "/verify", verifyRequest{Username: name, Password: credential}, &resp, false)
	if err == nil && resp.Success == nil {
		err = ErrNoVerdict
	}
	if err != nil {
		c.log.Warn().Err(err).Str("name", name).Msg("verify request failed")
		return identity.Unavailable{Err: fmt.Errorf("verify: %w", err)}
	}
	if *resp.Success {
		return identity.Authenticated{Name: name}
	}
	return identity.Rejected{Reason: resp.Reason}
}

// do performs a JSON request. With strict set, any non-2xx status is an error.
func (c *Client) do(ctx context.Context, method, path string, in, out any, strict bool) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend response")

	if strict && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Code, e.Body)
}

package practice

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
)

var ErrSessionNotFound = errors.New("session not found on server")

// Submission is one question's submitted solution, as sent to the ledger
// and mirrored locally.
type Submission struct {
	QuestionId          int     `json:"questionId"`
	QuestionTitle       string  `json:"questionTitle"`
	QuestionDescription string  `json:"questionDescription,omitempty"`
	Template            string  `json:"template"`
	Submitted           bool    `json:"submitted"`
	SubmissionDate      string  `json:"submissionDate,omitempty"`
	Files               FileSet `json:"files"`
	SessionId           string  `json:"sessionId,omitempty"`
}

type SubmitResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Filename  string `json:"filename,omitempty"`
	IsNewFile bool   `json:"isNewFile"`
}

type SessionDocument struct {
	SessionId   string                `json:"sessionId"`
	StartTime   string                `json:"startTime"`
	LastUpdated string                `json:"lastUpdated,omitempty"`
	Submissions map[string]Submission `json:"submissions"`
}

// LedgerClient talks to the submission ledger.
type LedgerClient interface {
	Submit(ctx context.Context, s Submission) (*SubmitResult, error)
	Session(ctx context.Context, sessionId string) (*SessionDocument, error)
}

type HTTPLedgerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPLedgerClient(baseURL string) *HTTPLedgerClient {
	return &HTTPLedgerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPLedgerClient) Submit(ctx context.Context, s Submission) (*SubmitResult, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submissions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ledger returned %d with unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		return &result, fmt.Errorf("ledger rejected submission (%d): %s", resp.StatusCode, result.Message)
	}
	return &result, nil
}

func (c *HTTPLedgerClient) Session(ctx context.Context, sessionId string) (*SessionDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/submissions/"+url.PathEscape(sessionId), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get session: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var envelope struct {
		Data *SessionDocument `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if envelope.Data == nil {
		return nil, ErrSessionNotFound
	}
	return envelope.Data, nil
}

// Package push delivers messages to device push tokens.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// MaxBatchSize is the most messages a provider accepts in one call
const MaxBatchSize = 500

var (
	ErrBatchTooLarge = errors.New("push batch exceeds provider limit")
	ErrRejected      = errors.New("push message rejected")
)

// Message is one push notification for one device token
type Message struct {
	ID    string            `json:"id"`
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Result is the delivery outcome of one message
type Result struct {
	MessageID string
	Err       error
}

// Sender delivers a batch of at most MaxBatchSize messages. The returned
// error covers the call as a whole; per-message failures are in the results.
type Sender interface {
	SendBatch(ctx context.Context, messages []Message) ([]Result, error)
}

// HTTPSender posts batches as JSON to a push gateway
type HTTPSender struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSender creates a sender for endpoint
func NewHTTPSender(endpoint, apiKey string) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type batchRequest struct {
	Messages []Message `json:"messages"`
}

type batchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Error string `json:"error,omitempty"`
	} `json:"results"`
}

// SendBatch implements Sender
func (s *HTTPSender) SendBatch(ctx context.Context, messages []Message) ([]Result, error) {
	if len(messages) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	body, err := json.Marshal(batchRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var decoded batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	byID := make(map[string]string, len(decoded.Results))
	for _, r := range decoded.Results {
		byID[r.ID] = r.Error
	}

	results := make([]Result, len(messages))
	for i, m := range messages {
		results[i] = Result{MessageID: m.ID}
		msg, ok := byID[m.ID]
		switch {
		case !ok:
			results[i].Err = fmt.Errorf("%w: missing from gateway response", ErrRejected)
		case msg != "":
			results[i].Err = fmt.Errorf("%w: %s", ErrRejected, msg)
		}
	}
	return results, nil
}

// LogSender only logs messages. Used when no push endpoint is configured.
type LogSender struct{}

// SendBatch implements Sender
func (LogSender) SendBatch(_ context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, len(messages))
	for i, m := range messages {
		slog.Info("push message", "message_id", m.ID, "title", m.Title, "body", m.Body)
		results[i] = Result{MessageID: m.ID}
	}
	return results, nil
}

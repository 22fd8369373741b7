package schedparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hireai/scheduling-service/internal/model"
)

// RemoteParser calls the external parsing service over HTTP. Transport
// failures surface as errors; an empty slot list is a valid answer.
type RemoteParser struct {
	baseURL string
	client  *http.Client
}

func NewRemoteParser(baseURL string, timeout time.Duration) *RemoteParser {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteParser{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *RemoteParser) Parse(ctx context.Context, message string, now time.Time) (*Result, error) {
	payload, err := json.Marshal(map[string]string{
		"message":      message,
		"current_date": now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/parse_schedule", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call parser service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser service returned status %d", resp.StatusCode)
	}

	var body struct {
		Slots      []model.Slot `json:"slots"`
		AIMessage  string       `json:"ai_message"`
		AckMessage string       `json:"ack_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode parser response: %w", err)
	}

	ack := body.AckMessage
	if ack == "" {
		ack = body.AIMessage
	}
	return &Result{Slots: body.Slots, AckMessage: ack}, nil
}

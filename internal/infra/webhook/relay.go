package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"deck-dash-service/internal/domain"
)

// Relay forwards deck requests to the content-generation webhook.
type Relay struct {
	url    string
	client *http.Client
}

func NewRelay(url string, timeout time.Duration) *Relay {
	return &Relay{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a webhook URL was set.
func (r *Relay) Configured() bool {
	return r != nil && r.url != ""
}

// Forward posts the request as JSON; any non-2xx response is an error.
func (r *Relay) Forward(ctx context.Context, req domain.DeckRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode deck request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("call webhook: unexpected status %s", resp.Status)
	}
	return nil
}

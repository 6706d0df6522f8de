package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

const defaultTimeout = 10 * time.Second

// WebhookNotifier posts alert payloads to a configured HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

type alertPayload struct {
	Subject string       `json:"subject"`
	Alert   models.Alert `json:"alert"`
}

type failurePayload struct {
	Subject    string   `json:"subject"`
	EvidenceID string   `json:"evidence_id"`
	Errors     []string `json:"errors"`
}

func (n *WebhookNotifier) Alert(ctx context.Context, subject string, a models.Alert) error {
	return n.post(ctx, alertPayload{Subject: subject, Alert: a})
}

func (n *WebhookNotifier) Failure(ctx context.Context, subject, evidenceID string, errs []string) error {
	return n.post(ctx, failurePayload{Subject: subject, EvidenceID: evidenceID, Errors: errs})
}

func (n *WebhookNotifier) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding notification")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building notification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "delivering notification")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier drops notifications. Used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) Alert(ctx context.Context, subject string, a models.Alert) error {
	return nil
}

func (NoopNotifier) Failure(ctx context.Context, subject, evidenceID string, errs []string) error {
	return nil
}

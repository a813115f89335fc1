package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"refchain/internal/notify/metrics"
)

// HTTPNotifier forwards messages to an external delivery gateway over HTTP.
// Provider failures are logged and reported as false, never as errors.
type HTTPNotifier struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHTTPNotifier constructs a gateway-backed notifier.
func NewHTTPNotifier(baseURL, apiKey string, logger *slog.Logger, m *metrics.Metrics) *HTTPNotifier {
	return &HTTPNotifier{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		metrics: m,
	}
}

type gatewayRequest struct {
	Kind            string `json:"kind"`
	RecipientName   string `json:"recipient_name"`
	RecipientEmail  string `json:"recipient_email"`
	TenantName      string `json:"tenant_name,omitempty"`
	ReferenceType   string `json:"reference_type,omitempty"`
	Token           string `json:"token,omitempty"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	DaysUntilExpiry int    `json:"days_until_expiry,omitempty"`
	Rating          int    `json:"rating,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	DeclineReason   string `json:"decline_reason,omitempty"`
	NewlyVerified   bool   `json:"newly_verified,omitempty"`
	Percentage      int    `json:"percentage,omitempty"`
}

type gatewayResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

func (n *HTTPNotifier) Send(ctx context.Context, msg Message) bool {
	payload := gatewayRequest{
		Kind:            string(msg.Kind),
		RecipientName:   msg.RecipientName,
		RecipientEmail:  msg.RecipientEmail,
		TenantName:      msg.TenantName,
		ReferenceType:   msg.ReferenceType,
		Token:           msg.Token,
		DaysUntilExpiry: msg.DaysUntilExpiry,
		Rating:          msg.Rating,
		Feedback:        msg.Feedback,
		DeclineReason:   msg.DeclineReason,
		NewlyVerified:   msg.NewlyVerified,
		Percentage:      msg.Percentage,
	}
	if !msg.ExpiresAt.IsZero() {
		payload.ExpiresAt = msg.ExpiresAt.UTC().Format(time.RFC3339)
	}

	ok := n.dispatch(ctx, payload)
	if n.metrics != nil {
		n.metrics.IncrementSent(string(msg.Kind), ok)
	}
	return ok
}

func (n *HTTPNotifier) dispatch(ctx context.Context, payload gatewayRequest) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.ErrorContext(ctx, "notification encode failed", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.baseURL+"/api/v1/messages/send", bytes.NewReader(body))
	if err != nil {
		n.logger.ErrorContext(ctx, "notification request failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.WarnContext(ctx, "notification gateway unreachable",
			"kind", payload.Kind,
			"error", err,
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.WarnContext(ctx, "notification gateway rejected message",
			"kind", payload.Kind,
			"status", resp.StatusCode,
		)
		return false
	}

	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		n.logger.WarnContext(ctx, "notification gateway response unreadable", "error", err)
		return false
	}
	if decoded.Status != "sent" {
		n.logger.WarnContext(ctx, "notification not delivered",
			"kind", payload.Kind,
			"gateway_status", decoded.Status,
			"message_id", decoded.MessageID,
		)
		return false
	}

	n.logger.InfoContext(ctx, "notification dispatched",
		"kind", payload.Kind,
		"recipient", payload.RecipientEmail,
		"message_id", decoded.MessageID,
	)
	return true
}

package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tryouts-intake/internal/models"
	"tryouts-intake/internal/util"
)

// Stub provider for development and tests:
// - CreateCheckout: returns a /pay/stub?session=... link, no network calls
// - Webhook: POST /webhooks/payments with X-Signature = HMAC-SHA256 hex of
//   the raw body, payload mirroring models.InboundEvent

type Provider struct {
	secret  string
	baseURL string
}

func New(secret, baseURL string) *Provider {
	return &Provider{secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) CreateCheckout(ctx context.Context, req models.CheckoutRequest) (models.CheckoutSession, error) {
	id := fmt.Sprintf("stub_%s_%d", req.Frequency, time.Now().UnixNano())
	url := "/pay/stub?session=" + id
	if p.baseURL != "" {
		url = p.baseURL + url
	}
	return models.CheckoutSession{ID: id, URL: url}, nil
}

type webhookPayload struct {
	Type        string            `json:"type"`
	ID          string            `json:"id"`
	PaymentKey  string            `json:"payment_key"`
	CustomerID  string            `json:"customer_id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Attempt     int64             `json:"attempt"`
	Frequency   string            `json:"frequency"`
	FormFields  map[string]string `json:"form_fields,omitempty"`
}

func (p *Provider) VerifyAndParse(body []byte, headers map[string]string) (models.InboundEvent, error) {
	sig := headers["x-signature"]
	expected := util.HMACSHA256Hex(p.secret, string(body))
	if sig == "" || !util.HMACEqual(sig, expected) {
		return models.InboundEvent{}, fmt.Errorf("invalid signature")
	}

	var pl webhookPayload
	if err := json.Unmarshal(body, &pl); err != nil {
		return models.InboundEvent{}, fmt.Errorf("decode webhook: %w", err)
	}
	if strings.TrimSpace(pl.Type) == "" {
		return models.InboundEvent{}, fmt.Errorf("bad payload: type is empty")
	}
	if strings.TrimSpace(pl.PaymentKey) == "" {
		return models.InboundEvent{}, fmt.Errorf("bad payload: payment_key is empty")
	}

	return models.InboundEvent{
		Type:            models.EventType(pl.Type),
		ProviderEventID: pl.ID,
		PaymentKey:      pl.PaymentKey,
		CustomerID:      pl.CustomerID,
		Email:           pl.Email,
		FirstName:       pl.FirstName,
		LastName:        pl.LastName,
		AmountCents:     pl.AmountCents,
		Currency:        pl.Currency,
		AttemptCount:    pl.Attempt,
		Frequency:       pl.Frequency,
		FormFields:      pl.FormFields,
	}, nil
}

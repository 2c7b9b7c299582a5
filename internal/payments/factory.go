package payments

import (
	"fmt"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/payments/stripe"
	"tryouts-intake/internal/payments/stub"
)

func NewProvider(cfg config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case "stripe":
		return stripe.New(cfg), nil
	case "stub":
		return stub.New(cfg.PaymentWebhookSecret, cfg.BasePublicURL), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}

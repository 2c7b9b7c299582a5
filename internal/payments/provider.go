package payments

import (
	"context"

	"tryouts-intake/internal/models"
)

// Provider abstracts the payment processor. Implementations own the wire
// format and the signature scheme; the rest of the service only ever sees
// the canonical models.InboundEvent.
type Provider interface {
	Name() string

	// CreateCheckout opens a hosted payment page for a registration.
	CreateCheckout(ctx context.Context, req models.CheckoutRequest) (models.CheckoutSession, error)

	// VerifyAndParse authenticates a raw webhook body against the signing
	// secret and maps the provider's event onto the canonical event set.
	// Fails closed: any signature or payload problem returns an error
	// before anything else looks at the event. Header keys are lowercased.
	// Event types outside the canonical set come back as-is with a nil
	// error; the dispatcher logs and ignores them.
	VerifyAndParse(body []byte, headers map[string]string) (models.InboundEvent, error)
}

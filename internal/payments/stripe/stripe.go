package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/fields"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
)

// Provider drives Stripe Checkout and maps Stripe webhook events onto the
// canonical event set. Registration form fields travel as checkout-session
// metadata, so the completed-checkout webhook carries everything needed to
// build the record without local state.
type Provider struct {
	cfg config.Config
	api *client.API
}

func New(cfg config.Config) *Provider {
	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: remote.NewHTTPClient(cfg.RemoteTimeout),
	})
	api := &client.API{}
	api.Init(cfg.StripeAPIKey, &stripe.Backends{API: b, Connect: b, Uploads: b})
	return &Provider{cfg: cfg, api: api}
}

func (p *Provider) Name() string { return "stripe" }

func (p *Provider) CreateCheckout(ctx context.Context, req models.CheckoutRequest) (models.CheckoutSession, error) {
	if p.cfg.StripeAPIKey == "" {
		return models.CheckoutSession{}, remote.NotConfigured("stripe", "STRIPE_API_KEY")
	}

	price := p.cfg.StripePriceMonthly
	mode := stripe.CheckoutSessionModeSubscription
	if req.Frequency == fields.FrequencyFull {
		price = p.cfg.StripePriceFull
		mode = stripe.CheckoutSessionModePayment
	}
	if price == "" {
		return models.CheckoutSession{}, remote.NotConfigured("stripe", "STRIPE_PRICE_FULL", "STRIPE_PRICE_MONTHLY")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(mode)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(price),
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata("frequency", req.Frequency)
	params.AddMetadata("first_name", req.FirstName)
	params.AddMetadata("last_name", req.LastName)
	for k, v := range req.FormFields {
		params.AddMetadata(k, v)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return models.CheckoutSession{}, wrapErr("create checkout session", err)
	}
	return models.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *Provider) VerifyAndParse(body []byte, headers map[string]string) (models.InboundEvent, error) {
	event, err := webhook.ConstructEvent(body, headers["stripe-signature"], p.cfg.PaymentWebhookSecret)
	if err != nil {
		return models.InboundEvent{}, fmt.Errorf("stripe signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return models.InboundEvent{}, fmt.Errorf("decode checkout session: %w", err)
		}
		return fromCheckout(event.ID, cs), nil

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return models.InboundEvent{}, fmt.Errorf("decode payment intent: %w", err)
		}
		return fromPaymentIntent(event.ID, pi), nil

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return models.InboundEvent{}, fmt.Errorf("decode invoice: %w", err)
		}
		return fromInvoice(event.ID, inv), nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return models.InboundEvent{}, fmt.Errorf("decode subscription: %w", err)
		}
		ev := models.InboundEvent{
			Type:            models.EventSubscriptionDeleted,
			ProviderEventID: event.ID,
			PaymentKey:      sub.ID,
		}
		if sub.Customer != nil {
			ev.CustomerID = sub.Customer.ID
		}
		return ev, nil

	default:
		// Authentic but unhandled; the dispatcher logs and ignores it.
		return models.InboundEvent{
			Type:            models.EventType(event.Type),
			ProviderEventID: event.ID,
		}, nil
	}
}

func fromCheckout(eventID string, cs stripe.CheckoutSession) models.InboundEvent {
	ev := models.InboundEvent{
		Type:            models.EventCheckoutCompleted,
		ProviderEventID: eventID,
		PaymentKey:      cs.ID,
		Email:           cs.CustomerEmail,
		AmountCents:     cs.AmountTotal,
		Currency:        string(cs.Currency),
		Frequency:       cs.Metadata["frequency"],
		FirstName:       cs.Metadata["first_name"],
		LastName:        cs.Metadata["last_name"],
		FormFields:      formFields(cs.Metadata),
	}
	// Prefer the durable payment/subscription id over the session id: the
	// follow-up events for the same money reference those, and the record
	// store keys on them.
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		ev.PaymentKey = cs.PaymentIntent.ID
	}
	if cs.Subscription != nil && cs.Subscription.ID != "" {
		ev.PaymentKey = cs.Subscription.ID
	}
	if cs.Customer != nil {
		ev.CustomerID = cs.Customer.ID
	}
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		ev.Email = cs.CustomerDetails.Email
	}
	return ev
}

func fromPaymentIntent(eventID string, pi stripe.PaymentIntent) models.InboundEvent {
	ev := models.InboundEvent{
		Type:            models.EventPaymentSucceeded,
		ProviderEventID: eventID,
		PaymentKey:      pi.ID,
		Email:           pi.ReceiptEmail,
		AmountCents:     pi.Amount,
		Currency:        string(pi.Currency),
		Frequency:       pi.Metadata["frequency"],
		FirstName:       pi.Metadata["first_name"],
		LastName:        pi.Metadata["last_name"],
		FormFields:      formFields(pi.Metadata),
	}
	if pi.Customer != nil {
		ev.CustomerID = pi.Customer.ID
	}
	return ev
}

func fromInvoice(eventID string, inv stripe.Invoice) models.InboundEvent {
	ev := models.InboundEvent{
		Type:            models.EventInvoiceFailed,
		ProviderEventID: eventID,
		PaymentKey:      inv.ID,
		Email:           inv.CustomerEmail,
		FirstName:       firstToken(inv.CustomerName),
		AmountCents:     inv.AmountDue,
		Currency:        string(inv.Currency),
		AttemptCount:    inv.AttemptCount,
	}
	if inv.Subscription != nil && inv.Subscription.ID != "" {
		ev.PaymentKey = inv.Subscription.ID
	}
	if inv.Customer != nil {
		ev.CustomerID = inv.Customer.ID
	}
	return ev
}

// formFields is the checkout metadata minus the identity keys the provider
// itself consumed.
func formFields(md map[string]string) map[string]string {
	if len(md) == 0 {
		return nil
	}
	ff := make(map[string]string, len(md))
	for k, v := range md {
		switch k {
		case "frequency", "first_name", "last_name":
		default:
			ff[k] = v
		}
	}
	return ff
}

func firstToken(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func wrapErr(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &remote.Error{
			Kind:    remote.KindFromStatus(serr.HTTPStatusCode),
			Service: "stripe",
			Op:      op,
			Status:  serr.HTTPStatusCode,
			Err:     err,
		}
	}
	return &remote.Error{Kind: remote.KindNetwork, Service: "stripe", Op: op, Err: err}
}

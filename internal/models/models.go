package models

import "fmt"

// PaymentStatus is the canonical Status value written to the record store.
// The record store schema is a closed select field: only these exact
// strings are accepted.
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "Pending"
	StatusPaid              PaymentStatus = "Paid"
	StatusFinalWarning      PaymentStatus = "Payment Failed - Final Warning"
	StatusSubscriptionEnded PaymentStatus = "Subscription Ended"
)

// StatusForAttempt maps a recurring-payment attempt count to the status
// written alongside the retry notice. Attempts 1 and 2 keep the retry
// number; from the third attempt on the status stays at the final warning,
// so escalation never counts past the point where the wording stops
// changing. Attempts below 1 are clamped to 1.
func StatusForAttempt(attempt int64) PaymentStatus {
	if attempt < 1 {
		attempt = 1
	}
	if attempt >= 3 {
		return StatusFinalWarning
	}
	return PaymentStatus(fmt.Sprintf("Payment Failed - Retry %d", attempt))
}

// EventType classifies an inbound payment-processor event. Providers map
// their native event names onto these; anything outside the canonical set
// is carried through as-is so the dispatcher can log and ignore it.
type EventType string

const (
	EventPaymentSucceeded    EventType = "payment-succeeded"
	EventCheckoutCompleted   EventType = "checkout-completed"
	EventInvoiceFailed       EventType = "invoice-failed"
	EventSubscriptionDeleted EventType = "subscription-deleted"
)

// InboundEvent is a verified, provider-neutral payment event. It is built
// by a payments.Provider after signature verification and consumed once by
// the dispatcher; nothing persists it (the record store is the system of
// record).
type InboundEvent struct {
	Type            EventType
	ProviderEventID string

	// PaymentKey is the processor-issued payment or subscription id. It is
	// the idempotency/lookup key for every record-store write.
	PaymentKey string
	CustomerID string

	Email     string
	FirstName string
	LastName  string

	AmountCents int64
	Currency    string

	// AttemptCount is set on invoice-failed events only.
	AttemptCount int64

	// Frequency is the raw form value ("full" or "monthly") round-tripped
	// through checkout metadata.
	Frequency string

	// FormFields carries the raw registration form values (position,
	// experience, sock size, ...) round-tripped through checkout metadata.
	FormFields map[string]string
}

// RegistrationRecord is one row in the record store, created once per
// successful payment event and afterwards mutated only via Status. All
// display fields hold canonical values (see internal/fields); raw form
// values never reach the store directly.
type RegistrationRecord struct {
	PaymentKey string
	CustomerID string

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Position   string
	Experience string
	SockSize   string
	PlayerType string

	PaymentPlan string // exact label, "Paid in full" or "Monthly"
	AmountCents int64
	Currency    string

	Status       PaymentStatus
	RegisteredAt string // RFC 3339
}

// Contact is a marketing-list upsert target. Upserts are idempotent keyed
// by the lowercased email; repeat upserts union Tags and never create a
// duplicate member.
type Contact struct {
	Email       string
	FirstName   string
	LastName    string
	Tags        []string
	MergeFields map[string]string
}

// Lead is a raw lead-capture form submission, before the spam gate.
type Lead struct {
	FirstName string
	LastName  string
	Email     string
}

// CheckoutRequest asks a payment provider to open a hosted payment page
// for one registration. FormFields ride along as checkout metadata so the
// completed-checkout webhook can rebuild the registration without any
// state held here.
type CheckoutRequest struct {
	Email     string
	FirstName string
	LastName  string

	// Frequency selects the price: "full" for a one-time payment,
	// anything else for the monthly subscription.
	Frequency   string
	AmountCents int64
	Currency    string

	FormFields map[string]string

	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider's answer: where to send the customer.
type CheckoutSession struct {
	ID  string
	URL string
}

// Package dispatch routes verified payment events to the record store,
// the marketing list, and the notification channels. Everything runs
// inline in the calling request; downstream failures are logged and
// swallowed so one flaky integration never blocks the others, and never
// surfaces to the event source.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"tryouts-intake/internal/fields"
	"tryouts-intake/internal/marketing"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/notify"
	"tryouts-intake/internal/records"
	"tryouts-intake/internal/remote"
	"tryouts-intake/internal/util"
)

// TagRegistration marks contacts who completed a paid registration.
const TagRegistration = "Tryout Registration"

type Dispatcher struct {
	records  records.Store
	contacts marketing.Client
	notices  *notify.Service
	admin    notify.AdminNotifier
	log      *slog.Logger

	now func() string
}

func New(store records.Store, contacts marketing.Client, notices *notify.Service, admin notify.AdminNotifier, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		records:  store,
		contacts: contacts,
		notices:  notices,
		admin:    admin,
		log:      log,
		now:      util.NowISO,
	}
}

// Outcome reports which downstream actions actually ran, for logging and
// tests. Handle never returns an error: by the time an event is verified,
// the only answer to the event source is "received".
type Outcome struct {
	RecordWritten   bool
	ContactUpserted bool
	AdminNotified   bool
	NoticeSent      bool
	StatusUpdated   bool
	Ignored         bool
}

func (d *Dispatcher) Handle(ctx context.Context, ev models.InboundEvent) Outcome {
	switch ev.Type {
	case models.EventPaymentSucceeded, models.EventCheckoutCompleted:
		return d.handleSuccess(ctx, ev)
	case models.EventInvoiceFailed:
		return d.handleInvoiceFailed(ctx, ev)
	case models.EventSubscriptionDeleted:
		return d.handleSubscriptionDeleted(ctx, ev)
	default:
		// Authentic event we don't handle yet. Acknowledged and dropped.
		d.log.Info("ignoring event", "type", ev.Type, "event_id", ev.ProviderEventID)
		return Outcome{Ignored: true}
	}
}

// handleSuccess writes the registration record, then the marketing
// contact, then the admin alert. The three are independent: each failure
// is logged and the rest still run.
func (d *Dispatcher) handleSuccess(ctx context.Context, ev models.InboundEvent) Outcome {
	var out Outcome
	rec := fields.BuildRecord(ev, d.now())

	if err := d.records.UpsertRecord(ctx, ev.PaymentKey, rec); err != nil {
		d.logErr("record upsert failed", ev, err)
	} else {
		out.RecordWritten = true
	}

	if rec.Email == "" {
		d.log.Warn("no email on success event, skipping contact upsert", "key", ev.PaymentKey)
	} else {
		contact := models.Contact{
			Email:     rec.Email,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Tags:      []string{TagRegistration},
		}
		if err := d.contacts.UpsertContact(ctx, contact); err != nil {
			d.logErr("contact upsert failed", ev, err)
		} else {
			out.ContactUpserted = true
		}
	}

	text := fmt.Sprintf("New tryout registration: %s %s, %s, %s (%s)",
		rec.FirstName, rec.LastName, rec.PaymentPlan,
		util.FormatAmount(rec.AmountCents, rec.Currency), ev.PaymentKey)
	if err := d.admin.NotifyAdmins(ctx, text); err != nil {
		d.logErr("admin notify failed", ev, err)
	} else {
		out.AdminNotified = true
	}
	return out
}

func (d *Dispatcher) handleInvoiceFailed(ctx context.Context, ev models.InboundEvent) Outcome {
	var out Outcome

	tpl, err := d.notices.SendRetryNotice(ctx, ev.Email, ev.FirstName, ev.AttemptCount, ev.AmountCents, ev.Currency)
	if err != nil {
		d.logErr("retry notice failed", ev, err)
	} else {
		out.NoticeSent = true
		d.log.Info("retry notice sent", "template", tpl, "attempt", ev.AttemptCount, "key", ev.PaymentKey)
	}

	status := models.StatusForAttempt(ev.AttemptCount)
	if err := d.records.UpdateStatus(ctx, ev.PaymentKey, status); err != nil {
		d.logErr("status update failed", ev, err)
	} else {
		out.StatusUpdated = true
	}
	return out
}

func (d *Dispatcher) handleSubscriptionDeleted(ctx context.Context, ev models.InboundEvent) Outcome {
	var out Outcome
	if err := d.records.UpdateStatus(ctx, ev.PaymentKey, models.StatusSubscriptionEnded); err != nil {
		d.logErr("status update failed", ev, err)
	} else {
		out.StatusUpdated = true
	}
	return out
}

func (d *Dispatcher) logErr(msg string, ev models.InboundEvent, err error) {
	d.log.Error(msg,
		"type", ev.Type,
		"key", ev.PaymentKey,
		"kind", remote.KindOf(err),
		"err", err,
	)
}

// Package fields converts raw form values into the canonical display
// strings the record store's schema accepts. Every mapping lives here and
// only here; call sites never carry their own copies of these tables.
package fields

import (
	"log/slog"
	"strings"

	"tryouts-intake/internal/models"
)

// Field names accepted by Normalize.
const (
	FieldSockSize       = "sock_size"
	FieldPosition       = "position"
	FieldExperience     = "experience"
	FieldPlayerType     = "player_type"
	FieldPlanStatus     = "payment_frequency_status"
	FieldPlanLabel      = "payment_frequency_label"
	FrequencyFull       = "full"
	FrequencyMonthly    = "monthly"
	PlanLabelPaidInFull = "Paid in full"
	PlanLabelMonthly    = "Monthly"
)

var sockSizes = map[string]string{
	"S":  "Small",
	"M":  "Medium",
	"L":  "Large",
	"XL": "Extra Large",
}

var positions = map[string]string{
	"attack":   "Attack",
	"midfield": "Midfield",
	"defense":  "Defense",
	"goalie":   "Goalie",
}

var experiences = map[string]string{
	"none": "No experience",
	"1":    "1 year",
	"2-3":  "2-3 years",
	"4-5":  "4-5 years",
	"6+":   "6+ years",
}

var playerTypes = map[string]string{
	"new":       "New Player",
	"returning": "Returning Player",
}

// Normalize maps a raw form value for the named field to its canonical
// value. It is total: unknown raw values in the lookup-table fields pass
// through unchanged (and are logged) so an unanticipated form value still
// reaches the record store instead of being dropped. The payment-frequency
// fields are a binary rule, not a table; see PlanStatus and PlanLabel.
func Normalize(field, raw string) string {
	switch field {
	case FieldSockSize:
		return lookup(field, sockSizes, raw)
	case FieldPosition:
		return lookup(field, positions, raw)
	case FieldExperience:
		return lookup(field, experiences, raw)
	case FieldPlayerType:
		return lookup(field, playerTypes, raw)
	case FieldPlanStatus:
		return string(PlanStatus(raw))
	case FieldPlanLabel:
		return PlanLabel(raw)
	default:
		slog.Warn("normalize: unknown field", "field", field, "raw", raw)
		return raw
	}
}

func lookup(field string, table map[string]string, raw string) string {
	if raw == "" {
		return ""
	}
	if v, ok := table[raw]; ok {
		return v
	}
	slog.Warn("normalize: unmapped value passed through", "field", field, "raw", raw)
	return raw
}

// SockSize maps S/M/L/XL to the store's size labels.
func SockSize(raw string) string { return lookup(FieldSockSize, sockSizes, raw) }

// Position maps a form position code to its display name.
func Position(raw string) string { return lookup(FieldPosition, positions, raw) }

// Experience maps an experience bracket code to its display name.
func Experience(raw string) string { return lookup(FieldExperience, experiences, raw) }

// PlayerType maps new/returning to the store's player labels.
func PlayerType(raw string) string { return lookup(FieldPlayerType, playerTypes, raw) }

// PlanStatus derives the initial payment status from the chosen payment
// frequency: paying in full settles immediately, anything else starts a
// subscription and stays Pending until the processor confirms each cycle.
// Only the exact raw value "full" selects the paid branch.
func PlanStatus(frequency string) models.PaymentStatus {
	if frequency == FrequencyFull {
		return models.StatusPaid
	}
	return models.StatusPending
}

// PlanLabel derives the record store's plan label from the payment
// frequency. The store's schema matches these labels case-sensitively.
func PlanLabel(frequency string) string {
	if frequency == FrequencyFull {
		return PlanLabelPaidInFull
	}
	return PlanLabelMonthly
}

// BuildRecord assembles the canonical record-store row for a successful
// payment event, normalizing every schema-constrained field.
func BuildRecord(ev models.InboundEvent, registeredAt string) models.RegistrationRecord {
	ff := ev.FormFields
	get := func(k string) string { return strings.TrimSpace(ff[k]) }

	return models.RegistrationRecord{
		PaymentKey:   ev.PaymentKey,
		CustomerID:   ev.CustomerID,
		FirstName:    firstNonEmpty(ev.FirstName, get("first_name")),
		LastName:     firstNonEmpty(ev.LastName, get("last_name")),
		Email:        firstNonEmpty(ev.Email, get("email")),
		Phone:        get("phone"),
		Position:     Position(get("position")),
		Experience:   Experience(get("experience")),
		SockSize:     SockSize(get("sock_size")),
		PlayerType:   PlayerType(get("player_type")),
		PaymentPlan:  PlanLabel(ev.Frequency),
		AmountCents:  ev.AmountCents,
		Currency:     ev.Currency,
		Status:       PlanStatus(ev.Frequency),
		RegisteredAt: registeredAt,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

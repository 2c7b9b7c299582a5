// Package records is the write path to the club's registration store, the
// external system of record. Nothing is persisted locally; every write is
// keyed by the processor-issued payment or subscription id.
package records

import (
	"context"

	"tryouts-intake/internal/models"
)

// Store is the contract the dispatcher consumes. Implementations must
// tolerate repeat upserts for the same key (update, never duplicate) and
// return *remote.Error (or remote.ErrNotConfigured) on failure so callers
// can log the failure kind and move on.
type Store interface {
	Name() string

	// UpsertRecord creates or replaces the record for key.
	UpsertRecord(ctx context.Context, key string, rec models.RegistrationRecord) error

	// UpdateStatus patches only the status of an existing record.
	UpdateStatus(ctx context.Context, key string, status models.PaymentStatus) error
}

// Disabled is the store installed when backend credentials are absent at
// startup. Every call short-circuits with the not-configured error; the
// process keeps serving.
type Disabled struct {
	Err error
}

func (d Disabled) Name() string { return "disabled" }

func (d Disabled) UpsertRecord(context.Context, string, models.RegistrationRecord) error {
	return d.Err
}

func (d Disabled) UpdateStatus(context.Context, string, models.PaymentStatus) error {
	return d.Err
}

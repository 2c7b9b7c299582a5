// Package marketing upserts contacts into the club's email-marketing list.
// Upserts are idempotent on the lowercased email: repeats update the member
// and union tags, they never create a duplicate.
package marketing

import (
	"context"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
)

type Client interface {
	Name() string
	UpsertContact(ctx context.Context, c models.Contact) error
}

// Disabled is installed when the list credentials are absent. Calls
// short-circuit; the caller logs and continues.
type Disabled struct {
	Err error
}

func (d Disabled) Name() string { return "disabled" }

func (d Disabled) UpsertContact(context.Context, models.Contact) error { return d.Err }

// New wires the Mailchimp client, or a Disabled one when unconfigured.
func New(cfg config.Config) Client {
	if cfg.MailchimpAPIKey == "" || cfg.MailchimpListID == "" {
		return Disabled{Err: remote.NotConfigured("mailchimp", "MAILCHIMP_API_KEY", "MAILCHIMP_LIST_ID")}
	}
	return NewMailchimp(cfg)
}

package notify

import (
	"context"
	"fmt"
	"strings"

	"tryouts-intake/internal/util"
)

// TemplateID names one of the four retry-notice escalation buckets.
type TemplateID string

const (
	TemplateCasual      TemplateID = "casual"
	TemplateFriendly    TemplateID = "friendly"
	TemplateUrgent      TemplateID = "urgent"
	TemplateFinalNotice TemplateID = "final-notice"
)

// SelectTemplate maps a payment attempt count to its escalation bucket.
// Attempts below 1 clamp into the casual bucket; anything past 4 stays at
// final notice. The tone only ever escalates across attempts.
func SelectTemplate(attempt int64) TemplateID {
	switch {
	case attempt <= 1:
		return TemplateCasual
	case attempt == 2:
		return TemplateFriendly
	case attempt == 3:
		return TemplateUrgent
	default:
		return TemplateFinalNotice
	}
}

type noticeTemplate struct {
	subject string
	body    string
}

var noticeTemplates = map[TemplateID]noticeTemplate{
	TemplateCasual: {
		subject: "Heads up: your tryout payment didn't go through",
		body: "Hi {first_name},\n\n" +
			"Quick heads up: the latest payment for your tryout registration " +
			"({amount_due}) didn't go through. These things happen. We'll retry the " +
			"card on file automatically in a couple of days, so there's probably " +
			"nothing you need to do.\n\n" +
			"Thanks,\nThe Club",
	},
	TemplateFriendly: {
		subject: "Still having trouble with your tryout payment",
		body: "Hi {first_name},\n\n" +
			"We tried your card again for {amount_due} and it still didn't go " +
			"through. A quick checklist that fixes this most of the time:\n\n" +
			"- the card hasn't expired\n" +
			"- the billing zip code matches your bank's records\n" +
			"- there are funds available for the charge\n\n" +
			"You can update your card from the link in your original confirmation " +
			"email. We'll retry again soon.\n\n" +
			"Thanks,\nThe Club",
	},
	TemplateUrgent: {
		subject: "Action needed: tryout payment failed again",
		body: "Hi {first_name},\n\n" +
			"This is the third time the payment of {amount_due} for your tryout " +
			"registration has failed, and your roster spot is now at risk. Please " +
			"update your payment details today so we can keep your registration " +
			"active.\n\n" +
			"If you're having trouble, reply to this email and we'll sort it out.\n\n" +
			"The Club",
	},
	TemplateFinalNotice: {
		subject: "Final notice: registration will be cancelled",
		body: "Hi {first_name},\n\n" +
			"We've been unable to collect {amount_due} after several attempts. " +
			"This is our final notice: unless the payment goes through on the next " +
			"attempt, your subscription will be cancelled and the roster spot " +
			"released to the waitlist.\n\n" +
			"Update your payment details now to keep your registration.\n\n" +
			"The Club",
	},
}

// RenderNotice fills the selected template. Placeholders are {first_name}
// and {amount_due}; the amount renders from integer minor units. An
// unknown id falls into the final-notice bucket rather than de-escalating.
func RenderNotice(id TemplateID, firstName string, amountCents int64, currency string) (subject, body string) {
	t, ok := noticeTemplates[id]
	if !ok {
		t = noticeTemplates[TemplateFinalNotice]
	}
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}
	r := strings.NewReplacer(
		"{first_name}", name,
		"{amount_due}", util.FormatAmount(amountCents, currency),
	)
	return r.Replace(t.subject), r.Replace(t.body)
}

// Service is the retry notifier: template selection plus rendering plus
// the actual send.
type Service struct {
	mailer Mailer
}

func NewService(mailer Mailer) *Service {
	return &Service{mailer: mailer}
}

// SendRetryNotice picks the escalation bucket for attempt and mails the
// rendered notice. The chosen template comes back for the caller's log.
func (s *Service) SendRetryNotice(ctx context.Context, to, firstName string, attempt, amountCents int64, currency string) (TemplateID, error) {
	id := SelectTemplate(attempt)
	if strings.TrimSpace(to) == "" {
		return id, fmt.Errorf("retry notice: recipient email is empty")
	}
	subject, body := RenderNotice(id, firstName, amountCents, currency)
	if err := s.mailer.SendMail(ctx, to, subject, body); err != nil {
		return id, err
	}
	return id, nil
}

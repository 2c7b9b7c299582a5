package server

import (
	"fmt"
	"time"

	"tryouts-intake/internal/util"
)

// Form actions a token can be issued for. A lead token never validates a
// registration post and vice versa.
const (
	actionLead         = "lead"
	actionRegistration = "registration"
)

// csrfIssuer hands out per-action form tokens: an HMAC over the action and
// a 12-hour time bucket. Tokens from the current and the previous bucket
// validate, so a form loaded just before rollover still submits; anything
// older is expired. Stateless on purpose: nothing is stored per client.
type csrfIssuer struct {
	secret string
	bucket time.Duration
	now    func() time.Time
}

func newCSRF(secret string) *csrfIssuer {
	return &csrfIssuer{secret: secret, bucket: 12 * time.Hour, now: time.Now}
}

func (c *csrfIssuer) currentBucket() int64 {
	return c.now().Unix() / int64(c.bucket/time.Second)
}

func (c *csrfIssuer) tokenAt(action string, bucket int64) string {
	return util.HMACSHA256Hex(c.secret, fmt.Sprintf("%s|%d", action, bucket))
}

// Token issues the current token for action.
func (c *csrfIssuer) Token(action string) string {
	return c.tokenAt(action, c.currentBucket())
}

// Valid reports whether token was issued for action within the last two
// buckets.
func (c *csrfIssuer) Valid(action, token string) bool {
	if token == "" {
		return false
	}
	b := c.currentBucket()
	return util.HMACEqual(token, c.tokenAt(action, b)) ||
		util.HMACEqual(token, c.tokenAt(action, b-1))
}

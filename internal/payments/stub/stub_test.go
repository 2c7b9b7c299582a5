package stub

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryouts-intake/internal/models"
	"tryouts-intake/internal/util"
)

const secret = "test-secret"

func sign(body string) map[string]string {
	return map[string]string{"x-signature": util.HMACSHA256Hex(secret, body)}
}

func TestVerifyAndParse(t *testing.T) {
	p := New(secret, "")
	body := `{
		"type": "checkout-completed",
		"id": "evt_1",
		"payment_key": "pi_123",
		"customer_id": "cus_9",
		"email": "kid@example.com",
		"first_name": "Jamie",
		"last_name": "Ortiz",
		"amount_cents": 12800,
		"currency": "usd",
		"frequency": "full",
		"form_fields": {"position": "goalie", "sock_size": "M"}
	}`

	ev, err := p.VerifyAndParse([]byte(body), sign(body))
	require.NoError(t, err)

	assert.Equal(t, models.EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "pi_123", ev.PaymentKey)
	assert.Equal(t, "cus_9", ev.CustomerID)
	assert.Equal(t, "kid@example.com", ev.Email)
	assert.Equal(t, int64(12800), ev.AmountCents)
	assert.Equal(t, "full", ev.Frequency)
	assert.Equal(t, "goalie", ev.FormFields["position"])
}

func TestVerifyAndParseRejectsBadSignature(t *testing.T) {
	p := New(secret, "")
	body := `{"type":"payment-succeeded","payment_key":"pi_1"}`

	_, err := p.VerifyAndParse([]byte(body), map[string]string{"x-signature": "deadbeef"})
	require.Error(t, err)

	_, err = p.VerifyAndParse([]byte(body), map[string]string{})
	require.Error(t, err)

	// Signature over a different body must not validate this one.
	other := sign(`{"type":"payment-succeeded","payment_key":"pi_2"}`)
	_, err = p.VerifyAndParse([]byte(body), other)
	require.Error(t, err)
}

func TestVerifyAndParseRejectsMalformedPayload(t *testing.T) {
	p := New(secret, "")

	body := `{not json`
	_, err := p.VerifyAndParse([]byte(body), sign(body))
	require.Error(t, err)

	body = `{"type":"payment-succeeded"}`
	_, err = p.VerifyAndParse([]byte(body), sign(body))
	require.Error(t, err, "payment_key is required")

	body = `{"payment_key":"pi_1"}`
	_, err = p.VerifyAndParse([]byte(body), sign(body))
	require.Error(t, err, "type is required")
}

func TestCreateCheckout(t *testing.T) {
	p := New(secret, "https://club.example.com/")

	s, err := p.CreateCheckout(context.Background(), models.CheckoutRequest{Frequency: "monthly"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.URL, "https://club.example.com/pay/stub?session=stub_monthly_"), s.URL)
	assert.NotEmpty(t, s.ID)
}

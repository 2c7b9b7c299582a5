package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSHA256Hex(t *testing.T) {
	// RFC 4231 test case 2.
	got := HMACSHA256Hex("Jefe", "what do ya want for nothing?")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestHMACEqual(t *testing.T) {
	sig := HMACSHA256Hex("secret", "body")
	assert.True(t, HMACEqual(sig, sig))
	assert.False(t, HMACEqual(sig, HMACSHA256Hex("secret", "other")))
	assert.False(t, HMACEqual("", sig))
}

func TestSubscriberHash(t *testing.T) {
	// Hash is over the lowercased, trimmed address, so these all collapse
	// to the same member key.
	want := SubscriberHash("player@example.com")
	assert.Equal(t, want, SubscriberHash("Player@Example.com"))
	assert.Equal(t, want, SubscriberHash("  player@example.com "))
	assert.Len(t, want, 32)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{12800, "usd", "$128.00"},
		{4250, "USD", "$42.50"},
		{5, "usd", "$0.05"},
		{0, "", "$0.00"},
		{9900, "eur", "€99.00"},
		{-1500, "usd", "-$15.00"},
		{2000, "nok", "NOK 20.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.cents, tt.currency), "FormatAmount(%d, %q)", tt.cents, tt.currency)
	}
}

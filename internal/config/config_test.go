package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CREDENTIALS_DIR", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("RECORD_BACKEND", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Equal(t, "stub", c.PaymentProvider)
	assert.Equal(t, "airtable", c.RecordBackend)
	assert.Equal(t, 10*time.Second, c.RemoteTimeout)
	// Development tail of the chain keeps a secretless process bootable.
	assert.Equal(t, "dev-csrf-secret", c.CSRFSecret)
	assert.Equal(t, "change-me", c.PaymentWebhookSecret)
	assert.Equal(t, int64(12800), c.PriceFullCents)
	assert.Equal(t, "usd", c.Currency)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CREDENTIALS_DIR", "")
	t.Setenv("HTTP_ADDR", ":9900")
	t.Setenv("BASE_PUBLIC_URL", "https://intake.example.com/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CSRF_SECRET", "s3cret")
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec_x")
	t.Setenv("STRIPE_API_KEY", "sk_test_1")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "3")
	t.Setenv("FORM_RATE_RPS", "2.5")
	t.Setenv("FORM_RATE_BURST", "4")
	t.Setenv("ADMIN_TG_IDS", "100, 200,bogus,,300")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9900", c.HTTPAddr)
	assert.Equal(t, "https://intake.example.com", c.BasePublicURL, "trailing slash trimmed")
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, "s3cret", c.CSRFSecret)
	assert.Equal(t, "stripe", c.PaymentProvider)
	assert.Equal(t, "whsec_x", c.PaymentWebhookSecret)
	assert.Equal(t, 3*time.Second, c.RemoteTimeout)
	assert.Equal(t, 2.5, c.FormRateRPS)
	assert.Equal(t, 4, c.FormRateBurst)
	assert.Equal(t, map[int64]bool{100: true, 200: true, 300: true}, c.AdminTGIDs)
}

func TestLoadBadLogLevel(t *testing.T) {
	t.Setenv("CREDENTIALS_DIR", "")
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestFileSourceBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MAILCHIMP_API_KEY"), []byte("file-key-us14\n"), 0o600))

	t.Setenv("CREDENTIALS_DIR", dir)
	t.Setenv("MAILCHIMP_API_KEY", "env-key-us14")
	t.Setenv("LOG_LEVEL", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-key-us14", c.MailchimpAPIKey, "secrets dir wins over environment")
}

func TestResolverOrder(t *testing.T) {
	r := NewResolver(
		StaticSource{"A": "first"},
		StaticSource{"A": "second", "B": "second"},
	)

	v, ok := r.Resolve("A")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = r.Resolve("B")
	require.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = r.Resolve("C")
	assert.False(t, ok)
}

func TestFileSourceMissing(t *testing.T) {
	_, ok := FileSource{Dir: ""}.Resolve("X")
	assert.False(t, ok)

	_, ok = FileSource{Dir: t.TempDir()}.Resolve("X")
	assert.False(t, ok)
}

func TestMissingIntegrationCredsAreNotFatal(t *testing.T) {
	t.Setenv("CREDENTIALS_DIR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MAILCHIMP_API_KEY", "")
	t.Setenv("AIRTABLE_API_KEY", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("SMTP_ADDR", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Empty(t, c.MailchimpAPIKey)
	assert.Empty(t, c.AirtableAPIKey)
	assert.Empty(t, c.TelegramToken)
}

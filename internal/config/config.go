package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CredentialSource resolves a single named credential. Sources are
// consulted in order; the first hit wins.
type CredentialSource interface {
	Resolve(name string) (string, bool)
}

// FileSource reads credentials from files named after the key inside Dir
// (the docker/k8s secrets convention, e.g. /run/secrets/MAILCHIMP_API_KEY).
type FileSource struct {
	Dir string
}

func (s FileSource) Resolve(name string) (string, bool) {
	if s.Dir == "" {
		return "", false
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(b))
	return v, v != ""
}

// EnvSource reads credentials from the process environment.
type EnvSource struct{}

func (EnvSource) Resolve(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

// StaticSource serves fixed values, used as the development-default tail
// of the chain.
type StaticSource map[string]string

func (s StaticSource) Resolve(name string) (string, bool) {
	v, ok := s[name]
	return v, ok && v != ""
}

// Resolver is an ordered credential chain.
type Resolver struct {
	sources []CredentialSource
}

func NewResolver(sources ...CredentialSource) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve walks the chain and returns the first non-empty value.
func (r *Resolver) Resolve(name string) (string, bool) {
	for _, s := range r.sources {
		if v, ok := s.Resolve(name); ok {
			return v, true
		}
	}
	return "", false
}

func (r *Resolver) value(name, def string) string {
	if v, ok := r.Resolve(name); ok {
		return v
	}
	return def
}

func (r *Resolver) int64Value(name string, def int64) int64 {
	v, ok := r.Resolve(name)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func (r *Resolver) intValue(name string, def int) int {
	return int(r.int64Value(name, int64(def)))
}

func (r *Resolver) floatValue(name string, def float64) float64 {
	v, ok := r.Resolve(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// devDefaults is the static tail of the chain. Real deployments override
// every secret here via the environment or the credentials dir.
var devDefaults = StaticSource{
	"CSRF_SECRET":            "dev-csrf-secret",
	"PAYMENT_WEBHOOK_SECRET": "change-me",
	"PRICE_FULL_CENTS":       "12800",
	"PRICE_MONTHLY_CENTS":    "3200",
	"CURRENCY":               "usd",
}

type Config struct {
	HTTPAddr      string
	BasePublicURL string
	LogLevel      slog.Level

	CSRFSecret    string
	RemoteTimeout time.Duration
	FormRateRPS   float64
	FormRateBurst int

	PaymentProvider      string
	PaymentWebhookSecret string
	StripeAPIKey         string
	StripePriceFull      string
	StripePriceMonthly   string
	PriceFullCents       int64
	PriceMonthlyCents    int64
	Currency             string

	RecordBackend            string
	AirtableAPIKey           string
	AirtableBaseID           string
	AirtableTable            string
	GoogleServiceAccountJSON string
	SpreadsheetID            string
	RegistrationsSheet       string

	MailchimpAPIKey string
	MailchimpListID string

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	TelegramToken string
	AdminTGIDs    map[int64]bool
}

// Load resolves the configuration once at startup. Missing integration
// credentials are not an error: the affected client is constructed
// disabled and its calls short-circuit, so a marketing or record-store
// outage in config never stops the process from serving webhooks.
func Load() (Config, error) {
	dir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIR"))
	return load(NewResolver(FileSource{Dir: dir}, EnvSource{}, devDefaults))
}

func load(r *Resolver) (Config, error) {
	var c Config

	c.HTTPAddr = r.value("HTTP_ADDR", ":8080")
	c.BasePublicURL = strings.TrimRight(r.value("BASE_PUBLIC_URL", ""), "/")

	lvl, err := parseLogLevel(r.value("LOG_LEVEL", "info"))
	if err != nil {
		return c, err
	}
	c.LogLevel = lvl

	c.CSRFSecret = r.value("CSRF_SECRET", "")
	if c.CSRFSecret == "" {
		return c, fmt.Errorf("CSRF_SECRET is empty")
	}

	c.RemoteTimeout = time.Duration(r.intValue("REMOTE_TIMEOUT_SECONDS", 10)) * time.Second
	c.FormRateRPS = r.floatValue("FORM_RATE_RPS", 5)
	c.FormRateBurst = r.intValue("FORM_RATE_BURST", 10)

	c.PaymentProvider = r.value("PAYMENT_PROVIDER", "stub")
	c.PaymentWebhookSecret = r.value("PAYMENT_WEBHOOK_SECRET", "")
	if c.PaymentWebhookSecret == "" {
		return c, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is empty")
	}
	c.StripeAPIKey = r.value("STRIPE_API_KEY", "")
	c.StripePriceFull = r.value("STRIPE_PRICE_FULL", "")
	c.StripePriceMonthly = r.value("STRIPE_PRICE_MONTHLY", "")
	c.PriceFullCents = r.int64Value("PRICE_FULL_CENTS", 0)
	c.PriceMonthlyCents = r.int64Value("PRICE_MONTHLY_CENTS", 0)
	c.Currency = r.value("CURRENCY", "usd")

	c.RecordBackend = r.value("RECORD_BACKEND", "airtable")
	c.AirtableAPIKey = r.value("AIRTABLE_API_KEY", "")
	c.AirtableBaseID = r.value("AIRTABLE_BASE_ID", "")
	c.AirtableTable = r.value("AIRTABLE_TABLE", "Registrations")
	c.GoogleServiceAccountJSON = r.value("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	c.SpreadsheetID = r.value("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	c.RegistrationsSheet = r.value("SHEETS_REGISTRATIONS_SHEET", "Registrations")

	c.MailchimpAPIKey = r.value("MAILCHIMP_API_KEY", "")
	c.MailchimpListID = r.value("MAILCHIMP_LIST_ID", "")

	c.SMTPAddr = r.value("SMTP_ADDR", "")
	c.SMTPUsername = r.value("SMTP_USERNAME", "")
	c.SMTPPassword = r.value("SMTP_PASSWORD", "")
	c.SMTPFrom = r.value("SMTP_FROM", "")

	c.TelegramToken = r.value("TELEGRAM_BOT_TOKEN", "")
	c.AdminTGIDs = parseAdminIDs(r.value("ADMIN_TG_IDS", ""))

	return c, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", raw)
	}
}

func parseAdminIDs(raw string) map[int64]bool {
	m := map[int64]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		m[v] = true
	}
	return m
}

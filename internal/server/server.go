// Package server is the HTTP edge: payment-processor webhooks on one side,
// public form posts on the other. Handlers parse and validate, then hand
// verified events to the dispatcher; they never talk to downstream services
// directly except for checkout creation and the lead contact upsert.
package server

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/dispatch"
	"tryouts-intake/internal/marketing"
	"tryouts-intake/internal/payments"
)

// New builds the HTTP server. The returned server is not started; the
// caller owns ListenAndServe and Shutdown.
func New(cfg config.Config, pay payments.Provider, disp *dispatch.Dispatcher, contacts marketing.Client, log *slog.Logger) *http.Server {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{
		cfg:      cfg,
		pay:      pay,
		disp:     disp,
		contacts: contacts,
		csrf:     newCSRF(cfg.CSRFSecret),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/webhooks/payments", h.handleWebhook)
	mux.HandleFunc("/pay/stub", handleStubPay)

	// Only the public form endpoints are rate limited; the webhook comes
	// from the payment processor and must never be throttled.
	forms := http.NewServeMux()
	forms.HandleFunc("/forms/token", h.handleToken)
	forms.HandleFunc("/forms/lead", h.handleLead)
	forms.HandleFunc("/forms/registration", h.handleRegistration)
	limiter := newIPRateLimiter(cfg.FormRateRPS, cfg.FormRateBurst)
	mux.Handle("/forms/", limiter.middleware(forms))

	var handler http.Handler = mux
	handler = maxBytes(1<<20, handler)
	handler = logging(log, handler)
	handler = requestID(handler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// handleStubPay is the destination of checkout URLs issued by the stub
// payment provider. There is no card form: completion is simulated by
// posting a signed event to the webhook, same as the real processor would.
func handleStubPay(w http.ResponseWriter, r *http.Request) {
	session := html.EscapeString(r.URL.Query().Get("session"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<title>Stub checkout</title>
<h1>Stub checkout</h1>
<p>Session <code>%s</code>.</p>
<p>This provider has no payment page. To complete the flow, POST a signed
event to <code>/webhooks/payments</code>.</p>
`, session)
}

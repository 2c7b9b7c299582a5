package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/dispatch"
	"tryouts-intake/internal/fields"
	"tryouts-intake/internal/marketing"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/payments"
	"tryouts-intake/internal/remote"
	"tryouts-intake/internal/spam"
	"tryouts-intake/internal/util"
)

// TagLead marks marketing contacts that came in through the lead form.
const TagLead = "Interest List"

type handlers struct {
	cfg      config.Config
	pay      payments.Provider
	disp     *dispatch.Dispatcher
	contacts marketing.Client
	csrf     *csrfIssuer
	log      *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------- webhook ----------

func (h *handlers) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "message": "POST only"})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "unreadable body"})
		return
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	ev, err := h.pay.VerifyAndParse(body, headers)
	if err != nil {
		h.log.Warn("webhook rejected", "provider", h.pay.Name(), "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid signature or payload"})
		return
	}

	out := h.disp.Handle(r.Context(), ev)
	h.log.Info("webhook handled",
		"provider", h.pay.Name(),
		"type", ev.Type,
		"payment_key", ev.PaymentKey,
		"ignored", out.Ignored,
		"record_written", out.RecordWritten,
		"status_updated", out.StatusUpdated,
	)
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}

// ---------- form token ----------

func (h *handlers) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "message": "GET only"})
		return
	}
	action := r.URL.Query().Get("action")
	if action != actionLead && action != actionRegistration {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": fmt.Sprintf("action must be %q or %q", actionLead, actionRegistration),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"action":  action,
		"token":   h.csrf.Token(action),
	})
}

// ---------- lead form ----------

// leadAccepted is the one and only success body for the lead form. The spam
// path below returns it too: flagged submissions are dropped silently so the
// response gives a bot no signal that it was detected.
func leadAccepted() map[string]any {
	return map[string]any{"success": true, "message": "Thanks! You're on the list."}
}

func (h *handlers) handleLead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "message": "POST only"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "malformed form body"})
		return
	}
	if !h.csrf.Valid(actionLead, r.PostFormValue("form_token")) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "invalid or expired form token"})
		return
	}

	lead := models.Lead{
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
	}
	if missing := validateLead(lead); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "missing or invalid fields: " + strings.Join(missing, ", "),
		})
		return
	}

	if spam.IsLikelySpam(lead.FirstName + " " + lead.LastName) {
		h.log.Info("lead dropped as likely spam",
			"email_hash", util.SubscriberHash(lead.Email),
			"name_len", len(lead.FirstName)+len(lead.LastName),
		)
		writeJSON(w, http.StatusOK, leadAccepted())
		return
	}

	contact := models.Contact{
		Email:     lead.Email,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Tags:      []string{TagLead},
	}
	if err := h.contacts.UpsertContact(r.Context(), contact); err != nil {
		h.log.Error("lead contact upsert failed",
			"kind", remote.KindOf(err),
			"email_hash", util.SubscriberHash(lead.Email),
			"err", err,
		)
	}
	writeJSON(w, http.StatusOK, leadAccepted())
}

func validateLead(l models.Lead) []string {
	var missing []string
	if l.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if l.LastName == "" {
		missing = append(missing, "last_name")
	}
	if !validEmail(l.Email) {
		missing = append(missing, "email")
	}
	return missing
}

// validEmail is a presence check, not an RFC parse. The marketing list is
// the authority on deliverability; here we only refuse obviously empty or
// mangled input.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

// ---------- registration form ----------

var registrationRequired = []string{
	"first_name", "last_name", "email",
	"position", "experience", "sock_size", "player_type",
	"payment_frequency",
}

func (h *handlers) handleRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "message": "POST only"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "malformed form body"})
		return
	}
	if !h.csrf.Valid(actionRegistration, r.PostFormValue("form_token")) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "invalid or expired form token"})
		return
	}

	get := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }

	var missing []string
	for _, name := range registrationRequired {
		if get(name) == "" {
			missing = append(missing, name)
		}
	}
	if !validEmail(get("email")) && get("email") != "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "missing or invalid fields: " + strings.Join(missing, ", "),
		})
		return
	}

	frequency := get("payment_frequency")
	amount := h.cfg.PriceMonthlyCents
	if frequency == fields.FrequencyFull {
		amount = h.cfg.PriceFullCents
	}

	req := models.CheckoutRequest{
		Email:       get("email"),
		FirstName:   get("first_name"),
		LastName:    get("last_name"),
		Frequency:   frequency,
		AmountCents: amount,
		Currency:    h.cfg.Currency,
		FormFields: map[string]string{
			"phone":                get("phone"),
			fields.FieldPosition:   get(fields.FieldPosition),
			fields.FieldExperience: get(fields.FieldExperience),
			fields.FieldSockSize:   get(fields.FieldSockSize),
			fields.FieldPlayerType: get(fields.FieldPlayerType),
		},
		SuccessURL: h.cfg.BasePublicURL + "/thanks",
		CancelURL:  h.cfg.BasePublicURL + "/registration",
	}

	session, err := h.pay.CreateCheckout(r.Context(), req)
	if err != nil {
		h.log.Error("checkout creation failed",
			"provider", h.pay.Name(),
			"kind", remote.KindOf(err),
			"frequency", frequency,
			"err", err,
		)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"message": "could not start checkout, please try again shortly",
		})
		return
	}

	h.log.Info("checkout session created",
		"provider", h.pay.Name(),
		"session_id", session.ID,
		"frequency", frequency,
		"amount_cents", amount,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"checkout_url": session.URL,
	})
}

// ---------- health ----------

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": h.pay.Name(),
		"time":     util.NowISO(),
	})
}

package marketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
	"tryouts-intake/internal/util"
)

// Mailchimp v3 list client. The data center is the API key's suffix
// ("xxxx-us14" lives at us14.api.mailchimp.com).
type Mailchimp struct {
	apiKey string
	listID string
	http   *http.Client

	// BaseURL is swapped out by tests; derived from the key otherwise.
	BaseURL string
}

func NewMailchimp(cfg config.Config) *Mailchimp {
	return &Mailchimp{
		apiKey:  cfg.MailchimpAPIKey,
		listID:  cfg.MailchimpListID,
		http:    remote.NewHTTPClient(cfg.RemoteTimeout),
		BaseURL: baseURLForKey(cfg.MailchimpAPIKey),
	}
}

func baseURLForKey(key string) string {
	i := strings.LastIndex(key, "-")
	if i < 0 || i == len(key)-1 {
		return ""
	}
	return fmt.Sprintf("https://%s.api.mailchimp.com/3.0", key[i+1:])
}

func (m *Mailchimp) Name() string { return "mailchimp" }

type memberRequest struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
}

type tagEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type tagsRequest struct {
	Tags []tagEntry `json:"tags"`
}

type apiProblem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// UpsertContact adds the contact to the list. When the list answers
// "Member Exists" the member is already subscribed, so only the tags are
// applied; the existing member is never touched otherwise and never
// duplicated.
func (m *Mailchimp) UpsertContact(ctx context.Context, c models.Contact) error {
	if m.BaseURL == "" {
		return &remote.Error{
			Kind:    remote.KindInvalidRequest,
			Service: "mailchimp",
			Op:      "upsert_contact",
			Detail:  "api key carries no data-center suffix",
		}
	}

	merge := map[string]string{}
	if c.FirstName != "" {
		merge["FNAME"] = c.FirstName
	}
	if c.LastName != "" {
		merge["LNAME"] = c.LastName
	}
	for k, v := range c.MergeFields {
		merge[strings.ToUpper(k)] = v
	}

	body := memberRequest{
		EmailAddress: c.Email,
		Status:       "subscribed",
		MergeFields:  merge,
		Tags:         c.Tags,
	}
	url := fmt.Sprintf("%s/lists/%s/members", m.BaseURL, m.listID)
	problem, err := m.post(ctx, "upsert_contact", url, body)
	if err == nil {
		return nil
	}
	if problem == nil || problem.Title != "Member Exists" {
		return err
	}
	return m.applyTags(ctx, c)
}

// applyTags is the conflict fallback: POST the tag set as active against
// the member hash. Mailchimp unions tags server-side.
func (m *Mailchimp) applyTags(ctx context.Context, c models.Contact) error {
	if len(c.Tags) == 0 {
		return nil
	}
	entries := make([]tagEntry, 0, len(c.Tags))
	for _, t := range c.Tags {
		entries = append(entries, tagEntry{Name: t, Status: "active"})
	}
	url := fmt.Sprintf("%s/lists/%s/members/%s/tags", m.BaseURL, m.listID, util.SubscriberHash(c.Email))
	_, err := m.post(ctx, "apply_tags", url, tagsRequest{Tags: entries})
	return err
}

// post issues a JSON POST and, on a non-2xx answer, returns both the
// decoded problem body (when there is one) and a *remote.Error.
func (m *Mailchimp) post(ctx context.Context, op, url string, payload interface{}) (*apiProblem, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("anystring", m.apiKey)

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, &remote.Error{Kind: remote.KindNetwork, Service: "mailchimp", Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil, nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var problem apiProblem
	_ = json.Unmarshal(raw, &problem)
	rerr := &remote.Error{
		Kind:    remote.KindFromStatus(resp.StatusCode),
		Service: "mailchimp",
		Op:      op,
		Status:  resp.StatusCode,
		Detail:  problem.Title,
	}
	if problem.Title == "" {
		rerr.Detail = strings.TrimSpace(string(raw))
	}
	if problem.Title != "" {
		return &problem, rerr
	}
	return nil, rerr
}

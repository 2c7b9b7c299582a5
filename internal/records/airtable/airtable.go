// Package airtable talks to an Airtable-style REST table. The table is
// schema-constrained: select columns only accept their configured options,
// so writes go out with typecast off and an unmapped value comes back as a
// 422 instead of silently creating a new option.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// keyField is the column holding the processor-issued id; every lookup
// filters on it.
const keyField = "Payment ID"

type Client struct {
	apiKey string
	baseID string
	table  string
	http   *http.Client

	// BaseURL is swapped out by tests.
	BaseURL string
}

func New(cfg config.Config) *Client {
	return &Client{
		apiKey:  cfg.AirtableAPIKey,
		baseID:  cfg.AirtableBaseID,
		table:   cfg.AirtableTable,
		http:    remote.NewHTTPClient(cfg.RemoteTimeout),
		BaseURL: defaultBaseURL,
	}
}

func (c *Client) Name() string { return "airtable" }

type record struct {
	ID     string                 `json:"id,omitempty"`
	Fields map[string]interface{} `json:"fields"`
}

type recordList struct {
	Records []record `json:"records"`
}

type writeRequest struct {
	Records  []record `json:"records"`
	Typecast bool     `json:"typecast"`
}

func (c *Client) UpsertRecord(ctx context.Context, key string, rec models.RegistrationRecord) error {
	existing, err := c.findByKey(ctx, key)
	if err != nil {
		return err
	}
	fields := recordFields(key, rec)
	if existing == "" {
		return c.write(ctx, "upsert_record", http.MethodPost, record{Fields: fields})
	}
	return c.write(ctx, "upsert_record", http.MethodPatch, record{ID: existing, Fields: fields})
}

func (c *Client) UpdateStatus(ctx context.Context, key string, status models.PaymentStatus) error {
	existing, err := c.findByKey(ctx, key)
	if err != nil {
		return err
	}
	if existing == "" {
		return &remote.Error{
			Kind:    remote.KindInvalidRequest,
			Service: "airtable",
			Op:      "update_status",
			Detail:  fmt.Sprintf("no record for key %s", key),
		}
	}
	return c.write(ctx, "update_status", http.MethodPatch, record{
		ID:     existing,
		Fields: map[string]interface{}{"Status": string(status)},
	})
}

// findByKey returns the Airtable record id for key, or "" when absent.
func (c *Client) findByKey(ctx context.Context, key string) (string, error) {
	// Processor ids never contain quotes; strip them anyway so the formula
	// stays well-formed.
	clean := strings.ReplaceAll(key, `"`, "")
	q := url.Values{}
	q.Set("filterByFormula", fmt.Sprintf(`{%s} = "%s"`, keyField, clean))
	q.Set("maxRecords", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL()+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	var list recordList
	if err := c.do(req, "find_record", &list); err != nil {
		return "", err
	}
	if len(list.Records) == 0 {
		return "", nil
	}
	return list.Records[0].ID, nil
}

func (c *Client) write(ctx context.Context, op, method string, rec record) error {
	body, err := json.Marshal(writeRequest{Records: []record{rec}, Typecast: false})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.tableURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, nil)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &remote.Error{Kind: remote.KindNetwork, Service: "airtable", Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &remote.Error{
			Kind:    remote.KindFromStatus(resp.StatusCode),
			Service: "airtable",
			Op:      op,
			Status:  resp.StatusCode,
			Detail:  strings.TrimSpace(string(detail)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &remote.Error{Kind: remote.KindUnknown, Service: "airtable", Op: op, Err: err}
	}
	return nil
}

func (c *Client) tableURL() string {
	return c.BaseURL + "/" + c.baseID + "/" + url.PathEscape(c.table)
}

func recordFields(key string, rec models.RegistrationRecord) map[string]interface{} {
	return map[string]interface{}{
		keyField:        key,
		"Customer ID":   rec.CustomerID,
		"First Name":    rec.FirstName,
		"Last Name":     rec.LastName,
		"Email":         rec.Email,
		"Phone":         rec.Phone,
		"Position":      rec.Position,
		"Experience":    rec.Experience,
		"Sock Size":     rec.SockSize,
		"Player Type":   rec.PlayerType,
		"Payment Plan":  rec.PaymentPlan,
		"Amount":        float64(rec.AmountCents) / 100,
		"Currency":      strings.ToUpper(rec.Currency),
		"Status":        string(rec.Status),
		"Registered At": rec.RegisteredAt,
	}
}

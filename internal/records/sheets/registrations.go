package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
	"tryouts-intake/internal/util"
)

// Column layout, A through N. Header row at index 0.
//
//	A payment_key   B customer_id  C first_name  D last_name  E email
//	F phone         G position     H experience  I sock_size  J player_type
//	K payment_plan  L amount       M status      N registered_at
const (
	colSpan   = "A:N"
	statusCol = "M"
)

// ---------- low-level value helpers ----------

func (c *Client) readAll(ctx context.Context) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.sheet+"!"+colSpan).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("read", err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.sheet+"!"+colSpan, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("append", err)
	}
	return nil
}

func (c *Client) updateRange(ctx context.Context, a1 string, values [][]interface{}) error {
	vr := &sheetsv4.ValueRange{Values: values}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, c.sheet+"!"+a1, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("update", err)
	}
	return nil
}

// ---------- Registrations ----------

// findRow returns the 1-indexed sheet row holding key, or 0 when absent.
func (c *Client) findRow(ctx context.Context, key string) (int, error) {
	values, err := c.readAll(ctx)
	if err != nil {
		return 0, err
	}
	// header row at index 0
	for i := 1; i < len(values); i++ {
		if get(values[i], 0) == key {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) UpsertRecord(ctx context.Context, key string, rec models.RegistrationRecord) error {
	rowNum, err := c.findRow(ctx, key)
	if err != nil {
		return err
	}
	row := recordRow(key, rec)
	if rowNum == 0 {
		return c.appendRow(ctx, row)
	}
	a1 := fmt.Sprintf("A%d:N%d", rowNum, rowNum)
	return c.updateRange(ctx, a1, [][]interface{}{row})
}

func (c *Client) UpdateStatus(ctx context.Context, key string, status models.PaymentStatus) error {
	rowNum, err := c.findRow(ctx, key)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		return &remote.Error{
			Kind:    remote.KindInvalidRequest,
			Service: "sheets",
			Op:      "update_status",
			Detail:  fmt.Sprintf("no row for key %s", key),
		}
	}
	a1 := fmt.Sprintf("%s%d", statusCol, rowNum)
	return c.updateRange(ctx, a1, [][]interface{}{{string(status)}})
}

func recordRow(key string, rec models.RegistrationRecord) []interface{} {
	return []interface{}{
		key,
		rec.CustomerID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Phone,
		rec.Position,
		rec.Experience,
		rec.SockSize,
		rec.PlayerType,
		rec.PaymentPlan,
		util.FormatAmount(rec.AmountCents, rec.Currency),
		string(rec.Status),
		rec.RegisteredAt,
	}
}

// ---------- helpers ----------

func get(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &remote.Error{
			Kind:    remote.KindFromStatus(gerr.Code),
			Service: "sheets",
			Op:      op,
			Status:  gerr.Code,
			Err:     err,
		}
	}
	return &remote.Error{Kind: remote.KindNetwork, Service: "sheets", Op: op, Err: err}
}

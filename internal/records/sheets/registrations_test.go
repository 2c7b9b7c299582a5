package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
)

// fakeSheet records writes against a canned Values.Get response.
type fakeSheet struct {
	values  [][]interface{}
	appends []sheetsv4.ValueRange
	updates map[string]sheetsv4.ValueRange // keyed by range from the path
}

func (f *fakeSheet) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(sheetsv4.ValueRange{Values: f.values})
		case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
			var vr sheetsv4.ValueRange
			require.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
			f.appends = append(f.appends, vr)
			json.NewEncoder(w).Encode(map[string]interface{}{})
		case r.Method == http.MethodPut:
			var vr sheetsv4.ValueRange
			require.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
			i := strings.LastIndex(path, "!")
			require.GreaterOrEqual(t, i, 0, "update path carries a range: %s", path)
			f.updates[path[i+1:]] = vr
			json.NewEncoder(w).Encode(map[string]interface{}{})
		default:
			t.Fatalf("unexpected call %s %s", r.Method, path)
		}
	})
}

func newFakeClient(t *testing.T, f *fakeSheet) *Client {
	t.Helper()
	f.updates = map[string]sheetsv4.ValueRange{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	s, err := sheetsv4.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return &Client{srv: s, spreadsheetID: "sheet1", sheet: "Registrations"}
}

func header() []interface{} {
	return []interface{}{
		"payment_key", "customer_id", "first_name", "last_name", "email",
		"phone", "position", "experience", "sock_size", "player_type",
		"payment_plan", "amount", "status", "registered_at",
	}
}

func sampleRecord() models.RegistrationRecord {
	return models.RegistrationRecord{
		PaymentKey:   "pi_77",
		CustomerID:   "cus_9",
		FirstName:    "Jamie",
		LastName:     "Ortiz",
		Email:        "kid@example.com",
		Position:     "Goalie",
		Experience:   "2-3 years",
		SockSize:     "Medium",
		PlayerType:   "Returning Player",
		PaymentPlan:  "Paid in full",
		AmountCents:  12800,
		Currency:     "usd",
		Status:       models.StatusPaid,
		RegisteredAt: "2026-03-01T10:00:00Z",
	}
}

func TestUpsertRecordAppendsWhenAbsent(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{header()}}
	c := newFakeClient(t, f)

	require.NoError(t, c.UpsertRecord(context.Background(), "pi_77", sampleRecord()))

	require.Len(t, f.appends, 1)
	row := f.appends[0].Values[0]
	assert.Equal(t, "pi_77", row[0])
	assert.Equal(t, "Jamie", row[2])
	assert.Equal(t, "$128.00", row[11])
	assert.Equal(t, "Paid", row[12])
	assert.Empty(t, f.updates)
}

func TestUpsertRecordUpdatesExistingRow(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{
		header(),
		{"sub_1"},
		{"pi_77", "cus_9", "Jamie"},
	}}
	c := newFakeClient(t, f)

	require.NoError(t, c.UpsertRecord(context.Background(), "pi_77", sampleRecord()))

	assert.Empty(t, f.appends)
	vr, ok := f.updates["A3:N3"]
	require.True(t, ok, "existing row is sheet row 3, got %v", f.updates)
	assert.Equal(t, "pi_77", vr.Values[0][0])
	assert.Len(t, vr.Values[0], 14)
}

func TestUpdateStatusPatchesStatusCell(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{
		header(),
		{"sub_42", "cus_7", "Pat", "Doe", "pat@example.com", "", "Attack", "1 year", "Small", "New Player", "Monthly", "$32.00", "Pending", "2026-03-01T10:00:00Z"},
	}}
	c := newFakeClient(t, f)

	require.NoError(t, c.UpdateStatus(context.Background(), "sub_42", models.StatusFinalWarning))

	vr, ok := f.updates["M2"]
	require.True(t, ok, "status lives in column M, got %v", f.updates)
	assert.Equal(t, [][]interface{}{{"Payment Failed - Final Warning"}}, vr.Values)
}

func TestUpdateStatusMissingKey(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{header()}}
	c := newFakeClient(t, f)

	err := c.UpdateStatus(context.Background(), "sub_missing", models.StatusSubscriptionEnded)
	require.Error(t, err)
	assert.Equal(t, remote.KindInvalidRequest, remote.KindOf(err))
	assert.Empty(t, f.updates)
}

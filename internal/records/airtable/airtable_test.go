package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/models"
	"tryouts-intake/internal/remote"
)

func newTestClient(url string) *Client {
	c := New(config.Config{
		AirtableAPIKey: "key_test",
		AirtableBaseID: "appBase",
		AirtableTable:  "Registrations",
	})
	c.BaseURL = url
	return c
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

func TestUpsertRecordCreatesWhenAbsent(t *testing.T) {
	var created *writeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key_test", r.Header.Get("Authorization"))
		require.Equal(t, "/appBase/Registrations", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			assert.Contains(t, r.URL.Query().Get("filterByFormula"), `{Payment ID} = "pi_77"`)
			json.NewEncoder(w).Encode(recordList{})
		case http.MethodPost:
			var req writeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			created = &req
			json.NewEncoder(w).Encode(recordList{Records: []record{{ID: "recNew"}}})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.UpsertRecord(context.Background(), "pi_77", sampleRecord()))

	require.NotNil(t, created, "create POST not issued")
	require.Len(t, created.Records, 1)
	assert.False(t, created.Typecast, "typecast must stay off so schema mismatches are rejected")
	f := created.Records[0].Fields
	assert.Equal(t, "pi_77", f["Payment ID"])
	assert.Equal(t, "Goalie", f["Position"])
	assert.Equal(t, "Paid in full", f["Payment Plan"])
	assert.Equal(t, 128.0, f["Amount"])
	assert.Equal(t, "USD", f["Currency"])
	assert.Equal(t, "Paid", f["Status"])
}

func TestUpsertRecordPatchesWhenPresent(t *testing.T) {
	var patched *writeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(recordList{Records: []record{{ID: "rec123"}}})
		case http.MethodPatch:
			var req writeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			patched = &req
			json.NewEncoder(w).Encode(recordList{})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.UpsertRecord(context.Background(), "pi_77", sampleRecord()))

	require.NotNil(t, patched, "update PATCH not issued")
	assert.Equal(t, "rec123", patched.Records[0].ID)
}

func TestUpdateStatusPatchesOnlyStatus(t *testing.T) {
	var patched *writeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(recordList{Records: []record{{ID: "rec123"}}})
		case http.MethodPatch:
			var req writeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			patched = &req
			json.NewEncoder(w).Encode(recordList{})
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.UpdateStatus(context.Background(), "sub_42", models.StatusSubscriptionEnded))

	require.NotNil(t, patched)
	assert.Equal(t, map[string]interface{}{"Status": "Subscription Ended"}, patched.Records[0].Fields)
}

func TestUpdateStatusMissingRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordList{})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.UpdateStatus(context.Background(), "sub_missing", models.StatusSubscriptionEnded)
	require.Error(t, err)
	assert.Equal(t, remote.KindInvalidRequest, remote.KindOf(err))
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   remote.ErrorKind
	}{
		{http.StatusUnprocessableEntity, remote.KindInvalidRequest},
		{http.StatusTooManyRequests, remote.KindRateLimited},
		{http.StatusUnauthorized, remote.KindAuth},
		{http.StatusForbidden, remote.KindAuth},
		{http.StatusInternalServerError, remote.KindUnknown},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"type":"TEST"}}`, tc.status)
		}))
		c := newTestClient(srv.URL)
		err := c.UpsertRecord(context.Background(), "pi_1", sampleRecord())
		require.Error(t, err)
		assert.Equal(t, tc.kind, remote.KindOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestTransportErrorIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(srv.URL)
	err := c.UpsertRecord(context.Background(), "pi_1", sampleRecord())
	require.Error(t, err)
	assert.Equal(t, remote.KindNetwork, remote.KindOf(err))
}

package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDGenerated(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	rr := e.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "edge-7f3a")
	rr := e.do(req)
	assert.Equal(t, "edge-7f3a", rr.Header().Get("X-Request-ID"))
}

func TestOversizedWebhookBodyRejected(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	big := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(big))
	rr := e.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, e.store.count())
}

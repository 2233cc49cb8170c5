package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOperation(t *testing.T) {
	m := New("test")

	m.RecordOperation("create", nil)
	m.RecordOperation("create", errors.New("boom"))
	m.RecordOperation("create", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateCardOperations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateCardOperations.WithLabelValues("create", "error")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordOperation("delete", nil)
	m.RecordImportRows(1, 2, 3)
	m.RecordEvent("ratecard.created")
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New("shipdesk")
	m.ObserveRequest(http.MethodGet, "/api/v1/admin/ratecards", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shipdesk_http_requests_total"))
}

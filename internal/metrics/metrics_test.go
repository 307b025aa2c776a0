package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	// A second New must not panic with duplicate registration.
	m1 := New()
	m2 := New()

	m1.RecordLogout()
	assert.Equal(t, 1.0, testutil.ToFloat64(m1.LogoutsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.LogoutsTotal))
}

func TestRecordIdentityResolution(t *testing.T) {
	m := New()

	m.RecordIdentityResolution("kakao", OutcomeCreated)
	m.RecordIdentityResolution("kakao", OutcomeCreated)
	m.RecordIdentityResolution("google", OutcomeExisting)
	m.RecordIdentityResolution("", OutcomeCached)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues("kakao", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues("google", OutcomeExisting)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues("none", OutcomeCached)))
}

func TestRecordLogin(t *testing.T) {
	m := New()

	m.RecordLogin("form", true)
	m.RecordLogin("form", false)
	m.RecordLogin("form", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("form", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("form", "failure")))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.HTTPRequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
	m.RecordHTTPRequest(http.MethodGet, "/api/boards/{id}", 200, 5*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "", 404, time.Millisecond)
	m.HTTPRequestFinished()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/boards/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unknown", "404")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordIdentityResolution("google", OutcomeCreated)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `boardsvc_identity_resolutions_total{outcome="created",provider="google"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.RecordIdentityResolution("google", OutcomeCreated)
	r.RecordLogin("form", true)
	r.RecordLogout()
	r.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	r.HTTPRequestStarted()
	r.HTTPRequestFinished()
}

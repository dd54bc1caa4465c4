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

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/recipes/:id", "200"))

	RecordAPIRequest("GET", "/recipes/:id", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/recipes/:id", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordToggle(t *testing.T) {
	before := testutil.ToFloat64(ToggleTransitionsTotal.WithLabelValues("follow", "created"))
	RecordToggle("follow", "created")
	RecordToggle("follow", "created")
	assert.Equal(t, before+2, testutil.ToFloat64(ToggleTransitionsTotal.WithLabelValues("follow", "created")))
}

func TestRecordFeedDegraded(t *testing.T) {
	before := testutil.ToFloat64(FeedDegradedTotal.WithLabelValues("trending"))
	RecordFeedDegraded("trending")
	assert.Equal(t, before+1, testutil.ToFloat64(FeedDegradedTotal.WithLabelValues("trending")))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	RecordCacheResult("hit")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache_requests_total")
}

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

func TestPrometheusCollector_Counters(t *testing.T) {
	c := NewPrometheus()

	c.RecordAttempt("text_to_text")
	c.RecordAttempt("text_to_text")
	c.RecordAttempt("image_to_text")
	c.RecordInBandError("text_to_text")
	c.RecordTransportError("image_to_text")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.attempts.WithLabelValues("text_to_text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("image_to_text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.inBandErrors.WithLabelValues("text_to_text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transportErrors.WithLabelValues("image_to_text")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.attempts))
}

func TestPrometheusCollector_RecordOperation(t *testing.T) {
	c := NewPrometheus()

	c.RecordOperation("text_to_text", StatusOK, 250*time.Millisecond)
	c.RecordOperation("text_to_text", StatusExhausted, 3*time.Second)
	c.RecordOperation("check_batch_status", StatusError, 10*time.Millisecond)

	assert.Equal(t, 3, testutil.CollectAndCount(c.duration))
}

func TestPrometheusCollector_Registry(t *testing.T) {
	c := NewPrometheus()
	c.RecordAttempt("x")
	c.RecordInBandError("x")
	c.RecordTransportError("x")
	c.RecordOperation("x", StatusOK, time.Millisecond)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNoop(t *testing.T) {
	var c Collector = Noop{}
	c.RecordAttempt("x")
	c.RecordInBandError("x")
	c.RecordTransportError("x")
	c.RecordOperation("x", StatusOK, time.Second)
}

func TestPrometheusCollector_Handler(t *testing.T) {
	c := NewPrometheus()
	c.RecordAttempt("text_to_text")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gptservice_attempts_total{op="text_to_text"} 1`)
}

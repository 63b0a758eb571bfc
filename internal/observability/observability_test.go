package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-board/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/jobs", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/jobs", "GET", 200, 12*time.Millisecond)
	m.RecordError("/jobs/:id", "PUT", "FORBIDDEN")
	m.RecordTransition("accept")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/jobs", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/jobs/:id", "PUT", "FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordTransition("create")
}

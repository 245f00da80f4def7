package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordRecommendation("immediate", "fallback")
	r.RecordRecommendation("immediate", "fallback")
	r.RecordNarrative("ai")
	r.RecordEvent("wait_1_day", "ai")
	r.RecordError("market_fetch")
	r.RecordLastPrice(50000)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.recommendations.WithLabelValues("immediate", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.narratives.WithLabelValues("ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("wait_1_day", "ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("market_fetch")))
	assert.Equal(t, 50000.0, testutil.ToFloat64(r.lastPrice))
}

package fees

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	xhttp "OracleAgent/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEstimate(t *testing.T) {
	f := NewStatic().Estimate(context.Background())
	assert.Equal(t, 25, f.Fast)
	assert.Equal(t, 15, f.Medium)
	assert.Equal(t, 8, f.Slow)
	assert.NotNil(t, f.EstimatedAt)
}

func TestMempoolServesDegradedBeforeFirstRefresh(t *testing.T) {
	m := NewMempool("http://127.0.0.1:1", "@every 5m", xhttp.NewClient(), nil)
	assert.Equal(t, Degraded(), m.Estimate(context.Background()))
}

func TestMempoolRefresh(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "/api/v1/fees/recommended", r.URL.Path)
		_, _ = w.Write([]byte(`{"fastestFee":31,"halfHourFee":22,"hourFee":11,"economyFee":5,"minimumFee":1}`))
	}))
	defer srv.Close()

	m := NewMempool(srv.URL, "@every 5m", xhttp.NewClient(xhttp.WithTimeout(time.Second)), nil)
	require.NoError(t, m.Refresh(context.Background()))

	got := m.Estimate(context.Background())
	assert.Equal(t, 31, got.Fast)
	assert.Equal(t, 22, got.Medium)
	assert.Equal(t, 11, got.Slow)

	fail.Store(true)
	assert.Error(t, m.Refresh(context.Background()))
	assert.Equal(t, Degraded(), m.Estimate(context.Background()))
}

func TestMempoolStartRejectsBadSchedule(t *testing.T) {
	m := NewMempool("http://127.0.0.1:1", "not a schedule", xhttp.NewClient(), nil)
	assert.Error(t, m.Start(context.Background()))
}

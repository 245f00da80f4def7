package fees

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"OracleAgent/internal/domain/models"
	xhttp "OracleAgent/pkg/http"
	applogger "OracleAgent/pkg/logger"

	"github.com/robfig/cron/v3"
)

type recommendedFees struct {
	FastestFee  int `json:"fastestFee"`
	HalfHourFee int `json:"halfHourFee"`
	HourFee     int `json:"hourFee"`
	EconomyFee  int `json:"economyFee"`
	MinimumFee  int `json:"minimumFee"`
}

// Mempool serves the last fee table fetched from a mempool.space compatible API.
// Refresh runs on a cron schedule; until the first success, or after a failed refresh, Degraded() is served.
type Mempool struct {
	baseURL  string
	http     *xhttp.Client
	log      *applogger.Logger
	schedule string
	now      func() time.Time

	mu   sync.RWMutex
	last *models.NetworkFees
	cron *cron.Cron
}

func NewMempool(baseURL, schedule string, httpClient *xhttp.Client, l *applogger.Logger) *Mempool {
	if l == nil {
		l = applogger.Nop()
	}
	return &Mempool{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		log:      l.With(applogger.String("component", "fees")),
		schedule: schedule,
		now:      time.Now,
	}
}

func (m *Mempool) Estimate(context.Context) models.NetworkFees {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return Degraded()
	}
	return *m.last
}

// Refresh fetches the fee table once.
func (m *Mempool) Refresh(ctx context.Context) error {
	var body recommendedFees
	err := m.http.GetJSON(ctx, &xhttp.Request{URL: m.baseURL + "/api/v1/fees/recommended"}, &body)
	if err == nil && body.FastestFee <= 0 {
		err = fmt.Errorf("empty fee table")
	}
	if err != nil {
		m.mu.Lock()
		m.last = nil
		m.mu.Unlock()
		m.log.Warn("fee refresh failed", applogger.Error(err))
		return fmt.Errorf("refresh fees: %w", err)
	}

	at := m.now().UTC()
	fees := models.NetworkFees{
		Fast:        body.FastestFee,
		Medium:      body.HalfHourFee,
		Slow:        body.HourFee,
		EstimatedAt: &at,
	}
	m.mu.Lock()
	m.last = &fees
	m.mu.Unlock()
	m.log.Debug("fees refreshed", applogger.Int("fast", fees.Fast), applogger.Int("slow", fees.Slow))
	return nil
}

// Start runs one refresh immediately and then on the configured schedule.
func (m *Mempool) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(m.schedule, func() {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		_ = m.Refresh(rctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", m.schedule, err)
	}
	_ = m.Refresh(ctx)
	c.Start()
	m.cron = c
	return nil
}

// Stop waits for a running refresh to finish.
func (m *Mempool) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

package usecase

import (
	"context"
	"sync"

	"OracleAgent/internal/domain/models"
	dsvc "OracleAgent/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []dsvc.Prompt
}

func (g *fakeGenerator) Generate(_ context.Context, p dsvc.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	return g.reply, g.err
}

type fakeFetcher struct {
	snap  *models.MarketSnapshot
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (*models.MarketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.snap
	return &cp, nil
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordError(kind string) { m.Called(kind) }
func (m *mockMetrics) RecordLastPrice(price float64) { m.Called(price) }
func (m *mockMetrics) RecordLatency(op string, seconds float64) { m.Called(op, seconds) }
func (m *mockMetrics) RecordRecommendation(timing, source string) { m.Called(timing, source) }
func (m *mockMetrics) RecordNarrative(source string) { m.Called(source) }
func (m *mockMetrics) RecordEvent(timing, source string) { m.Called(timing, source) }

// relaxedMetrics accepts every call.
func relaxedMetrics() *mockMetrics {
	m := &mockMetrics{}
	m.On("RecordError", mock.Anything).Maybe()
	m.On("RecordLastPrice", mock.Anything).Maybe()
	m.On("RecordLatency", mock.Anything, mock.Anything).Maybe()
	m.On("RecordRecommendation", mock.Anything, mock.Anything).Maybe()
	m.On("RecordNarrative", mock.Anything).Maybe()
	m.On("RecordEvent", mock.Anything, mock.Anything).Maybe()
	return m
}

type mockPublisher struct {
	mock.Mock
}

func (p *mockPublisher) PublishRecommendation(ctx context.Context, e *models.RecommendationEvent) error {
	return p.Called(ctx, e).Error(0)
}

func (p *mockPublisher) Close() error { return nil }

func ptr(v float64) *float64 { return &v }

func snapshot(price, change float64) *models.MarketSnapshot {
	vol := change
	if vol < 0 {
		vol = -vol
	}
	return &models.MarketSnapshot{
		Price:          price,
		PriceChange24h: ptr(change),
		Volatility:     vol / 100,
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"OracleAgent/internal/domain/models"
	"OracleAgent/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type scenarioFixture struct {
	uc        *ScenarioUseCase
	store     *repository.SQLStore
	fetcher   *fakeFetcher
	publisher *mockPublisher
	metrics   *mockMetrics
}

func newScenarioFixture(t *testing.T) *scenarioFixture {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	f := &fakeFetcher{snap: snapshot(43210.98, 2)}
	f.snap.Volatility = 0.08
	m := relaxedMetrics()
	pub := &mockPublisher{}
	market := NewMarketUseCase(f, nil, 0, m, nil)
	engine := NewRecommendationEngine(nil, nil)

	uc := NewScenarioUseCase(store, market, engine, pub, m, nil)
	seq := 0
	uc.newID = func() string {
		seq++
		return fmt.Sprintf("scn-%03d", seq)
	}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	uc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	return &scenarioFixture{uc: uc, store: store, fetcher: f, publisher: pub, metrics: m}
}

func createRequest(amount float64) *models.CreateScenarioRequest {
	return &models.CreateScenarioRequest{ScenarioType: models.ScenarioRetirement, AmountUSD: amount}
}

func TestCreateAppliesDefaults(t *testing.T) {
	fx := newScenarioFixture(t)

	sc, err := fx.uc.Create(context.Background(), createRequest(10000))
	require.NoError(t, err)

	assert.Equal(t, "scn-001", sc.ID)
	assert.Equal(t, models.RiskMedium, sc.RiskTolerance)
	assert.Equal(t, models.DefaultInflationRate, sc.InflationRate)
	assert.Nil(t, sc.TargetDate)

	got, err := fx.store.GetScenario(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc, got)
}

func TestCreateParsesTargetDate(t *testing.T) {
	fx := newScenarioFixture(t)
	req := createRequest(500)
	req.TargetDate = "2030-06-01T00:00:00Z"
	req.RiskTolerance = models.RiskLow

	sc, err := fx.uc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, sc.TargetDate)
	assert.Equal(t, 2030, sc.TargetDate.Year())
	assert.Equal(t, models.RiskLow, sc.RiskTolerance)

	req.TargetDate = "someday"
	_, err = fx.uc.Create(context.Background(), req)
	assert.Error(t, err)
}

func TestCreateNormalisesTargetDate(t *testing.T) {
	fx := newScenarioFixture(t)
	req := createRequest(1234.56)
	req.TargetDate = "2030-06-01T10:11:12.123456789+02:00"
	zero := 0.0
	req.InflationRate = &zero

	sc, err := fx.uc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, sc.TargetDate)
	assert.Equal(t, time.Date(2030, 6, 1, 8, 11, 12, 123456000, time.UTC), *sc.TargetDate)
	assert.Equal(t, time.UTC, sc.TargetDate.Location())
	assert.Zero(t, sc.InflationRate)

	got, err := fx.store.GetScenario(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc, got)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	fx := newScenarioFixture(t)
	var ids []string
	for i := 1; i <= 3; i++ {
		sc, err := fx.uc.Create(context.Background(), createRequest(float64(i*100)))
		require.NoError(t, err)
		ids = append(ids, sc.ID)
	}

	list, err := fx.uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, sc := range list {
		assert.Equal(t, ids[i], sc.ID)
	}
}

func TestAnalyzeUnknownScenario(t *testing.T) {
	fx := newScenarioFixture(t)

	_, err := fx.uc.Analyze(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 0, fx.fetcher.calls)
}

func TestAnalyzeStoresAndPublishesFallback(t *testing.T) {
	fx := newScenarioFixture(t)
	sc, err := fx.uc.Create(context.Background(), createRequest(10000))
	require.NoError(t, err)

	fx.publisher.On("PublishRecommendation", mock.Anything, mock.MatchedBy(func(e *models.RecommendationEvent) bool {
		return e.Type == models.EventRecommendationCreated &&
			e.Recommendation.ScenarioID == sc.ID &&
			e.FallbackReason == ReasonAIUnavailable
	})).Return(nil).Once()

	res, err := fx.uc.Analyze(context.Background(), sc.ID)
	require.NoError(t, err)

	assert.Equal(t, models.SourceFallback, res.Source)
	assert.Equal(t, models.TimingWait1Day, res.Recommendation.OptimalTiming)
	assert.Equal(t, 0.6, res.Recommendation.ConfidenceScore)
	assert.InDelta(t, 10000/43210.98, res.Recommendation.RecommendedBTCAmount, 1e-12)
	fx.publisher.AssertExpectations(t)
	fx.metrics.AssertCalled(t, "RecordRecommendation", models.TimingWait1Day, "fallback")

	recs, err := fx.uc.Recommendations(context.Background(), sc.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.Recommendation, recs[0])
}

func TestAnalyzeSurvivesPublishFailure(t *testing.T) {
	fx := newScenarioFixture(t)
	sc, err := fx.uc.Create(context.Background(), createRequest(100))
	require.NoError(t, err)
	fx.publisher.On("PublishRecommendation", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err = fx.uc.Analyze(context.Background(), sc.ID)
	require.NoError(t, err)
	fx.metrics.AssertCalled(t, "RecordError", "event_publish")
}

func TestAnalyzeFetchErrorStoresNothing(t *testing.T) {
	fx := newScenarioFixture(t)
	sc, err := fx.uc.Create(context.Background(), createRequest(100))
	require.NoError(t, err)
	fx.fetcher.err = models.ErrServiceUnavailable

	_, err = fx.uc.Analyze(context.Background(), sc.ID)
	assert.ErrorIs(t, err, models.ErrServiceUnavailable)

	recs, err := fx.uc.Recommendations(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDashboardCounts(t *testing.T) {
	fx := newScenarioFixture(t)
	fx.publisher.On("PublishRecommendation", mock.Anything, mock.Anything).Return(nil)

	sc, err := fx.uc.Create(context.Background(), createRequest(100))
	require.NoError(t, err)
	_, err = fx.uc.Create(context.Background(), createRequest(200))
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err := fx.uc.Analyze(context.Background(), sc.ID)
		require.NoError(t, err)
	}

	d, err := fx.uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalScenarios)
	assert.Equal(t, RecentRecommendations, d.RecentRecommendations)
	assert.Equal(t, "active", d.MarketStatus)
	assert.Equal(t, 43210.98, d.BitcoinData.Price)
}

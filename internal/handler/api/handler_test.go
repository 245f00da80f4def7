package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"OracleAgent/internal/domain/models"
	"OracleAgent/internal/repository"
	"OracleAgent/internal/service/coingecko"
	"OracleAgent/internal/service/fees"
	"OracleAgent/internal/service/ratelimit"
	"OracleAgent/internal/usecase"
	xhttp "OracleAgent/pkg/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceBody = `{"bitcoin":{"usd":43210.98,"usd_24h_vol":25000000000,"usd_24h_change":2.0,"usd_market_cap":850000000000}}`

type testAPI struct {
	e        *echo.Echo
	upstream *httptest.Server
	status   atomic.Int32
	body     atomic.Value
}

func newTestAPI(t *testing.T, opts ...Option) *testAPI {
	t.Helper()
	api := &testAPI{}
	api.status.Store(http.StatusOK)
	api.body.Store(priceBody)
	api.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := int(api.status.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte(api.body.Load().(string)))
		} else {
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}
	}))
	t.Cleanup(api.upstream.Close)

	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	fetcher := coingecko.New(api.upstream.URL, xhttp.NewClient(xhttp.WithTimeout(5*time.Second)), fees.NewStatic(), nil)
	market := usecase.NewMarketUseCase(fetcher, nil, 0, nil, nil)
	engine := usecase.NewRecommendationEngine(nil, nil)
	scenarios := usecase.NewScenarioUseCase(store, market, engine, repository.NoopPublisher{}, nil, nil)
	narrative := usecase.NewNarrativeService(nil, nil, nil)

	h := NewOracleHandler(nil, market, scenarios, narrative, store, opts...)
	api.e = xhttp.NewServer(h).Echo()
	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRoot(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.RootStatus
	decode(t, rec, &body)
	assert.Equal(t, "active", body.Status)
	assert.NotEmpty(t, body.Message)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCurrentBitcoin(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/bitcoin/current", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.MarketSnapshot
	decode(t, rec, &snap)
	assert.Equal(t, 43210.98, snap.Price)
	assert.InDelta(t, 0.02, snap.Volatility, 1e-12)
	assert.Equal(t, 25, snap.NetworkFees.Fast)
}

func TestCurrentBitcoinUpstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	api.status.Store(http.StatusInternalServerError)

	rec := api.do(http.MethodGet, "/api/bitcoin/current", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var env xhttp.APIResponse
	decode(t, rec, &env)
	assert.Equal(t, http.StatusServiceUnavailable, env.Status)
}

func TestCurrentBitcoinMalformedPayload(t *testing.T) {
	api := newTestAPI(t)
	api.body.Store(`{"bitcoin":`)

	rec := api.do(http.MethodGet, "/api/bitcoin/current", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var env xhttp.APIResponse
	decode(t, rec, &env)
	assert.Equal(t, http.StatusInternalServerError, env.Status)

	api.body.Store(`{"bitcoin":{"usd":0}}`)
	rec = api.do(http.MethodGet, "/api/dashboard/summary", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreatedScenarioListedUnchanged(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/scenarios", `{
		"scenario_type": "university",
		"amount_usd": 1234.56,
		"target_date": "2030-06-01T10:11:12.123456789+02:00",
		"risk_tolerance": "low",
		"inflation_rate": 0
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created models.PaymentScenario
	decode(t, rec, &created)

	require.NotNil(t, created.TargetDate)
	assert.Equal(t, time.Date(2030, 6, 1, 8, 11, 12, 123456000, time.UTC), *created.TargetDate)
	assert.Equal(t, 0.0, created.InflationRate)
	assert.Equal(t, models.RiskLow, created.RiskTolerance)

	rec = api.do(http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.PaymentScenario
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
}

func TestScenarioLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/scenarios", `{"scenario_type":"retirement","amount_usd":10000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sc models.PaymentScenario
	decode(t, rec, &sc)
	assert.NotEmpty(t, sc.ID)
	assert.Equal(t, models.RiskMedium, sc.RiskTolerance)
	assert.Equal(t, 0.07, sc.InflationRate)

	rec = api.do(http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.PaymentScenario
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, sc.ID, list[0].ID)

	rec = api.do(http.MethodPost, "/api/analyze/"+sc.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rec1 models.PaymentRecommendation
	decode(t, rec, &rec1)
	assert.Equal(t, sc.ID, rec1.ScenarioID)
	assert.Equal(t, models.SourceFallback, rec1.Source)
	assert.Equal(t, models.TimingFlexible, rec1.OptimalTiming)
	assert.InDelta(t, 10000/43210.98, rec1.RecommendedBTCAmount, 1e-12)

	rec = api.do(http.MethodGet, "/api/recommendations/"+sc.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []models.PaymentRecommendation
	decode(t, rec, &recs)
	assert.Len(t, recs, 1)

	rec = api.do(http.MethodGet, "/api/dashboard/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d models.DashboardSummary
	decode(t, rec, &d)
	assert.Equal(t, int64(1), d.TotalScenarios)
	assert.Equal(t, 1, d.RecentRecommendations)
	assert.Equal(t, "active", d.MarketStatus)
}

func TestCreateScenarioValidation(t *testing.T) {
	api := newTestAPI(t)
	cases := map[string]string{
		"missing amount":   `{"scenario_type":"retirement"}`,
		"negative amount":  `{"scenario_type":"retirement","amount_usd":-5}`,
		"bad risk":         `{"scenario_type":"retirement","amount_usd":5,"risk_tolerance":"yolo"}`,
		"bad target date":  `{"scenario_type":"retirement","amount_usd":5,"target_date":"soon"}`,
		"malformed json":   `{"scenario_type":`,
		"missing scenario": `{"amount_usd":5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/api/scenarios", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyzeUnknownScenario(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/analyze/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env xhttp.APIResponse
	decode(t, rec, &env)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/scenarios", `{"scenario_type":"health","amount_usd":250}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sc models.PaymentScenario
	decode(t, rec, &sc)

	api.status.Store(http.StatusTooManyRequests)
	rec = api.do(http.MethodPost, "/api/analyze/"+sc.ID, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(http.MethodGet, "/api/recommendations/"+sc.ID, "")
	var recs []models.PaymentRecommendation
	decode(t, rec, &recs)
	assert.Empty(t, recs)
}

func TestMarketAnalysisWithoutCredential(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/analysis/market", `{"query":"Is now a good time to buy?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AIAnalysisResponse
	decode(t, rec, &resp)
	assert.Equal(t, 0.3, resp.Confidence)
	assert.Equal(t, models.SentimentNeutral, resp.MarketSentiment)
	assert.Len(t, resp.Recommendations, 2)
	assert.Equal(t, models.SourceFallback, resp.Source)

	rec = api.do(http.MethodPost, "/api/analysis/market", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAIRoutesAreRateLimited(t *testing.T) {
	api := newTestAPI(t, WithRateLimiter(ratelimit.New(1, 0)))

	first := api.do(http.MethodPost, "/api/analysis/market", `{"query":"q"}`)
	second := api.do(http.MethodPost, "/api/analysis/market", `{"query":"q"}`)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// reads stay open
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/scenarios", "").Code)
}

func TestStreamPushesSnapshots(t *testing.T) {
	api := newTestAPI(t, WithStream(StreamConfig{Interval: 20 * time.Millisecond}))
	srv := httptest.NewServer(api.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/bitcoin/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Type string                `json:"type"`
			Data models.MarketSnapshot `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "snapshot", frame.Type)
		assert.Equal(t, 43210.98, frame.Data.Price)
	}

	api.status.Store(http.StatusBadGateway)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Type  string `json:"type"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	for frame.Type != "error" {
		require.NoError(t, conn.ReadJSON(&frame))
	}
	assert.Equal(t, "ERR_UNAVAILABLE", frame.Error.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"OracleAgent/internal/domain/models"
	mid "OracleAgent/internal/middleware"
	"OracleAgent/internal/service/ratelimit"
	"OracleAgent/internal/usecase"
	xhttp "OracleAgent/pkg/http"
	xlogger "OracleAgent/pkg/logger"

	"github.com/labstack/echo/v4"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

// OracleHandler exposes the oracle use cases over HTTP.
type OracleHandler struct {
	logger    *xlogger.Logger
	basePath  string
	market    *usecase.MarketUseCase
	scenarios *usecase.ScenarioUseCase
	narrative *usecase.NarrativeService
	health    healthChecker
	limiter   *ratelimit.Limiter
	stream    StreamConfig
}

// Option configures OracleHandler.
type Option func(*OracleHandler)

// WithBasePath sets the route prefix, "/api" by default.
func WithBasePath(p string) Option {
	return func(h *OracleHandler) { h.basePath = p }
}

// WithRateLimiter throttles the AI-backed routes.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(h *OracleHandler) { h.limiter = l }
}

// WithStream configures the snapshot websocket.
func WithStream(c StreamConfig) Option {
	return func(h *OracleHandler) { h.stream = c }
}

func NewOracleHandler(
	logger *xlogger.Logger,
	market *usecase.MarketUseCase,
	scenarios *usecase.ScenarioUseCase,
	narrative *usecase.NarrativeService,
	health healthChecker,
	opts ...Option,
) *OracleHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &OracleHandler{
		logger:    logger,
		basePath:  "/api",
		market:    market,
		scenarios: scenarios,
		narrative: narrative,
		health:    health,
		stream:    StreamConfig{Interval: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *OracleHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	g := e.Group(h.basePath)
	limited := mid.RateLimit(h.limiter)

	g.GET("/", h.Root)
	g.GET("/bitcoin/current", h.CurrentBitcoin)
	g.GET("/bitcoin/stream", h.Stream)
	g.POST("/scenarios", h.CreateScenario)
	g.GET("/scenarios", h.ListScenarios)
	g.POST("/analyze/:scenario_id", h.Analyze, limited)
	g.GET("/recommendations/:scenario_id", h.Recommendations)
	g.POST("/analysis/market", h.MarketAnalysis, limited)
	g.GET("/dashboard/summary", h.Dashboard)
}

func (h *OracleHandler) Root(c echo.Context) error {
	return xhttp.OKResponse(c, models.RootStatus{
		Message: "UVQ - UniversifiQuant Oracle Agent",
		Status:  "active",
	})
}

func (h *OracleHandler) Healthz(c echo.Context) error {
	if h.health != nil {
		if err := h.health.Health(c.Request().Context()); err != nil {
			h.logger.Error("health check failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("storage unreachable").WithError(err))
		}
	}
	return xhttp.OKResponse(c, map[string]string{"status": "ok"})
}

func (h *OracleHandler) CurrentBitcoin(c echo.Context) error {
	snap, err := h.market.Snapshot(c.Request().Context())
	if err != nil {
		return h.fail(c, "bitcoin current", err)
	}
	return xhttp.OKResponse(c, snap)
}

func (h *OracleHandler) CreateScenario(c echo.Context) error {
	req := &models.CreateScenarioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, err := req.ParseTargetDate(); err != nil {
		appErr := xhttp.NewAppError("ERR_DATE", "target_date", err.Error(), http.StatusBadRequest)
		return xhttp.AppErrorResponse(c, appErr)
	}

	sc, err := h.scenarios.Create(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "create scenario", err)
	}
	return xhttp.OKResponse(c, sc)
}

func (h *OracleHandler) ListScenarios(c echo.Context) error {
	list, err := h.scenarios.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "list scenarios", err)
	}
	return xhttp.OKResponse(c, list)
}

func (h *OracleHandler) Analyze(c echo.Context) error {
	id := c.Param("scenario_id")
	res, err := h.scenarios.Analyze(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "analyze scenario", err)
	}
	return xhttp.OKResponse(c, res.Recommendation)
}

func (h *OracleHandler) Recommendations(c echo.Context) error {
	recs, err := h.scenarios.Recommendations(c.Request().Context(), c.Param("scenario_id"))
	if err != nil {
		return h.fail(c, "list recommendations", err)
	}
	return xhttp.OKResponse(c, recs)
}

func (h *OracleHandler) MarketAnalysis(c echo.Context) error {
	req := &models.MarketAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.OKResponse(c, h.narrative.Analyze(c.Request().Context(), req))
}

func (h *OracleHandler) Dashboard(c echo.Context) error {
	summary, err := h.scenarios.Dashboard(c.Request().Context())
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	return xhttp.OKResponse(c, summary)
}

func (h *OracleHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors to their HTTP status.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError("Scenario not found").WithError(err)
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.ServiceUnavailableError("Bitcoin data unavailable").WithError(err)
	default:
		return xhttp.InternalError("Internal server error").WithError(err)
	}
}

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"arina/internal/analysis"
	"arina/internal/domain/models"
	"arina/internal/service/metrics"
	"arina/internal/service/ratelimit"
	"arina/internal/usecase"
	xhttp "arina/pkg/http"
	xlogger "arina/pkg/logger"
)

// AnalysisHandler exposes the calculation engines over HTTP.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analyses *usecase.AnalysisService
	recs     *usecase.RecommendationService
	rl       *ratelimit.Limiter
}

func NewAnalysisHandler(logger *xlogger.Logger, analyses *usecase.AnalysisService, recs *usecase.RecommendationService) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{
		logger:   logger,
		analyses: analyses,
		recs:     recs,
		rl:       ratelimit.New(),
	}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analysis/feasibility", h.Feasibility)
	g.POST("/analysis/forecast", h.Forecast)
	g.POST("/analysis/optimization", h.Optimization)
	g.GET("/analysis", h.History)
	g.GET("/analysis/:id", h.Get)
	g.DELETE("/analysis/:id", h.Delete)
	g.POST("/recommendations/generate", h.GenerateRecommendations)
	g.GET("/recommendations/:userId", h.LatestRecommendations)
	e.GET("/healthz", h.Health)
}

// AnalysisResponse pairs an engine result with the persistence outcome.
// Computation and save succeed or fail independently.
type AnalysisResponse struct {
	Result interface{}         `json:"result"`
	Save   usecase.SaveOutcome `json:"save"`
}

func (h *AnalysisHandler) Feasibility(c echo.Context) error {
	start := time.Now()
	endpoint := "feasibility"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if resp := h.throttle(c, endpoint); resp != nil {
		return resp()
	}
	req := &models.FeasibilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, outcome, err := h.analyses.AnalyzeFeasibility(c.Request().Context(), req.UserID, req.Input, req.Save == nil || *req.Save)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		return h.engineErrorResponse(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, AnalysisResponse{Result: result, Save: outcome})
}

func (h *AnalysisHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if resp := h.throttle(c, endpoint); resp != nil {
		return resp()
	}
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, outcome, err := h.analyses.GenerateForecast(c.Request().Context(), req.UserID, req.Input, req.Save == nil || *req.Save)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		return h.engineErrorResponse(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, AnalysisResponse{Result: result, Save: outcome})
}

func (h *AnalysisHandler) Optimization(c echo.Context) error {
	start := time.Now()
	endpoint := "optimization"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if resp := h.throttle(c, endpoint); resp != nil {
		return resp()
	}
	req := &models.OptimizationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// Infeasible programs come back as normal results, not errors.
	result, outcome, err := h.analyses.RunOptimization(c.Request().Context(), req.UserID, req.Input, req.Save == nil || *req.Save)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		return h.engineErrorResponse(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, AnalysisResponse{Result: result, Save: outcome})
}

func (h *AnalysisHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(req.From, time.Unix(0, 0).UTC())
	to := xhttp.ParseTimeDefault(req.To, now)

	recs, err := h.analyses.History(c.Request().Context(), req.UserID, models.AnalysisType(req.Type), from, to, req.Limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *AnalysisHandler) Get(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("userId required"))
	}
	rec, err := h.analyses.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		h.logger.Error("get analysis usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if rec == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("analysis not found"))
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *AnalysisHandler) Delete(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("userId required"))
	}
	if err := h.analyses.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		h.logger.Error("delete analysis usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *AnalysisHandler) GenerateRecommendations(c echo.Context) error {
	start := time.Now()
	endpoint := "recommendations"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.GenerateRecommendationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	set, err := h.recs.Generate(c.Request().Context(), req.UserID)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("generate recommendations error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, set)
}

func (h *AnalysisHandler) LatestRecommendations(c echo.Context) error {
	userID := c.Param("userId")
	set, err := h.recs.Latest(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("latest recommendations error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if set == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no recommendations generated yet"))
	}
	return xhttp.SuccessResponse(c, set)
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	if err := h.analyses.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// throttle returns a deferred 429 response when the caller exceeded the
// per-endpoint budget, nil otherwise.
func (h *AnalysisHandler) throttle(c echo.Context, endpoint string) func() error {
	if h.rl.Allow(c.RealIP()+":"+endpoint, 10, 5) {
		return nil
	}
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return func() error {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}
}

// engineErrorResponse maps engine errors onto HTTP statuses. Malformed input
// is the caller's fault; a mathematically undefined result is a semantic
// problem with an otherwise well-formed request.
func (h *AnalysisHandler) engineErrorResponse(c echo.Context, endpoint string, err error) error {
	var vErr *analysis.ValidationError
	if errors.As(err, &vErr) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_VALIDATION", vErr.Field, vErr.Message, http.StatusBadRequest))
	}
	var dErr *analysis.DomainError
	if errors.As(err, &dErr) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNDEFINED_RESULT", dErr.Op, dErr.Message, http.StatusUnprocessableEntity))
	}
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)

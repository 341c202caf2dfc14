package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	models "StockLens/internal/domain/models"
	icache "StockLens/internal/service/cache"
	imetrics "StockLens/internal/service/metrics"
	"StockLens/internal/usecase"
	xhttp "StockLens/pkg/http"
	"StockLens/pkg/http/middleware"
	xlogger "StockLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeriveEchoHandler serves the stateless derive endpoints and the dashboard.
type DeriveEchoHandler struct {
	logger    *xlogger.Logger
	deriver   *usecase.Deriver
	dashboard *usecase.DashboardUseCase
	cache     icache.BytesCache
	cacheTTL  time.Duration
	limiter   middleware.Allower
	metrics   *imetrics.Endpoint
}

type HandlerOption func(*DeriveEchoHandler)

// WithCache caches successful dashboard responses for ttl.
func WithCache(c icache.BytesCache, ttl time.Duration) HandlerOption {
	return func(h *DeriveEchoHandler) {
		if c != nil && ttl > 0 {
			h.cache = c
			h.cacheTTL = ttl
		}
	}
}

// WithRateLimiter limits dashboard requests per client address.
func WithRateLimiter(l middleware.Allower) HandlerOption {
	return func(h *DeriveEchoHandler) { h.limiter = l }
}

func WithEndpointMetrics(m *imetrics.Endpoint) HandlerOption {
	return func(h *DeriveEchoHandler) { h.metrics = m }
}

func NewDeriveEchoHandler(logger *xlogger.Logger, deriver *usecase.Deriver, dashboard *usecase.DashboardUseCase, opts ...HandlerOption) *DeriveEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &DeriveEchoHandler{logger: logger, deriver: deriver, dashboard: dashboard}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *DeriveEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/derive/chart", h.Chart)
	g.POST("/derive/grades", h.Grades)
	g.POST("/derive/importance", h.Importance)

	limited := func(echo.Context) { h.metrics.Limited("dashboard") }
	g.GET("/dashboard/:ticker", h.Dashboard, middleware.RateLimit(h.limiter, nil, limited))
}

func (h *DeriveEchoHandler) Chart(c echo.Context) error {
	start := time.Now()
	defer func() { h.metrics.Observe("chart", time.Since(start).Seconds()) }()

	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Error("chart", "ERR_BAD_REQUEST")
		return xhttp.BadRequestResponse(c, verr)
	}

	chart, err := h.deriver.Chart(req.Prices, req.History, req.Predictions)
	if err != nil {
		return h.fail(c, "chart", err)
	}
	return xhttp.SuccessResponse(c, chart)
}

func (h *DeriveEchoHandler) Grades(c echo.Context) error {
	start := time.Now()
	defer func() { h.metrics.Observe("grades", time.Since(start).Seconds()) }()

	req := &models.GradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Error("grades", "ERR_BAD_REQUEST")
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.deriver.Grades(req.Metrics))
}

func (h *DeriveEchoHandler) Importance(c echo.Context) error {
	start := time.Now()
	defer func() { h.metrics.Observe("importance", time.Since(start).Seconds()) }()

	req := &models.ImportanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Error("importance", "ERR_BAD_REQUEST")
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.deriver.Importance(req.FeatureImportance))
}

func (h *DeriveEchoHandler) Dashboard(c echo.Context) error {
	start := time.Now()
	defer func() { h.metrics.Observe("dashboard", time.Since(start).Seconds()) }()

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Error("dashboard", "ERR_BAD_REQUEST")
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()
	params := h.dashboard.Resolve(usecase.GetDashboardParams{
		Ticker:  req.Ticker,
		Session: c.Request().Header.Get(xhttp.HeaderSessionID),
		Days:    req.Days,
		Ahead:   req.Ahead,
		Limit:   req.Limit,
	})
	key := fmt.Sprintf("dashboard:%s:%d:%d:%d", params.Ticker, params.Days, params.Ahead, params.Limit)

	if h.cache != nil {
		b, ok, err := h.cache.GetBytes(ctx, key)
		if err != nil {
			h.logger.Warn("dashboard cache read failed", xlogger.String("key", key), xlogger.Error(err))
		}
		h.metrics.CacheResult("dashboard", ok)
		if ok {
			var cached models.Dashboard
			if err := json.Unmarshal(b, &cached); err == nil {
				// a cached answer still supersedes the session's older cycles
				cached.Seq = h.dashboard.Stamp(params.Session)
				c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.dashboard.GetDashboard(ctx, params)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}

	// Partial results are not cached; seq belongs to the caller's session.
	if h.cache != nil && len(res.Errors) == 0 {
		shared := *res
		shared.Seq = 0
		if b, err := json.Marshal(&shared); err == nil {
			if err := h.cache.SetBytes(ctx, key, b, h.cacheTTL); err != nil {
				h.logger.Warn("dashboard cache write failed", xlogger.String("key", key), xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DeriveEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	h.metrics.Error(endpoint, appErr.Code)
	if appErr.Status >= 500 {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrTickerRequired):
		return xhttp.BadRequestError("ticker is required").WithError(err)
	case errors.Is(err, usecase.ErrSuperseded):
		return xhttp.ConflictError("a newer request for this session is in flight").WithError(err)
	case errors.Is(err, models.ErrInvalidSeriesElement):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

// ErrTickerRequired is returned when a dashboard is requested without a ticker.
var ErrTickerRequired = errors.New("ticker required")

const (
	fetchPrices      = "prices"
	fetchPredictions = "predictions"
	fetchHistory     = "history"
	fetchAccuracy    = "accuracy"
)

// DashboardUseCase fetches one ticker's inputs concurrently and derives the
// chart, grades and importance entries from them.
type DashboardUseCase struct {
	source  domrepo.ForecastSource
	deriver *Deriver
	gate    *CycleGate
	metrics domrepo.Metrics
	log     *applogger.Logger
	timeout time.Duration
	now     func() time.Time

	defDays, defAhead, defLimit int
}

func NewDashboardUseCase(source domrepo.ForecastSource, deriver *Deriver, gate *CycleGate, metrics domrepo.Metrics, log *applogger.Logger) *DashboardUseCase {
	if log == nil {
		log = applogger.Nop()
	}
	return &DashboardUseCase{
		source:  source,
		deriver: deriver,
		gate:    gate,
		metrics: metrics,
		log:     log,
		timeout: 10 * time.Second,
		now:     time.Now,

		defDays:  30,
		defAhead: 7,
		defLimit: 30,
	}
}

// WithDefaults sets the window days, forecast horizon and history limit used
// when a request leaves them at zero. Non-positive values are ignored.
func (uc *DashboardUseCase) WithDefaults(days, ahead, limit int) *DashboardUseCase {
	if days > 0 {
		uc.defDays = days
	}
	if ahead > 0 {
		uc.defAhead = ahead
	}
	if limit > 0 {
		uc.defLimit = limit
	}
	return uc
}

type GetDashboardParams struct {
	Ticker string
	// Session scopes staleness: a newer cycle on the same session supersedes
	// older ones regardless of ticker. Empty disables the check.
	Session string
	Days    int
	Ahead   int
	Limit   int
}

// Resolve normalizes the ticker and replaces non-positive fields with the
// configured defaults. Equal resolved params yield equal dashboards.
func (uc *DashboardUseCase) Resolve(p GetDashboardParams) GetDashboardParams {
	p.Ticker = util.NormalizeTicker(p.Ticker)
	if p.Days <= 0 {
		p.Days = uc.defDays
	}
	if p.Ahead <= 0 {
		p.Ahead = uc.defAhead
	}
	if p.Limit <= 0 {
		p.Limit = uc.defLimit
	}
	return p
}

// Stamp starts a cycle for session without fetching anything, superseding
// the session's in-flight cycles. Used when a dashboard is answered from
// cache. Returns 0 for an empty session.
func (uc *DashboardUseCase) Stamp(session string) uint64 {
	if session == "" {
		return 0
	}
	return uc.gate.Begin(session)
}

func (uc *DashboardUseCase) GetDashboard(ctx context.Context, p GetDashboardParams) (*models.Dashboard, error) {
	p = uc.Resolve(p)
	if p.Ticker == "" {
		return nil, ErrTickerRequired
	}

	seq := uc.Stamp(p.Session)
	start := uc.now()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.Dashboard{
		Ticker:    p.Ticker,
		Seq:       seq,
		Timestamp: start.UTC(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.source.Prices(ctx, p.Ticker, domrepo.PeriodForDays(p.Days))
		ch <- item{fetchPrices, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.source.Predictions(ctx, p.Ticker, p.Ahead)
		ch <- item{fetchPredictions, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.source.History(ctx, p.Ticker, p.Limit)
		ch <- item{fetchHistory, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.source.Accuracy(ctx, p.Ticker)
		ch <- item{fetchAccuracy, v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	// Failed fetches leave their input empty.
	var (
		prices   models.PriceQueryResult
		forecast models.PredictionQueryResult
		history  models.PredictionHistoryResult
		accuracy models.AccuracyQueryResult
	)
	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			uc.metrics.RecordError("fetch_" + it.name)
			uc.log.Warn("dashboard fetch failed",
				applogger.String("ticker", p.Ticker),
				applogger.String("source", it.name),
				applogger.Error(it.err),
			)
			continue
		}
		switch it.name {
		case fetchPrices:
			prices = it.val.(models.PriceQueryResult)
		case fetchPredictions:
			forecast = it.val.(models.PredictionQueryResult)
		case fetchHistory:
			history = it.val.(models.PredictionHistoryResult)
		case fetchAccuracy:
			accuracy = it.val.(models.AccuracyQueryResult)
		}
	}

	window, dropped := TrailingWindow(prices.ClosePoints(), p.Days)
	if dropped > 0 {
		uc.log.Debug("dropped price points without close",
			applogger.String("ticker", p.Ticker), applogger.Int("count", dropped))
	}

	derived, err := uc.deriver.Derive(DeriveInput{
		Window:   window,
		History:  history.Records(),
		Forward:  forecast.Predictions,
		Metrics:  accuracy.Metrics,
		Features: forecast.FeatureImportance,
	})
	if err != nil {
		res.Errors["chart"] = err.Error()
		uc.metrics.RecordError("derive_chart")
	}
	res.Chart = derived.Chart
	res.Grades = derived.Grades
	res.Importance = derived.Importance

	res.Correction = forecast.CorrectionInfo
	if res.Correction == nil {
		res.Correction = accuracy.CorrectionInfo
	}
	if _, failed := res.Errors[fetchAccuracy]; !failed {
		res.Accuracy = &models.AccuracySummary{
			TotalPredictions: accuracy.TotalPredictions,
			EvaluatedCount:   accuracy.EvaluatedCount,
			Metrics:          accuracy.Metrics,
		}
	}

	if p.Session != "" && !uc.gate.IsLatest(p.Session, seq) {
		uc.metrics.RecordStale("dashboard")
		return nil, fmt.Errorf("dashboard %s seq %d: %w", p.Ticker, seq, ErrSuperseded)
	}

	uc.metrics.RecordDerive("dashboard")
	uc.metrics.RecordLatency("dashboard_seconds", uc.now().Sub(start).Seconds())
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

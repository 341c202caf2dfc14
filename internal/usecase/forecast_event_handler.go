package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

// ForecastEventHandler consumes forecast bundles, drops stale ones per ticker
// and publishes the derived chart, grades and importance.
type ForecastEventHandler struct {
	topic     string
	deriver   *Deriver
	gate      *CycleGate
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	now       func() time.Time
}

func NewForecastEventHandler(topic string, deriver *Deriver, gate *CycleGate, publisher domrepo.Publisher, metrics domrepo.Metrics, log *applogger.Logger) *ForecastEventHandler {
	if log == nil {
		log = applogger.Nop()
	}
	return &ForecastEventHandler{
		topic:     topic,
		deriver:   deriver,
		gate:      gate,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

func (h *ForecastEventHandler) Topic() string { return h.topic }

// Handle returns nil for malformed and stale events so they are committed
// rather than retried; only publish failures are returned.
func (h *ForecastEventHandler) Handle(ctx context.Context, b []byte) error {
	start := h.now()

	var ev models.ForecastEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		h.log.Warn("forecast event: bad payload", applogger.Error(err))
		return nil
	}
	ev.Ticker = util.NormalizeTicker(ev.Ticker)
	if ev.Ticker == "" {
		h.metrics.RecordError("consumer_no_ticker")
		h.log.Warn("forecast event: missing ticker", applogger.Uint64("seq", ev.Seq))
		return nil
	}
	// seq 0 means the producer does not stamp events; ordering is then left
	// to the partition.
	stamped := ev.Seq != 0
	if stamped && h.gate.IsStale(ev.Ticker, ev.Seq) {
		h.metrics.RecordStale("kafka")
		h.log.Debug("forecast event: stale, dropped",
			applogger.String("ticker", ev.Ticker), applogger.Uint64("seq", ev.Seq))
		return nil
	}

	derived, err := h.deriver.Derive(DeriveInput{
		Window:   ev.Prices,
		History:  ev.History,
		Forward:  ev.Predictions,
		Metrics:  ev.Metrics,
		Features: ev.FeatureImportance,
	})
	if err != nil {
		// an invalid window cannot become valid on retry
		h.metrics.RecordError("derive_chart")
		h.log.Warn("forecast event: chart not derived",
			applogger.String("ticker", ev.Ticker), applogger.Uint64("seq", ev.Seq), applogger.Error(err))
	}

	out := &models.DerivedEvent{
		Ticker:     ev.Ticker,
		Seq:        ev.Seq,
		Chart:      derived.Chart,
		Grades:     derived.Grades,
		Importance: derived.Importance,
		DerivedAt:  h.now().UTC(),
	}
	if err := h.publisher.PublishDerived(ctx, out); err != nil {
		h.metrics.RecordError("publish_derived")
		return fmt.Errorf("publish derived %s/%d: %w", ev.Ticker, ev.Seq, err)
	}
	// Recorded only once published, so a retried event is not mistaken for stale.
	// Events of one ticker share a partition and are handled serially.
	if stamped {
		h.gate.Observe(ev.Ticker, ev.Seq)
	}
	h.metrics.RecordDerive("kafka")
	h.metrics.RecordLatency("kafka_derive_seconds", h.now().Sub(start).Seconds())
	return nil
}

var _ pkgkafka.MessageHandler = (*ForecastEventHandler)(nil)

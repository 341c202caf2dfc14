package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domrepo "StockLens/internal/domain/repository"
	"StockLens/pkg/config"
	applogger "StockLens/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Upstream.BaseURL = srv.URL + "/api/v1/"
	cfg.Upstream.Timeout = time.Second
	cfg.Upstream.RetryInitial = time.Millisecond
	cfg.Upstream.RetryMaxElapse = 500 * time.Millisecond
	return NewClient(cfg, applogger.Nop())
}

func TestClient_Prices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stocks/AAPL/prices", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("period"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{
			"ticker":"AAPL","period":"1mo","interval":"1d","count":2,
			"prices":[{"date":"2026-01-02T00:00:00","close":101.5},{"date":"2026-01-05","close":null}]}}`))
	})

	got, err := c.Prices(context.Background(), " aapl", domrepo.Period("bogus"))
	require.NoError(t, err)
	require.Len(t, got.Prices, 2)
	pts := got.ClosePoints()
	assert.Equal(t, "2026-01-02", pts[0].Date.String())
	assert.Equal(t, 101.5, *pts[0].Close)
	assert.Nil(t, pts[1].Close)
}

func TestClient_PredictionsAndHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/predictions/MSFT":
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			_, _ = w.Write([]byte(`{"success":true,"data":{"ticker":"MSFT","current_price":400,
				"predictions":[{"date":"2026-01-06","predicted_price":401,"corrected_price":402.5}]}}`))
		case "/api/v1/predictions/MSFT/history":
			assert.Equal(t, "30", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"success":true,"data":{"history":[
				{"target_date":"2026-01-02","predicted_price":399,"actual_price":400},
				{"target_date":"2026-01-06","predicted_price":401,"actual_price":null}]}}`))
		default:
			http.NotFound(w, r)
		}
	})

	pred, err := c.Predictions(context.Background(), "MSFT", 7)
	require.NoError(t, err)
	require.Len(t, pred.Predictions, 1)
	assert.Equal(t, 402.5, pred.Predictions[0].Value())

	hist, err := c.History(context.Background(), "MSFT", 30)
	require.NoError(t, err)
	recs := hist.Records()
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Evaluated())
	assert.False(t, recs[1].Evaluated())
}

func TestClient_NotFoundIsEmpty(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"unknown ticker"}`))
	})

	got, err := c.Accuracy(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Zero(t, got.EvaluatedCount)
	assert.Nil(t, got.Metrics.MAE)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"total_predictions":4,"evaluated_count":3,"metrics":{"mae":1.5}}}`))
	})

	got, err := c.Accuracy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	require.NotNil(t, got.Metrics.MAE)
	assert.Equal(t, 1.5, *got.Metrics.MAE)
	assert.Nil(t, got.Metrics.RMSE)
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	_, err := c.History(context.Background(), "AAPL", 500)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_RejectedEnvelope(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"success":false,"message":"model not loaded"}`))
	})

	_, err := c.Predictions(context.Background(), "AAPL", 7)
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "model not loaded")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

package upstream

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/pkg/config"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

const dailyInterval = "1d"

// Client reads prices and predictions from the backend prediction API.
type Client struct {
	*HTTPServiceBase
	log *applogger.Logger
}

var _ domrepo.ForecastSource = (*Client)(nil)

func NewClient(cfg *config.Config, log *applogger.Logger) *Client {
	return &Client{HTTPServiceBase: NewHTTPServiceBase(cfg), log: log}
}

func (c *Client) Prices(ctx context.Context, ticker string, period domrepo.Period) (models.PriceQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	q := url.Values{}
	q.Set("period", string(domrepo.NormalizePeriod(string(period))))
	q.Set("interval", dailyInterval)

	var out models.PriceQueryResult
	err := c.GetJSONWithRetry(ctx, "/stocks/"+url.PathEscape(ticker)+"/prices", q, &out)
	return out, c.absentAsEmpty(err, ticker, "prices")
}

func (c *Client) Predictions(ctx context.Context, ticker string, days int) (models.PredictionQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out models.PredictionQueryResult
	err := c.GetJSONWithRetry(ctx, "/predictions/"+url.PathEscape(ticker), q, &out)
	return out, c.absentAsEmpty(err, ticker, "predictions")
}

func (c *Client) History(ctx context.Context, ticker string, limit int) (models.PredictionHistoryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out models.PredictionHistoryResult
	err := c.GetJSONWithRetry(ctx, "/predictions/"+url.PathEscape(ticker)+"/history", q, &out)
	return out, c.absentAsEmpty(err, ticker, "history")
}

func (c *Client) Accuracy(ctx context.Context, ticker string) (models.AccuracyQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	var out models.AccuracyQueryResult
	err := c.GetJSONWithRetry(ctx, "/predictions/"+url.PathEscape(ticker)+"/accuracy", nil, &out)
	return out, c.absentAsEmpty(err, ticker, "accuracy")
}

// absentAsEmpty turns a 404 for an unknown ticker into an empty result.
func (c *Client) absentAsEmpty(err error, ticker, what string) error {
	if errors.Is(err, ErrNotFound) {
		if c.log != nil {
			c.log.Debug("upstream has no data", applogger.String("ticker", ticker), applogger.String("kind", what))
		}
		return nil
	}
	return err
}

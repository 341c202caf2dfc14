package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stocklens-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1mo", r.URL.Query().Get("period"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_ = json.NewEncoder(w).Encode(map[string]string{"ticker": "AAPL"})
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("stocklens-test"), WithTimeout(0))
	var got struct{ Ticker string }
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL + "/stocks/AAPL/prices?interval=1d",
		QueryParams: url.Values{"period": {"1mo"}},
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Ticker)
}

func TestClient_StatusError(t *testing.T) {
	codes := []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusBadGateway}
	want := []bool{false, true, true}
	for i, code := range codes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", code)
		}))
		err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
		srv.Close()

		var se *StatusError
		require.True(t, errors.As(err, &se), "code %d", code)
		assert.Equal(t, code, se.Code)
		assert.Equal(t, want[i], se.Temporary(), "code %d", code)
		assert.Contains(t, se.Body, "nope")
	}
}

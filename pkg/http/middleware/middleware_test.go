package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecover(t *testing.T) {
	e := echo.New()
	e.Use(Recover(nil))
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := serve(e, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type denyAfter struct{ n int }

func (d *denyAfter) Allow(string) bool {
	d.n--
	return d.n >= 0
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	limited := 0
	e.Use(RateLimit(&denyAfter{n: 1}, nil, func(echo.Context) { limited++ }))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", nil).Code)
	rec := serve(e, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://app.example"},
		AllowMethods: []string{http.MethodGet},
		MaxAge:       600,
	}))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := serve(e, http.MethodOptions, "/x", map[string]string{echo.HeaderOrigin: "https://app.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))

	rec = serve(e, http.MethodGet, "/x", map[string]string{echo.HeaderOrigin: "https://evil.example"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMetrics_RouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := echo.New()
	e.Use(Metrics(reg, nil, 0))
	e.GET("/api/dashboard/:ticker", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	serve(e, http.MethodGet, "/api/dashboard/AAPL", nil)
	serve(e, http.MethodGet, "/api/dashboard/MSFT", nil)

	m := newHTTPMetrics(reg)
	require.NotNil(t, m)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/dashboard/:ticker", http.MethodGet, "200")))
}

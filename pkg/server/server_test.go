package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/json"
	"github.com/ajitpratap0/uniunit/pkg/testutil"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	return newTestServerWithLogger(t, mutate, zap.NewNop())
}

func newTestServerWithLogger(t *testing.T, mutate func(*config.ServerConfig), log *zap.Logger) *Server {
	t.Helper()

	reg := testutil.NewRegistry(t)

	cfg := config.Default().Server
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	return New(cfg, Options{
		Registry: reg,
		Presets:  uniunit.NewDefaultPresets(reg),
		Aliases:  units.ChineseUnits,
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Logger:   log,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	decodeBody(t, rec, &body)
	return body.Detail
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body healthResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, healthResponse{Status: "ok", Message: "uniUnit API is running"}, body)
}

func TestIndexAndStatic(t *testing.T) {
	h := newTestServer(t, func(c *config.ServerConfig) { c.EnableGzip = false }).Handler()

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "uniUnit")

	rec = do(t, h, http.MethodGet, "/static/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/quick-convert")

	rec = do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetsRoutes(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/units/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list presetsResponse
	decodeBody(t, rec, &list)
	assert.Equal(t, []string{"SI", "MKS", "CGS", "mmkgms", "mmgms", "nm_ug_ps", "Imperial", "FPS", "British"}, list.Presets)
	assert.Equal(t, "gram", list.Details["CGS"]["kilogram"])

	rec = do(t, h, http.MethodGet, "/api/units/presets/Imperial", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preset uniunit.Preset
	decodeBody(t, rec, &preset)
	assert.Equal(t, "Imperial", preset.Name)
	assert.Equal(t, "pound", preset.Units["kilogram"])
	assert.NotEmpty(t, preset.Description)

	rec = do(t, h, http.MethodGet, "/api/units/presets/Bogus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Preset 'Bogus' not found", detail(t, rec))
}

func TestConvert(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/convert", `{"value": 1, "from_unit": "kg", "to_unit": "lb"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body convertResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 1.0, body.Value)
	assert.Equal(t, "kg", body.FromUnit)
	assert.Equal(t, "lb", body.ToUnit)
	assert.InEpsilon(t, 2.20462262, body.Result, 1e-6)

	rec = do(t, h, http.MethodPost, "/api/convert", `{"value": 2, "from_unit": "斤", "to_unit": "kg"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &body)
	assert.InDelta(t, 1.0, body.Result, 1e-9)
}

func TestConvert_Errors(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{
			name:   "incompatible",
			body:   `{"value": 1, "from_unit": "m", "to_unit": "s"}`,
			status: http.StatusBadRequest,
			detail: "Cannot convert from 'meter' ([length]) to 'second' ([time])",
		},
		{
			name:   "undefined",
			body:   `{"value": 1, "from_unit": "blorp", "to_unit": "m"}`,
			status: http.StatusBadRequest,
			detail: "'blorp' is not defined in the unit registry",
		},
		{
			name:   "missing value",
			body:   `{"from_unit": "m", "to_unit": "km"}`,
			status: http.StatusBadRequest,
			detail: "value is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/convert", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, detail(t, rec))
		})
	}

	rec := do(t, h, http.MethodPost, "/api/convert", `{"value": 1, "from_unit": "m", "to_unit": "km", "extra": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "invalid request body")

	rec = do(t, h, http.MethodPost, "/api/convert", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/convert", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	h := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 }).Handler()

	body := `{"value": 1, "from_unit": "` + strings.Repeat("m*", 64) + `m", "to_unit": "m"}`
	rec := do(t, h, http.MethodPost, "/api/convert", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body exceeds 64 bytes", detail(t, rec))
}

func TestUnitSystem(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/unit-system",
		`{"value": "1 J", "units": {"kilogram": "gram", "meter": "centimeter", "second": "second"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Value  string            `json:"value"`
		Units  map[string]string `json:"units"`
		Result string            `json:"result"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "1 J", body.Value)
	assert.Equal(t, "centimeter", body.Units["meter"])
	assert.Equal(t, "10000000 centimeter ** 2 * gram / second ** 2", body.Result)

	// bare numbers are meters
	rec = do(t, h, http.MethodPost, "/api/unit-system", `{"value": 5, "units": {"meter": "centimeter"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var numeric struct {
		Value  float64 `json:"value"`
		Result string  `json:"result"`
	}
	decodeBody(t, rec, &numeric)
	assert.Equal(t, 5.0, numeric.Value)
	assert.Equal(t, "500 centimeter", numeric.Result)

	rec = do(t, h, http.MethodPost, "/api/unit-system", `{"value": "1 m", "units": {"meter": "blorp"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "'blorp' is not defined in the unit registry", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/api/unit-system", `{"value": true, "units": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/unit-system", `{"value": "1 m"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "units is required", detail(t, rec))
}

func TestQuickConvert(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/quick-convert", `{"value": "100 kg", "from_system": "SI", "to_system": "CGS"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body quickConvertResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, quickConvertResponse{
		Value:      "100 kg",
		FromSystem: "SI",
		ToSystem:   "CGS",
		Result:     "100000 gram",
	}, body)

	rec = do(t, h, http.MethodPost, "/api/quick-convert", `{"value": 100, "from_system": "SI", "to_system": "CGS"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &body)
	assert.Equal(t, "100", body.Value)
	assert.Equal(t, "100", body.Result)

	rec = do(t, h, http.MethodPost, "/api/quick-convert", `{"value": "1 kg", "from_system": "SI", "to_system": "Bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "Preset 'Bogus' not found. Available: SI")
}

func TestUnitInfo(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/unit-info?value=101325%20Pa", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var info uniunit.Info
	decodeBody(t, rec, &info)
	assert.Equal(t, 101325.0, info.Magnitude)
	assert.Equal(t, "pascal", info.Units)
	assert.Equal(t, "[mass] / [length] / [time] ** 2", info.Dimensionality)
	assert.Equal(t, -2.0, info.BaseUnits["[time]"])
	assert.False(t, info.IsDimensionless)

	rec = do(t, h, http.MethodGet, "/api/unit-info", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "value query parameter is required", detail(t, rec))

	rec = do(t, h, http.MethodGet, "/api/unit-info?value=3%20blorp", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogueRoutes(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/chinese-units", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var zh map[string]map[string]string
	decodeBody(t, rec, &zh)
	assert.Len(t, zh["chinese_units"], 67)
	assert.Equal(t, "meter", zh["chinese_units"]["米"])

	rec = do(t, h, http.MethodGet, "/api/ureg/units", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var common map[string][]string
	decodeBody(t, rec, &common)
	assert.Equal(t, CommonUnits, common["units"])
}

func TestCommonUnitsParse(t *testing.T) {
	reg := testutil.NewRegistry(t)
	for _, name := range CommonUnits {
		_, err := reg.ParseUnit(name)
		assert.NoError(t, err, name)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestGzip(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2, ClientTTL: time.Minute}
	}).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/ureg/units", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/ureg/units", "").Code)

	rec := do(t, h, http.MethodGet, "/api/ureg/units", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", detail(t, rec))

	// health checks are exempt
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	// other clients have their own budget
	req := httptest.NewRequest(http.MethodGet, "/api/ureg/units", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, time.Minute)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.3"))
	assert.Equal(t, 1, limiter.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `uniunit_http_requests_total{code="200",method="GET",route="GET /health"}`)
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv := newTestServer(t, func(c *config.ServerConfig) {
		c.MaxConnections = 4
		c.ShutdownTimeout = 2 * time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestFailureLogsCarryRequestContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := newTestServerWithLogger(t, nil, zap.New(core)).Handler()

	post := func(target, body string) {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	post("/api/quick-convert", `{"value": "1 kg", "from_system": "SI", "to_system": "Bogus"}`)
	post("/api/unit-system", `{"value": "1 kg", "units": {"kilogram": "blorp"}}`)

	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 2)

	fields := rejected[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "Bogus", fields["system"])
	assert.Equal(t, "http_server", fields["component"])
	assert.Equal(t, "not_found", fields["error_type"])

	fields = rejected[1].ContextMap()
	assert.Equal(t, "custom", fields["system"])
	assert.Equal(t, "undefined_unit", fields["error_type"])

	access := logs.FilterMessage("http request").All()
	require.Len(t, access, 2)
	assert.Equal(t, zapcore.WarnLevel, access[0].Level)
	assert.Equal(t, "req-42", access[0].ContextMap()["request_id"])
}

func TestFailStatusFollowsErrorType(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/units/presets/Bogus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a preset named in a request body is a bad request, not a missing route
	rec = do(t, h, http.MethodPost, "/api/quick-convert", `{"value": "1 kg", "from_system": "Bogus", "to_system": "SI"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/unit-info?value=3+blorp", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	small := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 16 }).Handler()
	rec = do(t, small, http.MethodPost, "/api/convert", `{"value": 1, "from_unit": "kilogram", "to_unit": "pound"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body exceeds 16 bytes", detail(t, rec))
}

func TestTracing_SpanNamedByRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	h := newTestServer(t, nil).Handler()
	do(t, h, http.MethodGet, "/api/units/presets/CGS", "")
	do(t, h, http.MethodGet, "/api/units/presets/SI", "")
	do(t, h, http.MethodGet, "/nope", "")

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{
		"GET /api/units/presets/{name}",
		"GET /api/units/presets/{name}",
		"GET unmatched",
	}, names)
}

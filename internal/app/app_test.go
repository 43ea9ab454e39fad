package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/testutil"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
)

const labPresets = `presets:
  - name: Lab
    description: Milligram-Millimeter-Second
    units:
      kilogram: milligram
      meter: millimeter
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.RateLimit.Enabled = false
	return cfg
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	cfg.Units.Definitions = []string{"furlong = 220 * yard", "fortnight = 14 * day"}
	cfg.Units.Presets = []config.PresetConfig{{
		Name:  "Racing",
		Units: map[string]string{"meter": "furlong", "second": "fortnight"},
	}}

	a, err := New(cfg, testutil.TestLogger(t))
	require.NoError(t, err)

	assert.True(t, a.Registry().IsDefined("furlong"))
	assert.True(t, a.Registry().IsDefined("斤"))

	racing, err := a.Presets().Get("Racing")
	require.NoError(t, err)
	q, err := a.Registry().Parse("1 m/s")
	require.NoError(t, err)
	out, err := racing.ConvertQuantity(q)
	require.NoError(t, err)
	assert.Equal(t, "furlong / fortnight", out.Unit.String())
	assert.InEpsilon(t, 6012.87, out.Magnitude, 1e-4)

	rec := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/units/presets/Racing", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_WithoutChineseAliases(t *testing.T) {
	cfg := testConfig(t)
	cfg.Units.ChineseAliases = false

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, a.Registry().IsDefined("斤"))

	rec := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chinese-units", nil))
	assert.JSONEq(t, `{"chinese_units": {}}`, rec.Body.String())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		msg    string
	}{
		{
			name:   "bad definition",
			mutate: func(c *config.Config) { c.Units.Definitions = []string{"widget = 3 * blorp"} },
			msg:    "invalid unit definition",
		},
		{
			name: "unknown preset target",
			mutate: func(c *config.Config) {
				c.Units.Presets = []config.PresetConfig{{Name: "Bad", Units: map[string]string{"meter": "blorp"}}}
			},
			msg: "invalid preset target unit",
		},
		{
			name:   "missing presets file",
			mutate: func(c *config.Config) { c.Units.PresetsFile = filepath.Join(t.TempDir(), "missing.yaml") },
			msg:    "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := New(cfg, zap.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReloadPresets(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "presets.yaml", labPresets)

	cfg := testConfig(t)
	cfg.Units.PresetsFile = path

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	lab, err := a.Presets().Get("Lab")
	require.NoError(t, err)
	assert.Equal(t, "milligram", lab.Units["kilogram"])

	updated := `presets:
  - name: Lab
    units:
      kilogram: microgram
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))
	require.NoError(t, a.ReloadPresets())

	lab, err = a.Presets().Get("Lab")
	require.NoError(t, err)
	assert.Equal(t, "microgram", lab.Units["kilogram"])

	// an invalid file leaves the catalogue untouched
	broken := `presets:
  - name: Lab
    units:
      kilogram: blorp
  - name: Other
    units:
      meter: inch
`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0600))
	err = a.ReloadPresets()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, ok := a.Presets().Lookup("Other")
	assert.False(t, ok)
	lab, err = a.Presets().Get("Lab")
	require.NoError(t, err)
	assert.Equal(t, "microgram", lab.Units["kilogram"])
}

func TestRun_WatchesPresetsFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "presets.yaml", labPresets)

	cfg := testConfig(t)
	cfg.Units.PresetsFile = path
	cfg.Units.WatchPresetsFile = true
	cfg.Server.ShutdownTimeout = 2 * time.Second

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	withAstro := labPresets + `  - name: Astro
    units:
      meter: light_year
`
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(withAstro), 0600)
		_, ok := a.Presets().Lookup("Astro")
		return ok
	}, 5*time.Second, 100*time.Millisecond)

	astro, err := a.Presets().Get("Astro")
	require.NoError(t, err)
	q, err := a.Registry().Parse("9.4607304725808e15 m")
	require.NoError(t, err)
	out, err := astro.Convert(uniunit.FromQuantity(q))
	require.NoError(t, err)
	converted, _ := out.Quantity()
	assert.InDelta(t, 1, converted.Magnitude, 1e-9)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNew_ExampleConfig(t *testing.T) {
	t.Setenv("UNIUNIT_PORT", "0")

	cfg, err := config.LoadFile(filepath.Join("..", "..", "examples", "uniunit.yaml"))
	require.NoError(t, err)
	cfg.Logging.File = nil

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	for _, name := range []string{"Racing", "Lab", "Astro", "Market"} {
		_, ok := a.Presets().Lookup(name)
		assert.True(t, ok, name)
	}

	market, err := a.Presets().Get("Market")
	require.NoError(t, err)
	q, err := market.ConvertQuantity(testutil.MustParse(t, a.Registry(), "1 kg"))
	require.NoError(t, err)
	assert.Equal(t, "斤", q.Unit.String())
	assert.InDelta(t, 2, q.Magnitude, 1e-9)
}

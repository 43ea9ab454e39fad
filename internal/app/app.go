// Package app wires the configuration into a running uniunit service.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/server"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// App holds the unit registry, the preset catalogue and the HTTP server
// built from one configuration.
type App struct {
	cfg      *config.Config
	registry *units.Registry
	presets  *uniunit.Presets
	server   *server.Server
	logger   *zap.Logger

	// reloadMu serializes preset file reloads
	reloadMu sync.Mutex
}

// New builds the registry, applies extra definitions and aliases, seeds the
// presets and constructs the server.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "app"))

	reg, err := units.NewRegistry(units.WithLogger(log))
	if err != nil {
		return nil, err
	}

	for _, def := range cfg.Units.Definitions {
		if err := reg.Define(def); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid unit definition").WithDetail("definition", def)
		}
	}

	aliases := map[string]string{}
	if cfg.Units.ChineseAliases {
		skipped, err := reg.RegisterAliases(units.ChineseUnits)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to register Chinese unit aliases")
		}
		if len(skipped) > 0 {
			log.Warn("some Chinese aliases clash with existing units", zap.Strings("skipped", skipped))
		}
		aliases = units.ChineseUnits
	}

	a := &App{
		cfg:      cfg,
		registry: reg,
		presets:  uniunit.NewDefaultPresets(reg),
		logger:   log,
	}

	for _, p := range cfg.Units.Presets {
		if err := a.registerPreset(p); err != nil {
			return nil, err
		}
	}
	if cfg.Units.PresetsFile != "" {
		if err := a.ReloadPresets(); err != nil {
			return nil, err
		}
	}

	a.server = server.New(cfg.Server, server.Options{
		Registry: reg,
		Presets:  a.presets,
		Aliases:  aliases,
		Metrics:  cfg.Metrics,
		Logger:   log,
	})

	return a, nil
}

// Registry returns the unit registry.
func (a *App) Registry() *units.Registry { return a.registry }

// Presets returns the preset catalogue.
func (a *App) Presets() *uniunit.Presets { return a.presets }

// Server returns the HTTP server.
func (a *App) Server() *server.Server { return a.server }

// registerPreset checks that every target unit exists before the preset
// becomes visible.
func (a *App) registerPreset(p config.PresetConfig) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid preset")
	}
	if err := a.checkTargets(p); err != nil {
		return err
	}
	a.presets.Register(p.Name, p.Units, p.Description)
	return nil
}

func (a *App) checkTargets(p config.PresetConfig) error {
	for key, target := range p.Units {
		if _, err := a.registry.ParseUnit(target); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid preset target unit").
				WithDetail("preset", p.Name).
				WithDetail("dimension", key)
		}
	}
	return nil
}

// ReloadPresets reads the configured presets file and registers every preset
// in it. Nothing is registered when any entry is invalid.
func (a *App) ReloadPresets() error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	path := a.cfg.Units.PresetsFile
	presets, err := config.LoadPresets(path)
	if err != nil {
		return err
	}

	for _, p := range presets {
		if err := a.checkTargets(p); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid presets file").WithDetail("file", path)
		}
	}
	for _, p := range presets {
		a.presets.Register(p.Name, p.Units, p.Description)
	}

	a.logger.Info("presets file loaded", zap.String("file", path), zap.Int("presets", len(presets)))
	return nil
}

// Run serves HTTP until ctx is cancelled. When enabled, the presets file is
// watched and reloaded alongside.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(gctx)
	})

	if a.cfg.Units.WatchPresetsFile && a.cfg.Units.PresetsFile != "" {
		g.Go(func() error {
			return config.Watch(gctx, a.cfg.Units.PresetsFile, config.DefaultDebounce, func() {
				if err := a.ReloadPresets(); err != nil {
					a.logger.Warn("presets reload failed, keeping previous presets", zap.Error(err))
				}
			})
		})
	}

	return g.Wait()
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/internal/app"
	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/logger"
	"github.com/ajitpratap0/uniunit/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UNIUNIT")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "uniunit",
		Short: "uniunit - unit conversion with configurable unit systems",
		Long: `uniunit converts physical quantities between units and between whole unit
systems such as SI, CGS or Imperial. It understands Chinese unit names and can
run as an HTTP service.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newServeCmd(v),
		newConvertCmd(v),
		newSystemCmd(v),
		newQuickCmd(v),
		newInfoCmd(v),
		newPresetsCmd(v),
		newUnitsCmd(v),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "uniunit v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig reads the configuration file named by --config or
// UNIUNIT_CONFIG, falling back to the defaults, and applies overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("log_level") && v.GetString("log_level") != "" {
		cfg.Logging.Level = v.GetString("log_level")
	}
	if v.IsSet("address") && v.GetString("address") != "" {
		cfg.Server.Address = v.GetString("address")
	}
	if v.IsSet("presets_file") && v.GetString("presets_file") != "" {
		cfg.Units.PresetsFile = v.GetString("presets_file")
	}
	if v.IsSet("watch") {
		cfg.Units.WatchPresetsFile = v.GetBool("watch")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the application for one-shot commands. Logs go to stderr
// so they never mix with command output.
func newApp(v *viper.Viper) (*app.App, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	if !v.IsSet("log_level") || v.GetString("log_level") == "" {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging.OutputPaths = []string{"stderr"}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, err
	}
	return app.New(cfg, logger.Get())
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API and web page.

Every flag can also be set through the environment, e.g. UNIUNIT_ADDRESS=:9000.

Example:
  uniunit serve --address :8000 --presets-file presets.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			log := logger.Get().With(zap.String("component", "uniunit-cli"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, observability.WithVersion(version))
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					log.Warn("failed to flush traces", zap.Error(err))
				}
			}()

			a, err := app.New(cfg, logger.Get())
			if err != nil {
				return err
			}

			log.Info("starting uniunit",
				zap.String("version", version),
				zap.String("address", cfg.Server.Address),
				zap.Int("presets", len(a.Presets().List())))

			if err := a.Run(ctx); err != nil {
				return err
			}
			log.Info("uniunit stopped")
			return nil
		},
	}

	cmd.Flags().String("address", "", "Listen address (default :8000)")
	cmd.Flags().String("presets-file", "", "YAML file with additional presets")
	cmd.Flags().Bool("watch", false, "Reload the presets file when it changes")
	_ = v.BindPFlag("address", cmd.Flags().Lookup("address"))
	_ = v.BindPFlag("presets_file", cmd.Flags().Lookup("presets-file"))
	_ = v.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	return cmd
}

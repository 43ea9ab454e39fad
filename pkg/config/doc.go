// Package config defines the uniunit configuration.
//
// The configuration is organized into sections:
//   - Server: HTTP listener, timeouts, body limits, rate limiting
//   - Logging: zap logger settings
//   - Metrics: Prometheus exposition
//   - Tracing: OpenTelemetry tracing
//   - Units: extra unit definitions, Chinese aliases and presets
//
// Example usage:
//
//	cfg, err := config.LoadFile("uniunit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Server.Address = ":9000"
//
// # Environment Variable Substitution
//
// Any ${VAR_NAME} in a configuration file is replaced with the value of the
// environment variable before the YAML is parsed:
//
//	server:
//	  address: ":${PORT}"
//	logging:
//	  level: ${LOG_LEVEL}
//
// Unset variables are replaced with the empty string.
//
// # Presets
//
// Unit system presets can be listed inline under units.presets or kept in a
// separate file referenced by units.presets_file:
//
//	presets:
//	  - name: Lab
//	    description: Milligram-Millimeter-Second
//	    units:
//	      kilogram: milligram
//	      meter: millimeter
//
// A relative presets_file is resolved against the directory of the
// configuration file. With units.watch_presets_file enabled the server reloads the file whenever
// it changes.
package config

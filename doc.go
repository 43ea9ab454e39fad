// Package uniunit converts physical quantities between units and between
// whole unit systems.
//
// A unit system maps each base dimension ([length], [mass], [time], ...) to
// a target unit. Converting a quantity into a system re-expresses it in the
// product of those targets raised to the quantity's dimensional exponents,
// so one joule in a centimeter-gram-second system becomes
// 1e7 centimeter ** 2 * gram / second ** 2.
//
// # Packages
//
//   - pkg/units: the unit registry, definition language and parser
//   - pkg/uniunit: remappers, unit systems, presets and conversion helpers
//   - pkg/server: the HTTP API and embedded web page
//   - internal/app: wiring from configuration to a running service
//   - cmd/uniunit: the command line interface
//
// # Quick Start
//
//	reg := units.MustNewRegistry()
//	presets := uniunit.NewDefaultPresets(reg)
//
//	out, err := uniunit.QuickConvertString(presets, "100 kg", "SI", "Imperial")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(uniunit.FormatValue(out)) // 220.46 pound
//
// Custom systems are plain maps from dimension (long name, short symbol or
// bracketed dimension) to unit:
//
//	r := uniunit.NewRemapper(reg, map[string]string{
//	    "length": "millimeter",
//	    "kg":     "gram",
//	})
//
// # Chinese Units
//
// Registry.RegisterAliases(units.ChineseUnits) adds names such as 米, 公斤,
// 斤, 亩 and 千瓦时 so that "3 斤" parses like any other quantity.
//
// # Service
//
//	uniunit serve --config uniunit.yaml
//
// serves the JSON API under /api, a small web page at /, health checks at
// /health and Prometheus metrics at /metrics.
package uniunit

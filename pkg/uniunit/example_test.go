package uniunit_test

import (
	"fmt"

	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// ExampleRemapper_Convert converts quantities with a custom specification.
func ExampleRemapper_Convert() {
	reg := units.MustNewRegistry()
	r := uniunit.NewRemapper(reg, map[string]string{
		"kilogram": "gram",
		"meter":    "centimeter",
		"second":   "second",
	})

	for _, expr := range []string{"100 kg", "1 J", "1 N"} {
		q, _ := reg.Parse(expr)
		out, err := r.Convert(uniunit.FromQuantity(q))
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(uniunit.FormatValue(out))
	}

	// Output:
	// 100000 gram
	// 10000000 centimeter ** 2 * gram / second ** 2
	// 100000 centimeter * gram / second ** 2
}

// ExamplePresets_Get shows the preset lookup failure.
func ExamplePresets_Get() {
	presets := uniunit.NewDefaultPresets(units.MustNewRegistry())

	_, err := presets.Get("Bogus")
	fmt.Println(err)

	// Output:
	// Preset 'Bogus' not found. Available: SI, MKS, CGS, mmkgms, mmgms, nm_ug_ps, Imperial, FPS, British
}

// ExampleQuickConvert converts between two preset systems.
func ExampleQuickConvert() {
	reg := units.MustNewRegistry()
	presets := uniunit.NewDefaultPresets(reg)

	q, _ := reg.Parse("1 kg")
	out, err := uniunit.QuickConvert(presets, uniunit.FromQuantity(q), "SI", "Imperial")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(uniunit.FormatValue(out))

	// Output:
	// 2.2046 pound
}

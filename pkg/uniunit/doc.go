// Package uniunit converts quantities between systems of units.
//
// A conversion specification maps base dimensions to preferred units:
//
//	spec := map[string]string{"kilogram": "gram", "meter": "millimeter", "second": "second"}
//	r := uniunit.NewRemapper(reg, spec)
//	out, _ := r.Convert(uniunit.FromQuantity(q)) // 100 kilogram -> 100000 gram
//
// Any quantity is decomposed into its base dimensions and rebuilt from the
// mapped units, so a joule under the specification above comes back in
// gram * millimeter ** 2 / second ** 2. Keys may be unit symbols ("kg"),
// base-unit names ("kilogram") or dimension identifiers ("[mass]");
// dimensions left out fall back to their SI base unit.
//
// UnitSystem gives a specification a name and description, and Presets holds
// the named systems (SI, CGS, Imperial, ...) a process works with.
package uniunit

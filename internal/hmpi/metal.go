package hmpi

// Metal names a measured heavy metal. Names are matched case-sensitively;
// anything outside the known set is still accepted and uses the default
// reference constants.
type Metal string

const (
	Lead     Metal = "Lead"
	Arsenic  Metal = "Arsenic"
	Chromium Metal = "Chromium"
	Mercury  Metal = "Mercury"
	Cadmium  Metal = "Cadmium"
)

// Metals lists the known metals in display order.
var Metals = []Metal{Lead, Arsenic, Chromium, Mercury, Cadmium}

// Known reports whether m is one of the enumerated metals.
func (m Metal) Known() bool {
	_, ok := referenceTable[m]
	return ok
}

// Reference holds the ideal value Ii (mg/L) and unit weight Mi for a metal.
type Reference struct {
	Ideal  float64
	Weight float64
}

const (
	DefaultIdealValue = 0.01
	DefaultWeight     = 0.5
)

var referenceTable = map[Metal]Reference{
	Lead:     {Ideal: 0.01, Weight: 0.7},
	Arsenic:  {Ideal: 0.01, Weight: 0.5},
	Chromium: {Ideal: 0.05, Weight: 0.3},
	Mercury:  {Ideal: 0.006, Weight: 0.8},
	Cadmium:  {Ideal: 0.003, Weight: 0.9},
}

// ReferenceFor returns the reference constants for a metal, falling back to
// DefaultIdealValue/DefaultWeight for unrecognized names.
func ReferenceFor(m Metal) Reference {
	if ref, ok := referenceTable[m]; ok {
		return ref
	}
	return Reference{Ideal: DefaultIdealValue, Weight: DefaultWeight}
}

// References returns a copy of the reference table.
func References() map[Metal]Reference {
	out := make(map[Metal]Reference, len(referenceTable))
	for m, ref := range referenceTable {
		out[m] = ref
	}
	return out
}

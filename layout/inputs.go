// Package layout turns atom inputs into immutable nucleus and orbit layouts,
// memoizing results by their derived counts and running them in the background.
package layout

import (
	"log/slog"
	"math"
)

// Inputs are the caller-supplied atom parameters.
type Inputs struct {
	AtomicNumber float64 `json:"atomic_number" csv:"atomic_number"`
	AtomicMass   float64 `json:"atomic_mass" csv:"atomic_mass"`
	Charge       float64 `json:"charge" csv:"charge"`
}

// Counts are the particle counts derived from Inputs, all >= 0.
type Counts struct {
	Protons   int `json:"protons" csv:"protons"`
	Neutrons  int `json:"neutrons" csv:"neutrons"`
	Electrons int `json:"electrons" csv:"electrons"`
}

// Nucleons returns protons + neutrons.
func (c Counts) Nucleons() int {
	return c.Protons + c.Neutrons
}

// Derive computes particle counts:
//
//	protons   = floor(atomicNumber)
//	neutrons  = floor(atomicMass - atomicNumber)
//	electrons = floor(atomicNumber - charge)
//
// Negative or non-finite results are clamped to 0 with a warning; they are never an error.
func Derive(in Inputs) Counts {
	return Counts{
		Protons:   clampCount("protons", in.AtomicNumber, in),
		Neutrons:  clampCount("neutrons", in.AtomicMass-in.AtomicNumber, in),
		Electrons: clampCount("electrons", in.AtomicNumber-in.Charge, in),
	}
}

func clampCount(name string, v float64, in Inputs) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		slog.Warn("non-finite derived count clamped to 0",
			"count", name,
			"atomic_number", in.AtomicNumber,
			"atomic_mass", in.AtomicMass,
			"charge", in.Charge,
		)
		return 0
	}

	f := math.Floor(v)
	if f < 0 {
		slog.Warn("negative derived count clamped to 0",
			"count", name,
			"value", f,
			"atomic_number", in.AtomicNumber,
			"atomic_mass", in.AtomicMass,
			"charge", in.Charge,
		)
		return 0
	}
	if f > math.MaxInt32 {
		slog.Warn("derived count clamped to int32 range", "count", name, "value", f)
		return math.MaxInt32
	}
	return int(f)
}

// NucleusKey memoizes nucleus layouts.
type NucleusKey struct {
	Protons, Neutrons int
}

// OrbitKey memoizes orbit layouts.
type OrbitKey struct {
	Electrons, Protons, Neutrons int
}

// NucleusKey returns the nucleus memoization key for c.
func (c Counts) NucleusKey() NucleusKey {
	return NucleusKey{Protons: c.Protons, Neutrons: c.Neutrons}
}

// OrbitKey returns the orbit memoization key for c.
func (c Counts) OrbitKey() OrbitKey {
	return OrbitKey{Electrons: c.Electrons, Protons: c.Protons, Neutrons: c.Neutrons}
}

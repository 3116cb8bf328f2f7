// Package main provides CMA-ES tuning of the nucleus packing parameters.
package main

import (
	"math"

	"github.com/pthm-cable/atom/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of packing parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "step_size", Path: "nucleus.step_size", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "centering", Path: "nucleus.centering", Min: 0, Max: 0.3, Default: 0.05},
			{Name: "container_factor", Path: "nucleus.container_factor", Min: 1.0, Max: 3.0, Default: 1.5},
			{Name: "iterations", Path: "nucleus.iterations", Min: 20, Max: 300, Default: 100},
		},
	}
}

// clamp restricts v to the spec's bounds.
func (s ParamSpec) clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// mapEach applies f to every (spec, value) pair.
func (pv *ParamVector) mapEach(v []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = f(spec, v[i])
	}
	return out
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Default
	}
	return out
}

// Normalize maps raw values onto [0,1] per parameter range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.mapEach(raw, func(s ParamSpec, v float64) float64 {
		return (v - s.Min) / (s.Max - s.Min)
	})
}

// Denormalize is the inverse of Normalize.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.mapEach(unit, func(s ParamSpec, v float64) float64 {
		return s.Min + v*(s.Max-s.Min)
	})
}

// Clamp restricts every value to its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.mapEach(v, func(s ParamSpec, x float64) float64 {
		return s.clamp(x)
	})
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Nucleus.StepSize = clamped[0]
	cfg.Nucleus.Centering = clamped[1]
	cfg.Nucleus.ContainerFactor = clamped[2]
	cfg.Nucleus.Iterations = int(math.Round(clamped[3]))
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Nucleus.StepSize,
		cfg.Nucleus.Centering,
		cfg.Nucleus.ContainerFactor,
		float64(cfg.Nucleus.Iterations),
	}
}

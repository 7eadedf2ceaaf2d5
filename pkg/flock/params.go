package flock

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned when a tuning value is out of range.
var ErrInvalidParams = errors.New("invalid boid parameters")

// Params holds the per-agent tunables. Every agent carries its own copy;
// Flock.Tune rewrites all of them at once.
type Params struct {
	Size         float64 `json:"size" yaml:"size"`                 // collision radius
	BorderMargin float64 `json:"borderMargin" yaml:"borderMargin"` // distance where edge steering starts

	SeparationRadius float64 `json:"separationRadius" yaml:"separationRadius"`
	AlignmentRadius  float64 `json:"alignmentRadius" yaml:"alignmentRadius"`
	CohesionRadius   float64 `json:"cohesionRadius" yaml:"cohesionRadius"`

	AvoidFactor     float64 `json:"avoidFactor" yaml:"avoidFactor"`         // Separation strength
	MatchingFactor  float64 `json:"matchingFactor" yaml:"matchingFactor"`   // Alignment strength
	CenteringFactor float64 `json:"centeringFactor" yaml:"centeringFactor"` // Cohesion strength
	TurnFactor      float64 `json:"turnFactor" yaml:"turnFactor"`           // Edge turning strength
}

func DefaultParams() Params {
	return Params{
		Size:             2,
		BorderMargin:     50,
		SeparationRadius: 8,
		AlignmentRadius:  40,
		CohesionRadius:   40,
		AvoidFactor:      3,
		MatchingFactor:   3,
		CenteringFactor:  0.03,
		TurnFactor:       2,
	}
}

// MaxRadius is the largest of the three interaction radii, the half-size
// of the neighbor query window.
func (p Params) MaxRadius() float64 {
	return max(p.SeparationRadius, p.AlignmentRadius, p.CohesionRadius)
}

// Validate checks that sizes and radii are positive and gains are not negative.
func (p Params) Validate() error {
	positive := map[string]float64{
		"size":             p.Size,
		"separationRadius": p.SeparationRadius,
		"alignmentRadius":  p.AlignmentRadius,
		"cohesionRadius":   p.CohesionRadius,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %g", ErrInvalidParams, name, v)
		}
	}
	nonNegative := map[string]float64{
		"borderMargin":    p.BorderMargin,
		"avoidFactor":     p.AvoidFactor,
		"matchingFactor":  p.MatchingFactor,
		"centeringFactor": p.CenteringFactor,
		"turnFactor":      p.TurnFactor,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidParams, name, v)
		}
	}
	return nil
}

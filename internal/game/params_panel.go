package game

import (
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/ui"
)

// paramSliders binds one slider to each per-agent tunable.
type paramSliders struct {
	size, borderMargin               *ui.Slider
	separation, alignment, cohesion  *ui.Slider
	avoid, matching, centering, turn *ui.Slider
}

func addParamSliders(panel *ui.UIPanel, p flock.Params) paramSliders {
	var s paramSliders

	panel.AddSection("Interaction Radii")
	s.separation = panel.AddSlider("Separation Radius", 1, 100, p.SeparationRadius)
	s.alignment = panel.AddSlider("Alignment Radius", 1, 200, p.AlignmentRadius)
	s.cohesion = panel.AddSlider("Cohesion Radius", 1, 200, p.CohesionRadius)

	panel.AddSection("Boids Flocking")
	s.avoid = panel.AddSlider("Avoid Factor", 0, 10, p.AvoidFactor)
	s.matching = panel.AddSlider("Matching Factor", 0, 10, p.MatchingFactor)
	s.centering = panel.AddSlider("Centering Factor", 0, 0.5, p.CenteringFactor)
	s.turn = panel.AddSlider("Turn Factor", 0, 10, p.TurnFactor)

	panel.AddSection("Body")
	s.size = panel.AddSlider("Size", 0.5, 10, p.Size)
	s.borderMargin = panel.AddSlider("Border Margin", 0, 200, p.BorderMargin)
	return s
}

// params overlays the slider values on base.
func (s paramSliders) params(base flock.Params) flock.Params {
	base.Size = s.size.Value
	base.BorderMargin = s.borderMargin.Value
	base.SeparationRadius = s.separation.Value
	base.AlignmentRadius = s.alignment.Value
	base.CohesionRadius = s.cohesion.Value
	base.AvoidFactor = s.avoid.Value
	base.MatchingFactor = s.matching.Value
	base.CenteringFactor = s.centering.Value
	base.TurnFactor = s.turn.Value
	return base
}

// set moves the sliders to p. Values beyond a slider's range are pinned
// to it on screen only; the flock still receives p unchanged.
func (s paramSliders) set(p flock.Params) {
	pin := func(sl *ui.Slider, v float64) { sl.Value = min(max(v, sl.Min), sl.Max) }
	pin(s.size, p.Size)
	pin(s.borderMargin, p.BorderMargin)
	pin(s.separation, p.SeparationRadius)
	pin(s.alignment, p.AlignmentRadius)
	pin(s.cohesion, p.CohesionRadius)
	pin(s.avoid, p.AvoidFactor)
	pin(s.matching, p.MatchingFactor)
	pin(s.centering, p.CenteringFactor)
	pin(s.turn, p.TurnFactor)
}

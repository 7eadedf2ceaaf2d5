package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MinSpeed is the speed floor enforced before every integration step.
	MinSpeed = 50.0

	overlapEpsilon = 1e-3
	colorEpsilon   = 1e-5
)

// Boid is one agent of the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. https://en.wikipedia.org/wiki/Boids
//
// A Boid lives in the Flock arena and is mutated only by the three phases
// of a sub-step: reset+border, pairwise Handle*, then Apply*.
type Boid struct {
	ID       int
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Params

	IdentityColor colorful.Color
	BlendedColor  colorful.Color

	// accumulators, valid between ResetForces and the Apply* calls
	separationForce geometry.Vector2D
	alignmentForce  geometry.Vector2D
	alignmentCount  float64
	cohesionForce   geometry.Vector2D
	cohesionCount   float64
	colorNumerator  colorful.Color
	colorWeight     float64
}

// NewBoid creates a motionless agent at pos whose colour is derived from
// its spawn index id.
func NewBoid(pos geometry.Vector2D, id int, p Params) Boid {
	c := IdentityColor(id)
	return Boid{
		ID:            id,
		Position:      pos,
		Params:        p,
		IdentityColor: c,
		BlendedColor:  c,
	}
}

// ============================================================================
// Solo behaviors
// ============================================================================

func (b *Boid) ResetForces() {
	b.separationForce = geometry.Vector2D{}
	b.alignmentForce = geometry.Vector2D{}
	b.alignmentCount = 0
	b.cohesionForce = geometry.Vector2D{}
	b.cohesionCount = 0
	b.colorNumerator = colorful.Color{}
	b.colorWeight = 0
}

// HandleBorder keeps the agent inside boundary. Two independent effects:
// a hard clamp at Size from each edge that zeroes the velocity component,
// then a TurnFactor push inward when within BorderMargin of an edge.
func (b *Boid) HandleBorder(boundary geometry.Rect) {
	p, v := &b.Position, &b.Velocity
	lo, hi := boundary.Min, boundary.Max

	if p.X < lo.X+b.Size {
		p.X = lo.X + b.Size // prevent sticking
		v.X = 0
	} else if p.X > hi.X-b.Size {
		p.X = hi.X - b.Size
		v.X = 0
	}

	if p.Y < lo.Y+b.Size {
		p.Y = lo.Y + b.Size
		v.Y = 0
	} else if p.Y > hi.Y-b.Size {
		p.Y = hi.Y - b.Size
		v.Y = 0
	}

	if p.X < lo.X+b.BorderMargin {
		v.X += b.TurnFactor
	}
	if p.X > hi.X-b.BorderMargin {
		v.X -= b.TurnFactor
	}
	if p.Y < lo.Y+b.BorderMargin {
		v.Y += b.TurnFactor
	}
	if p.Y > hi.Y-b.BorderMargin {
		v.Y -= b.TurnFactor
	}
}

// ============================================================================
// Pairwise behaviors: each call writes to both b and other.
// b and other must be distinct agents.
// ============================================================================

// HandleSeparation accumulates opposite repulsions when other is inside
// b's separation radius, and pushes both apart at once when their bodies
// overlap.
func (b *Boid) HandleSeparation(other *Boid) {
	distSq := b.Position.DistanceSquaredTo(other.Position)
	if distSq >= b.SeparationRadius*b.SeparationRadius {
		return
	}
	delta := b.Position.Sub(other.Position)
	b.separationForce = b.separationForce.Add(delta)
	other.separationForce = other.separationForce.Sub(delta)

	// static collision
	reach := b.Size + other.Size
	if distSq < reach*reach {
		dist := math.Max(math.Sqrt(distSq), overlapEpsilon)
		overlap := 0.5 * math.Max(reach-dist, 0)
		push := delta.Mul(overlap / dist)
		b.Position = b.Position.Add(push)
		other.Position = other.Position.Sub(push)
	}
}

// HandleAlignment uses AlignmentRadius*CohesionRadius as its squared
// threshold.
func (b *Boid) HandleAlignment(other *Boid) {
	if b.Position.DistanceSquaredTo(other.Position) >= b.AlignmentRadius*b.CohesionRadius {
		return
	}
	b.alignmentCount++
	b.alignmentForce = b.alignmentForce.Add(other.Velocity)
	other.alignmentCount++
	other.alignmentForce = other.alignmentForce.Add(b.Velocity)
}

func (b *Boid) HandleCohesion(other *Boid) {
	if b.Position.DistanceSquaredTo(other.Position) >= b.CohesionRadius*b.CohesionRadius {
		return
	}
	b.cohesionCount++
	b.cohesionForce = b.cohesionForce.Add(other.Position)
	other.cohesionCount++
	other.cohesionForce = other.cohesionForce.Add(b.Position)
}

// HandleColor mixes in the neighbour's blended colour weighted by inverse
// distance.
func (b *Boid) HandleColor(other *Boid) {
	distSq := b.Position.DistanceSquaredTo(other.Position)
	if distSq >= b.CohesionRadius*b.CohesionRadius {
		return
	}
	w := 1 / math.Max(math.Sqrt(distSq), colorEpsilon)
	b.colorNumerator = addScaled(b.colorNumerator, other.BlendedColor, w)
	b.colorWeight += w
	other.colorNumerator = addScaled(other.colorNumerator, b.BlendedColor, w)
	other.colorWeight += w
}

// ============================================================================
// Apply phase
// ============================================================================

func (b *Boid) ApplyColor() {
	if b.colorWeight > 0 {
		b.BlendedColor = addScaled(colorful.Color{}, b.colorNumerator, 1/b.colorWeight)
		return
	}
	b.BlendedColor = b.IdentityColor
}

func (b *Boid) ApplySeparation(dt float64) {
	b.Velocity = b.Velocity.Add(b.separationForce.Mul(b.AvoidFactor * dt))
}

func (b *Boid) ApplyAlignment(dt float64) {
	if b.alignmentCount <= 0 {
		return
	}
	avgVel := b.alignmentForce.Mul(1 / b.alignmentCount)
	b.Velocity = b.Velocity.Add(avgVel.Sub(b.Velocity).Mul(b.MatchingFactor * dt))
}

func (b *Boid) ApplyCohesion(dt float64) {
	if b.cohesionCount <= 0 {
		return
	}
	avgPos := b.cohesionForce.Mul(1 / b.cohesionCount)
	b.Velocity = b.Velocity.Add(avgPos.Sub(b.Position).Mul(b.CenteringFactor * dt))
}

// ApplyForces enforces MinSpeed then integrates the position.
// A motionless agent gets the default heading (2*MinSpeed, 2*MinSpeed).
func (b *Boid) ApplyForces(dt float64) {
	speed := b.Velocity.Len()
	if speed < MinSpeed {
		if speed <= 0 {
			b.Velocity = geometry.Vector2D{X: 2 * MinSpeed, Y: 2 * MinSpeed}
		} else {
			b.Velocity = b.Velocity.Mul(MinSpeed / speed)
		}
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
}

// View copies the attributes the renderer needs.
func (b *Boid) View() BoidView {
	return BoidView{
		ID:               b.ID,
		Position:         b.Position,
		Velocity:         b.Velocity,
		SeparationRadius: b.SeparationRadius,
		AlignmentRadius:  b.AlignmentRadius,
		CohesionRadius:   b.CohesionRadius,
		Size:             b.Size,
		Color:            b.BlendedColor,
	}
}

// BoidView is the read-only bundle handed to the rendering side.
type BoidView struct {
	ID               int
	Position         geometry.Vector2D
	Velocity         geometry.Vector2D
	SeparationRadius float64
	AlignmentRadius  float64
	CohesionRadius   float64
	Size             float64
	Color            colorful.Color
}

package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func boidAt(x, y float64, id int) *Boid {
	b := NewBoid(geometry.Vector2D{X: x, Y: y}, id, DefaultParams())
	return &b
}

func TestHandleBorder_HardClamp(t *testing.T) {
	bounds := geometry.RectFromSize(200, 100)
	tests := []struct {
		name    string
		pos     geometry.Vector2D
		vel     geometry.Vector2D
		wantPos geometry.Vector2D
		wantVel geometry.Vector2D
	}{
		{"left edge", geometry.Vector2D{X: -10, Y: 50}, geometry.Vector2D{X: -3, Y: 1}, geometry.Vector2D{X: 2, Y: 50}, geometry.Vector2D{X: 0, Y: 1}},
		{"right edge", geometry.Vector2D{X: 199, Y: 50}, geometry.Vector2D{X: 3, Y: 1}, geometry.Vector2D{X: 198, Y: 50}, geometry.Vector2D{X: 0, Y: 1}},
		{"top edge", geometry.Vector2D{X: 100, Y: 1}, geometry.Vector2D{X: 1, Y: -3}, geometry.Vector2D{X: 100, Y: 2}, geometry.Vector2D{X: 1, Y: 0}},
		{"bottom right corner", geometry.Vector2D{X: 500, Y: 500}, geometry.Vector2D{X: 4, Y: 4}, geometry.Vector2D{X: 198, Y: 98}, geometry.Vector2D{}},
		{"inside untouched", geometry.Vector2D{X: 100, Y: 50}, geometry.Vector2D{X: 4, Y: 4}, geometry.Vector2D{X: 100, Y: 50}, geometry.Vector2D{X: 4, Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boidAt(tt.pos.X, tt.pos.Y, 0)
			b.Velocity = tt.vel
			b.BorderMargin = 0 // isolate the clamp from the steering bias

			b.HandleBorder(bounds)

			assert.True(t, b.Position.Eq(tt.wantPos), "position %s, want %s", b.Position, tt.wantPos)
			assert.True(t, b.Velocity.Eq(tt.wantVel), "velocity %s, want %s", b.Velocity, tt.wantVel)
		})
	}
}

func TestHandleBorder_ClampAndSteerBothFire(t *testing.T) {
	b := boidAt(-5, 300, 0)
	b.Velocity = geometry.Vector2D{X: -10, Y: 0}

	b.HandleBorder(geometry.RectFromSize(800, 600))

	assert.Equal(t, b.Size, b.Position.X)
	assert.Equal(t, b.TurnFactor, b.Velocity.X, "zeroed by the clamp, then pushed inward")
	assert.Equal(t, 0.0, b.Velocity.Y)
}

func TestHandleBorder_MarginOnly(t *testing.T) {
	b := boidAt(770, 300, 0)
	b.Velocity = geometry.Vector2D{X: 5, Y: 1}

	b.HandleBorder(geometry.RectFromSize(800, 600))

	assert.Equal(t, 770.0, b.Position.X)
	assert.InDelta(t, 5-b.TurnFactor, b.Velocity.X, tolerance)
	assert.Equal(t, 1.0, b.Velocity.Y)
}

func TestHandleBorder_HonorsBoundaryOrigin(t *testing.T) {
	b := boidAt(95, 300, 0)
	b.BorderMargin = 0
	b.HandleBorder(geometry.NewRect(geometry.Vector2D{X: 100, Y: 0}, geometry.Vector2D{X: 400, Y: 600}))
	assert.Equal(t, 102.0, b.Position.X)
}

func TestHandleSeparation_EqualAndOpposite(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(105, 103, 1)

	a.HandleSeparation(b)

	assert.True(t, a.separationForce.Eq(geometry.Vector2D{X: -5, Y: -3}), "got %s", a.separationForce)
	assert.True(t, a.separationForce.Add(b.separationForce).Eq(geometry.Vector2D{}))
	assert.True(t, a.Position.Eq(geometry.Vector2D{X: 100, Y: 100}), "no overlap, no displacement")
}

func TestHandleSeparation_OutOfRange(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(108, 100, 1) // exactly on the radius

	a.HandleSeparation(b)

	assert.True(t, a.separationForce.Eq(geometry.Vector2D{}))
	assert.True(t, b.separationForce.Eq(geometry.Vector2D{}))
}

func TestHandleSeparation_ResolvesOverlap(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(101, 100, 1)
	mid := a.Position.Add(b.Position).Mul(0.5)

	a.HandleSeparation(b)

	assert.InDelta(t, a.Size+b.Size, a.Position.DistanceTo(b.Position), tolerance)
	assert.True(t, a.Position.Add(b.Position).Mul(0.5).Eq(mid), "both move by the same amount")
	assert.Less(t, a.Position.X, b.Position.X, "order along the axis is kept")
}

func TestHandleSeparation_CoincidentAgentsDoNotBlowUp(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(100, 100, 1)

	a.HandleSeparation(b)

	assert.False(t, math.IsNaN(a.Position.X) || math.IsNaN(b.Position.X))
	assert.False(t, math.IsInf(a.Position.X, 0) || math.IsInf(b.Position.X, 0))
}

func TestHandleAlignment_UsesAlignmentTimesCohesion(t *testing.T) {
	a := boidAt(100, 100, 0)
	a.AlignmentRadius, a.CohesionRadius = 10, 40 // threshold is 400, i.e. 20 units

	near := boidAt(115, 100, 1) // beyond AlignmentRadius yet inside the threshold
	near.Velocity = geometry.Vector2D{X: 3, Y: 0}
	a.HandleAlignment(near)
	assert.Equal(t, 1.0, a.alignmentCount)
	assert.Equal(t, 1.0, near.alignmentCount)
	assert.True(t, a.alignmentForce.Eq(geometry.Vector2D{X: 3}))

	far := boidAt(125, 100, 2)
	a.HandleAlignment(far)
	assert.Equal(t, 1.0, a.alignmentCount)
	assert.Equal(t, 0.0, far.alignmentCount)
}

func TestHandleCohesion_Symmetric(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(120, 110, 1)

	a.HandleCohesion(b)

	assert.Equal(t, 1.0, a.cohesionCount)
	assert.Equal(t, 1.0, b.cohesionCount)
	assert.True(t, a.cohesionForce.Eq(b.Position))
	assert.True(t, b.cohesionForce.Eq(a.Position))
}

func TestApplyColor_NoNeighborKeepsIdentity(t *testing.T) {
	b := boidAt(100, 100, 5)
	b.BlendedColor = colorful.Color{R: 0.1, G: 0.2, B: 0.3}

	b.ResetForces()
	b.ApplyColor()

	assert.Equal(t, b.IdentityColor, b.BlendedColor)
}

func TestHandleColor_SingleNeighborTakesItsColor(t *testing.T) {
	a := boidAt(100, 100, 0)
	b := boidAt(110, 100, 8)

	a.HandleColor(b)
	a.ApplyColor()
	b.ApplyColor()

	assert.InDelta(t, IdentityColor(8).R, a.BlendedColor.R, tolerance)
	assert.InDelta(t, IdentityColor(8).G, a.BlendedColor.G, tolerance)
	assert.InDelta(t, IdentityColor(0).R, b.BlendedColor.R, tolerance)
	assert.InDelta(t, IdentityColor(0).G, b.BlendedColor.G, tolerance)
}

func TestApplySeparation(t *testing.T) {
	b := boidAt(100, 100, 0)
	b.separationForce = geometry.Vector2D{X: 2, Y: -1}

	b.ApplySeparation(0.5)

	assert.True(t, b.Velocity.Eq(geometry.Vector2D{X: 3, Y: -1.5}), "got %s", b.Velocity)
}

func TestApplyAlignmentAndCohesion_NeedNeighbors(t *testing.T) {
	b := boidAt(100, 100, 0)
	b.Velocity = geometry.Vector2D{X: 7, Y: 7}
	b.alignmentForce = geometry.Vector2D{X: 100, Y: 100}
	b.cohesionForce = geometry.Vector2D{X: 100, Y: 100}

	b.ApplyAlignment(1)
	b.ApplyCohesion(1)

	assert.True(t, b.Velocity.Eq(geometry.Vector2D{X: 7, Y: 7}), "zero counts must not apply")
}

func TestApplyAlignmentAndCohesion_Averages(t *testing.T) {
	b := boidAt(0, 0, 0)
	b.MatchingFactor, b.CenteringFactor = 1, 1
	b.alignmentForce, b.alignmentCount = geometry.Vector2D{X: 4, Y: 0}, 2
	b.cohesionForce, b.cohesionCount = geometry.Vector2D{X: 0, Y: 20}, 2

	b.ApplyAlignment(0.5) // (2,0) * 0.5
	b.ApplyCohesion(0.5)  // (0,10) * 0.5

	assert.True(t, b.Velocity.Eq(geometry.Vector2D{X: 1, Y: 5}), "got %s", b.Velocity)
}

func TestApplyForces_SpeedFloor(t *testing.T) {
	tests := []struct {
		name    string
		vel     geometry.Vector2D
		wantVel geometry.Vector2D
	}{
		{"motionless gets default heading", geometry.Vector2D{}, geometry.Vector2D{X: 2 * MinSpeed, Y: 2 * MinSpeed}},
		{"slow is rescaled", geometry.Vector2D{X: 3, Y: 4}, geometry.Vector2D{X: 30, Y: 40}},
		{"fast is kept", geometry.Vector2D{X: 60, Y: 80}, geometry.Vector2D{X: 60, Y: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boidAt(100, 100, 0)
			b.Velocity = tt.vel

			b.ApplyForces(0.1)

			assert.True(t, b.Velocity.Eq(tt.wantVel), "velocity %s, want %s", b.Velocity, tt.wantVel)
			assert.GreaterOrEqual(t, b.Velocity.Len(), MinSpeed-tolerance)
			assert.True(t, b.Position.Eq(geometry.Vector2D{X: 100, Y: 100}.Add(tt.wantVel.Mul(0.1))))
		})
	}
}

func TestIdentityColor(t *testing.T) {
	red := IdentityColor(0)
	assert.InDelta(t, 1, red.R, tolerance)
	assert.InDelta(t, 0, red.G, tolerance)
	assert.InDelta(t, 0, red.B, tolerance)

	quarter := IdentityColor(8) // 90 degrees
	assert.InDelta(t, 0.5, quarter.R, tolerance)
	assert.InDelta(t, 1, quarter.G, tolerance)
	assert.InDelta(t, 0, quarter.B, tolerance)

	wrapped := IdentityColor(32)
	assert.InDelta(t, red.R, wrapped.R, tolerance)
	assert.InDelta(t, red.G, wrapped.G, tolerance)
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.CohesionRadius = 0
	require.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = DefaultParams()
	p.TurnFactor = -1
	require.ErrorIs(t, p.Validate(), ErrInvalidParams)

	assert.Equal(t, 40.0, DefaultParams().MaxRadius())
}

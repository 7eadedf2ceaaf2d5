// Package telemetry derives per-tick statistics from a flock export and
// writes them as CSV.
package telemetry

import (
	"iter"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Sample holds flock statistics at the end of a tick.
type Sample struct {
	Tick    int     `csv:"tick"`
	SimTime float64 `csv:"sim_time"`
	Agents  int     `csv:"agents"`

	// Speed distribution
	MeanSpeed float64 `csv:"mean_speed"`
	StdSpeed  float64 `csv:"std_speed"`
	MinSpeed  float64 `csv:"min_speed"`

	// Polarization is the length of the mean unit heading: 1 when all
	// agents fly the same way, near 0 when headings cancel out.
	Polarization float64 `csv:"polarization"`

	// Centroid
	MeanX float64 `csv:"mean_x"`
	MeanY float64 `csv:"mean_y"`
}

// Collect consumes views and summarises them. An empty sequence gives a
// zero sample apart from Tick and SimTime.
func Collect(tick int, simTime float64, views iter.Seq[flock.BoidView]) Sample {
	s := Sample{Tick: tick, SimTime: simTime}

	var speeds, xs, ys []float64
	var heading r2.Vec
	for v := range views {
		speed := v.Velocity.Len()
		speeds = append(speeds, speed)
		xs = append(xs, v.Position.X)
		ys = append(ys, v.Position.Y)
		if speed > 0 {
			heading = r2.Add(heading, r2.Unit(r2.Vec{X: v.Velocity.X, Y: v.Velocity.Y}))
		}
	}
	s.Agents = len(speeds)
	if s.Agents == 0 {
		return s
	}

	s.MeanSpeed, s.StdSpeed = stat.MeanStdDev(speeds, nil)
	if s.Agents < 2 || math.IsNaN(s.StdSpeed) {
		s.StdSpeed = 0
	}
	s.MinSpeed = floats.Min(speeds)
	s.Polarization = r2.Norm(heading) / float64(s.Agents)
	s.MeanX = stat.Mean(xs, nil)
	s.MeanY = stat.Mean(ys, nil)
	return s
}

// Package flock runs the boids simulation: an arena of agents addressed by
// index, a quadtree of those indices for neighbor lookup, and the
// three-phase sub-stepped update.
package flock

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/quadtree"
	"github.com/tochemey/goakt/v3/log"
)

const (
	// SubSteps is the number of equal physics updates per Tick.
	SubSteps = 10
	// DefaultCapacity is the quadtree leaf capacity.
	DefaultCapacity = 10
)

var ErrEmptyBoundary = errors.New("flock boundary has no area")

// Flock owns the agents, the spatial index over them and the boundary.
// It is not safe for concurrent use: every method runs to completion on
// the caller's goroutine.
type Flock struct {
	boids    []Boid              // arena, indexed by the values stored in index
	index    *quadtree.Tree[int] // positions as of the last rebuild
	world    geometry.Rect       // configured region, upper bound of boundary
	boundary geometry.Rect       // world clipped to the current window
	params   Params              // tuning given to newly spawned agents
	capacity int
	logger   log.Logger
}

// Option configures a Flock at construction.
type Option func(*Flock)

func WithLogger(l log.Logger) Option {
	return func(f *Flock) { f.logger = l }
}

func WithCapacity(c int) Option {
	return func(f *Flock) { f.capacity = c }
}

// WithParams sets the tuning used by Spawn.
func WithParams(p Params) Option {
	return func(f *Flock) { f.params = p }
}

// New builds a flock over world from an initial population. Agents
// outside world are clamped onto it and reported in the log.
func New(world geometry.Rect, boids []Boid, opts ...Option) (*Flock, error) {
	if world.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBoundary, world)
	}
	f := &Flock{
		boids:    make([]Boid, 0, len(boids)),
		world:    world,
		boundary: world,
		params:   DefaultParams(),
		capacity: DefaultCapacity,
		logger:   log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.params.Validate(); err != nil {
		return nil, err
	}

	index, err := quadtree.New[int](world, f.capacity)
	if err != nil {
		return nil, fmt.Errorf("creating flock index: %w", err)
	}
	f.index = index

	clamped := 0
	for _, b := range boids {
		if !world.Contains(b.Position) {
			b.Position = b.Position.Clamp(world)
			clamped++
		}
		f.boids = append(f.boids, b)
		f.insert(len(f.boids) - 1)
	}
	if clamped > 0 {
		f.logger.Warnf("flock: %d initial agents outside %s were clamped", clamped, world)
	}
	f.logger.Infof("flock created: %d agents in %s (leaf capacity %d)", len(f.boids), world, f.capacity)
	return f, nil
}

// InitialBoids lays out n agents around the middle of a w x h area in the
// spiral-ish pattern of the desktop demo.
func InitialBoids(n int, w, h float64, p Params) []Boid {
	out := make([]Boid, n)
	for i := range out {
		fi := float64(i)
		pos := geometry.Vector2D{
			X: w/2 + fi*4 + math.Cos(fi)*(h/150),
			Y: h/2 + fi*4 + math.Sin(fi)*(w/150),
		}
		out[i] = NewBoid(pos, i, p)
	}
	return out
}

// Len returns the number of agents in the arena.
func (f *Flock) Len() int { return len(f.boids) }

// Boundary returns the box agents are currently kept in.
func (f *Flock) Boundary() geometry.Rect { return f.boundary }

// World returns the configured region.
func (f *Flock) World() geometry.Rect { return f.world }

// Params returns the tuning given to newly spawned agents.
func (f *Flock) Params() Params { return f.params }

// Tick advances the simulation by dt seconds, split in SubSteps. A
// negative or non-finite dt is ignored.
func (f *Flock) Tick(dt float64) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		f.logger.Warnf("flock: tick with dt=%g ignored", dt)
		return
	}
	subDt := dt / SubSteps
	for range SubSteps {
		f.step(subDt)
	}
	f.reindex()
}

func (f *Flock) step(dt float64) {
	f.borderPass()
	f.reindex()
	f.neighborPass()
	f.applyPass(dt)
}

// borderPass clears accumulators and keeps everybody inside.
func (f *Flock) borderPass() {
	for i := range f.boids {
		b := &f.boids[i]
		b.ResetForces()
		b.HandleBorder(f.boundary)
	}
}

// neighborPass lets every agent scan the window of its own largest radius.
func (f *Flock) neighborPass() {
	for i := range f.boids {
		window := geometry.RectAround(f.boids[i].Position, f.boids[i].MaxRadius())
		for j := range f.index.Query(window) {
			f.interact(i, j)
		}
	}
}

// applyPass turns accumulators into motion.
func (f *Flock) applyPass(dt float64) {
	for i := range f.boids {
		b := &f.boids[i]
		b.ApplyColor()
		b.ApplySeparation(dt)
		b.ApplyAlignment(dt)
		b.ApplyCohesion(dt)
		b.ApplyForces(dt)
	}
}

// interact runs the pairwise handlers for two arena slots. Each unordered
// pair is visited from both sides, so every contribution lands twice.
func (f *Flock) interact(i, j int) {
	if i == j {
		return
	}
	a, b := &f.boids[i], &f.boids[j]
	a.HandleColor(b)
	a.HandleSeparation(b)
	a.HandleAlignment(b)
	a.HandleCohesion(b)
}

// Spawn adds an agent at pos and returns its arena index. Positions
// outside the boundary are rejected with quadtree.ErrOutOfRegion.
func (f *Flock) Spawn(pos geometry.Vector2D) (int, error) {
	if !f.boundary.Contains(pos) {
		f.logger.Warnf("flock: spawn at %s ignored, outside %s", pos, f.boundary)
		return -1, fmt.Errorf("spawn at %s: %w", pos, quadtree.ErrOutOfRegion)
	}
	id := len(f.boids)
	f.boids = append(f.boids, NewBoid(pos, id, f.params))
	f.insert(id)
	f.logger.Debugf("flock: spawned agent %d at %s", id, pos)
	return id, nil
}

// Resize clips the world to a new window of w x h pixels, lets every
// agent re-clamp against it and rebuilds the index. A window with no
// area leaves the flock untouched.
func (f *Flock) Resize(w, h float64) error {
	next := f.world.Intersect(geometry.RectFromSize(w, h))
	if next.IsEmpty() {
		return fmt.Errorf("resize to %gx%g: %w", w, h, ErrEmptyBoundary)
	}
	prev := f.boundary
	f.boundary = next

	// two border passes: the steering applies twice, the clamp once
	for range 2 {
		for i := range f.boids {
			f.boids[i].HandleBorder(next)
		}
	}

	clamped := f.index.ChangeBounds(next)
	for _, i := range clamped {
		f.boids[i].Position = f.boids[i].Position.Clamp(next)
	}
	f.reindex()

	f.logger.Infof("flock resized: %s -> %s, %d agents were outside", prev, next, len(clamped))
	return nil
}

// Tune gives every agent, and every later spawn, the tuning p.
func (f *Flock) Tune(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.params = p
	for i := range f.boids {
		f.boids[i].Params = p
	}
	f.logger.Debugf("flock: tuning applied to %d agents", len(f.boids))
	return nil
}

// ExportVisible yields a view of every agent inside viewport. The
// sequence reads the live arena, so it is only meaningful until the next
// Tick, Spawn or Resize.
func (f *Flock) ExportVisible(viewport geometry.Rect) iter.Seq[BoidView] {
	return func(yield func(BoidView) bool) {
		for i := range f.index.Query(viewport) {
			if !yield(f.boids[i].View()) {
				return
			}
		}
	}
}

// All yields a view of every agent regardless of position.
func (f *Flock) All() iter.Seq[BoidView] {
	return func(yield func(BoidView) bool) {
		for i := range f.index.All() {
			if !yield(f.boids[i].View()) {
				return
			}
		}
	}
}

func (f *Flock) insert(i int) {
	if err := f.index.Insert(f.boids[i].Position, i); err != nil {
		// only a non-finite position gets here, the callers clamp first
		f.logger.Errorf("flock: indexing agent %d: %v", i, err)
	}
}

// reindex rebuilds the index from current positions. Agents that drifted
// out of the boundary since the last border pass are pulled back onto it.
func (f *Flock) reindex() {
	f.index.Clear()
	drifted := 0
	for i := range f.boids {
		if !f.boundary.Contains(f.boids[i].Position) {
			f.boids[i].Position = f.boids[i].Position.Clamp(f.boundary)
			drifted++
		}
		f.insert(i)
	}
	if drifted > 0 {
		f.logger.Debugf("flock: %d agents pulled back inside %s", drifted, f.boundary)
	}
}

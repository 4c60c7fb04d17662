// Package arena owns a single observer's simulation: its bolas, canvas bounds and
// the collision state carried from one tick to the next.
package arena

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	uuid "github.com/satori/go.uuid"

	"github.com/tomz197/bolas/internal/object"
	"github.com/tomz197/bolas/internal/physics"
)

// DefaultRefreshRate is the tick period used when Config leaves it unset.
const DefaultRefreshRate = 32 * time.Millisecond

// Config holds the construction-time settings of an Arena.
type Config struct {
	RefreshRate           time.Duration
	VelocityScalingFactor float64
	Algorithm             physics.Algorithm
	Metrics               Metrics
	Logger                *log.Logger
}

// Arena is not safe for concurrent use. A Session gives it a single owning goroutine.
type Arena struct {
	id             string
	bolas          []object.Bola
	screen         object.Screen
	scaling        float64
	refreshRate    time.Duration
	detector       physics.Detector
	lastCollisions physics.CollisionSet
	ticks          uint64
	closed         bool

	metrics Metrics
	logger  *log.Logger
}

// Snapshot is the outward view of an Arena after a tick. Velocities are not exposed.
type Snapshot struct {
	Arena   string
	Tick    uint64
	Centers []object.Point
}

// New creates an Arena with a fresh id and reports it to cfg.Metrics.
func New(cfg Config) *Arena {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = DefaultRefreshRate
	}
	if cfg.VelocityScalingFactor <= 0 {
		cfg.VelocityScalingFactor = 1
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	id := uuid.NewV4().String()
	a := &Arena{
		id:             id,
		scaling:        cfg.VelocityScalingFactor,
		refreshRate:    cfg.RefreshRate,
		detector:       physics.NewDetector(cfg.Algorithm),
		lastCollisions: make(physics.CollisionSet),
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With("arena", id),
	}

	a.metrics.ArenaCreated()
	a.logger.Info("arena created", "algorithm", cfg.Algorithm, "refresh", a.refreshRate, "scaling", a.scaling)
	return a
}

// ID returns the arena's unique identifier.
func (a *Arena) ID() string { return a.id }

// RefreshRate returns the tick period.
func (a *Arena) RefreshRate() time.Duration { return a.refreshRate }

// Len returns the number of bolas.
func (a *Arena) Len() int { return len(a.bolas) }

// Screen returns the canvas dimensions last reported by the observer.
func (a *Arena) Screen() object.Screen { return a.screen }

// SetCanvasDimensions updates the walls bolas reflect off.
func (a *Arena) SetCanvasDimensions(height, width int) {
	a.screen = object.Screen{Width: width, Height: height}
	a.logger.Debug("canvas dimensions set", "height", height, "width", width)
}

// AddBola appends b, dividing its velocity by the velocity scaling factor.
func (a *Arena) AddBola(b object.Bola) {
	b.Velocity = b.Velocity.Scale(a.scaling)
	a.bolas = append(a.bolas, b)
	a.metrics.BolaAdded()
	a.logger.Debug("bola added", "index", len(a.bolas)-1, "x", b.Center.X, "y", b.Center.Y)
}

// Tick advances the simulation by one step: integrate, detect, then resolve every pair
// that was not already colliding on the previous tick.
func (a *Arena) Tick() {
	for i := range a.bolas {
		a.bolas[i].UpdatePosition(a.screen.Height, a.screen.Width)
	}

	current := a.detector.Detect(a.bolas)
	resolved := 0
	for _, c := range current.Sorted() {
		if a.lastCollisions.Contains(c.One, c.Two) {
			continue
		}
		v1, v2, ok := physics.Resolve(a.bolas[c.One], a.bolas[c.Two])
		if !ok {
			a.logger.Debug("skipping collision without normal", "one", c.One, "two", c.Two)
			continue
		}
		a.bolas[c.One].Velocity = v1
		a.bolas[c.Two].Velocity = v2
		resolved++
		a.logger.Debug("collision resolved", "one", c.One, "two", c.Two)
	}

	a.lastCollisions = current
	a.ticks++
	if resolved > 0 {
		a.metrics.CollisionsResolved(resolved)
	}
}

// Centers returns a copy of every bola's position in insertion order.
func (a *Arena) Centers() []object.Point {
	centers := make([]object.Point, len(a.bolas))
	for i, b := range a.bolas {
		centers[i] = b.Center
	}
	return centers
}

// Bolas returns a copy of the bolas in insertion order.
func (a *Arena) Bolas() []object.Bola {
	out := make([]object.Bola, len(a.bolas))
	copy(out, a.bolas)
	return out
}

// LastCollisions returns the pairs detected on the most recent tick.
func (a *Arena) LastCollisions() physics.CollisionSet {
	out := make(physics.CollisionSet, len(a.lastCollisions))
	for c := range a.lastCollisions {
		out[c] = struct{}{}
	}
	return out
}

// Snapshot captures the current positions for publishing.
func (a *Arena) Snapshot() Snapshot {
	return Snapshot{Arena: a.id, Tick: a.ticks, Centers: a.Centers()}
}

// Close releases the arena's share of the lifecycle metrics. Calling it again does nothing.
func (a *Arena) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.metrics.BolasRemoved(len(a.bolas))
	a.metrics.ArenaClosed()
	a.logger.Info("arena closed", "bolas", len(a.bolas), "ticks", a.ticks)
}

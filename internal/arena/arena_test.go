package arena

import (
	"testing"
	"time"

	"github.com/tomz197/bolas/internal/object"
	"github.com/tomz197/bolas/internal/physics"
)

type fakeMetrics struct {
	created int
	closed  int
	added   int
	removed int
	hit     int
}

func (m *fakeMetrics) ArenaCreated()            { m.created++ }
func (m *fakeMetrics) ArenaClosed()             { m.closed++ }
func (m *fakeMetrics) BolaAdded()               { m.added++ }
func (m *fakeMetrics) BolasRemoved(n int)       { m.removed += n }
func (m *fakeMetrics) CollisionsResolved(n int) { m.hit += n }

func newTestArena(t *testing.T, algorithm physics.Algorithm, scaling float64) *Arena {
	t.Helper()
	a := New(Config{
		RefreshRate:           time.Millisecond,
		VelocityScalingFactor: scaling,
		Algorithm:             algorithm,
	})
	t.Cleanup(a.Close)
	return a
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(Config{})
	defer a.Close()

	if a.RefreshRate() != DefaultRefreshRate {
		t.Fatalf("refresh rate = %v, want %v", a.RefreshRate(), DefaultRefreshRate)
	}
	if a.ID() == "" {
		t.Fatalf("arena has no id")
	}
	if b := New(Config{}); b.ID() == a.ID() {
		t.Fatalf("two arenas share id %q", a.ID())
	}
	if _, ok := a.detector.(physics.IntervalTreeDetector); !ok {
		t.Fatalf("default detector is %T, want IntervalTreeDetector", a.detector)
	}
}

func TestAddBolaScalesVelocity(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 8)
	a.AddBola(object.Bola{Center: object.Point{X: 1, Y: 2}, Velocity: object.Velocity{VX: 160}})

	got := a.Bolas()[0].Velocity
	if got.VX != 20 || got.VY != 0 {
		t.Fatalf("velocity = %+v, want {20 0}", got)
	}
}

func TestNonPositiveScalingFactorIsIgnored(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 0)
	a.AddBola(object.Bola{Velocity: object.Velocity{VX: 3, VY: -4}})

	if got := a.Bolas()[0].Velocity; got.VX != 3 || got.VY != -4 {
		t.Fatalf("velocity = %+v, want unchanged {3 -4}", got)
	}
}

func TestTickWithoutDimensionsDoesNotClampUpperWalls(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 1)
	a.AddBola(object.Bola{Center: object.Point{X: 10, Y: 10}, Velocity: object.Velocity{VX: 100, VY: 50}})
	a.Tick()

	if got := a.Centers()[0]; got.X != 110 || got.Y != 60 {
		t.Fatalf("center = %+v, want {110 60}", got)
	}

	a.SetCanvasDimensions(100, 100)
	a.Tick()
	// One reflection per axis: 210 folds back to -10 and stays outside until the next tick.
	if got := a.Centers()[0]; got.X != -10 || got.Y != 90 {
		t.Fatalf("center after dimensions = %+v, want {-10 90}", got)
	}
}

func TestCollisionIsDebounced(t *testing.T) {
	for _, alg := range []physics.Algorithm{physics.AlgorithmIntervalTrees, physics.AlgorithmDistance, physics.AlgorithmGrid} {
		t.Run(alg.String(), func(t *testing.T) {
			a := newTestArena(t, alg, 8)
			a.SetCanvasDimensions(1000, 1000)
			a.AddBola(object.Bola{Center: object.Point{X: 100, Y: 100}, Velocity: object.Velocity{VX: 8}})
			a.AddBola(object.Bola{Center: object.Point{X: 110, Y: 100}})

			// Tick T: the pair is new, so velocities are exchanged.
			a.Tick()
			bolas := a.Bolas()
			if bolas[0].Velocity != (object.Velocity{}) || bolas[1].Velocity != (object.Velocity{VX: 1}) {
				t.Fatalf("after first contact: %+v %+v", bolas[0].Velocity, bolas[1].Velocity)
			}
			if !a.LastCollisions().Contains(1, 0) {
				t.Fatalf("last collisions = %v, want (0,1)", a.LastCollisions().Sorted())
			}

			// Tick T+1: still overlapping, no second impulse.
			a.Tick()
			bolas = a.Bolas()
			if bolas[0].Velocity != (object.Velocity{}) || bolas[1].Velocity != (object.Velocity{VX: 1}) {
				t.Fatalf("debounced tick changed velocities: %+v %+v", bolas[0].Velocity, bolas[1].Velocity)
			}

			// Let them drift apart until the pair is forgotten.
			for i := 0; i < 100 && len(a.LastCollisions()) > 0; i++ {
				a.Tick()
			}
			if len(a.LastCollisions()) != 0 {
				t.Fatalf("bolas never separated")
			}

			// Send the second bola back; the impulse must fire again.
			a.bolas[1] = object.Bola{Center: object.Point{X: 130, Y: 100}, Velocity: object.Velocity{VX: -2}}
			a.Tick()
			bolas = a.Bolas()
			if bolas[0].Velocity != (object.Velocity{VX: -2}) || bolas[1].Velocity != (object.Velocity{}) {
				t.Fatalf("re-collision not resolved: %+v %+v", bolas[0].Velocity, bolas[1].Velocity)
			}
		})
	}
}

func TestLastCollisionsAreReplaced(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 1)
	a.AddBola(object.Bola{Center: object.Point{X: 100, Y: 100}})
	a.AddBola(object.Bola{Center: object.Point{X: 120, Y: 100}})
	a.Tick()
	if len(a.LastCollisions()) != 1 {
		t.Fatalf("want one collision, got %v", a.LastCollisions().Sorted())
	}

	a.bolas[1].Center = object.Point{X: 500, Y: 500}
	a.Tick()
	if len(a.LastCollisions()) != 0 {
		t.Fatalf("stale pair kept: %v", a.LastCollisions().Sorted())
	}
}

func TestCoincidentBolasKeepVelocities(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmIntervalTrees, 1)
	a.SetCanvasDimensions(600, 800)
	a.AddBola(object.Bola{Center: object.Point{X: 50, Y: 50}, Velocity: object.Velocity{VX: 1}})
	a.AddBola(object.Bola{Center: object.Point{X: 50, Y: 50}, Velocity: object.Velocity{VX: 1}})
	a.Tick()

	for i, b := range a.Bolas() {
		if b.Velocity != (object.Velocity{VX: 1}) {
			t.Fatalf("bola %d velocity = %+v, want {1 0}", i, b.Velocity)
		}
	}
	if !a.LastCollisions().Contains(0, 1) {
		t.Fatalf("coincident pair should still be recorded")
	}
}

func TestStrategiesProduceSameSimulation(t *testing.T) {
	// Rows 100 apart, each with two bolas heading for each other. Integer
	// positions and velocities keep the rounded interval spans exact.
	run := func(alg physics.Algorithm) []object.Bola {
		a := newTestArena(t, alg, 1)
		a.SetCanvasDimensions(700, 900)
		for row := 0; row < 6; row++ {
			y := float64(50 + row*100)
			a.AddBola(object.Bola{Center: object.Point{X: float64(100 + row*10), Y: y}, Velocity: object.Velocity{VX: float64(3 + row)}})
			a.AddBola(object.Bola{Center: object.Point{X: 700, Y: y}, Velocity: object.Velocity{VX: -float64(2 + row%3)}})
		}
		for i := 0; i < 500; i++ {
			a.Tick()
		}
		return a.Bolas()
	}

	want := run(physics.AlgorithmDistance)
	for _, alg := range []physics.Algorithm{physics.AlgorithmIntervalTrees, physics.AlgorithmGrid} {
		got := run(alg)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: bola %d = %+v, distance gave %+v", alg, i, got[i], want[i])
			}
		}
	}
}

func TestMetricsLifecycle(t *testing.T) {
	m := &fakeMetrics{}
	a := New(Config{Metrics: m})
	a.AddBola(object.Bola{Center: object.Point{X: 10, Y: 10}})
	a.AddBola(object.Bola{Center: object.Point{X: 20, Y: 10}, Velocity: object.Velocity{VX: -1}})
	a.AddBola(object.Bola{Center: object.Point{X: 400, Y: 400}})
	a.Tick()

	a.Close()
	a.Close()

	if m.created != 1 || m.closed != 1 {
		t.Fatalf("created=%d closed=%d, want 1 and 1", m.created, m.closed)
	}
	if m.added != 3 || m.removed != 3 {
		t.Fatalf("added=%d removed=%d, want 3 and 3", m.added, m.removed)
	}
	if m.hit != 1 {
		t.Fatalf("collisions resolved = %d, want 1", m.hit)
	}
}

func TestApplyDispatchesEvents(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 2)
	a.Apply(SetCanvasDimensions{Height: 300, Width: 400})
	a.Apply(NewBola{Center: object.Point{X: 5, Y: 6}, Velocity: object.Velocity{VX: 4, VY: 2}})

	if s := a.Screen(); s.Height != 300 || s.Width != 400 {
		t.Fatalf("screen = %+v, want 400x300", s)
	}
	if a.Len() != 1 {
		t.Fatalf("len = %d, want 1", a.Len())
	}
	if got := a.Bolas()[0]; got.Center != (object.Point{X: 5, Y: 6}) || got.Velocity != (object.Velocity{VX: 2, VY: 1}) {
		t.Fatalf("bola = %+v", got)
	}
}

func TestSnapshotCopiesCenters(t *testing.T) {
	a := newTestArena(t, physics.AlgorithmDistance, 1)
	a.AddBola(object.Bola{Center: object.Point{X: 1, Y: 1}, Velocity: object.Velocity{VX: 1}})
	a.Tick()

	s := a.Snapshot()
	if s.Arena != a.ID() || s.Tick != 1 || len(s.Centers) != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
	s.Centers[0].X = 99
	if a.Centers()[0].X != 2 {
		t.Fatalf("snapshot shares memory with the arena")
	}
}

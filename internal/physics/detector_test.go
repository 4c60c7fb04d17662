package physics

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tomz197/bolas/internal/object"
)

func bolasAt(points ...object.Point) []object.Bola {
	out := make([]object.Bola, len(points))
	for i, p := range points {
		out[i] = object.Bola{Center: p}
	}
	return out
}

func allDetectors() map[Algorithm]Detector {
	return map[Algorithm]Detector{
		AlgorithmIntervalTrees: NewDetector(AlgorithmIntervalTrees),
		AlgorithmDistance:      NewDetector(AlgorithmDistance),
		AlgorithmGrid:          NewDetector(AlgorithmGrid),
	}
}

func sameSet(a, b CollisionSet) bool {
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if _, ok := b[c]; !ok {
			return false
		}
	}
	return true
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"", AlgorithmIntervalTrees},
		{"interval_trees", AlgorithmIntervalTrees},
		{"IntervalTrees", AlgorithmIntervalTrees},
		{"interval-trees", AlgorithmIntervalTrees},
		{"Distance", AlgorithmDistance},
		{" grid ", AlgorithmGrid},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseAlgorithm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseAlgorithm("quadtree"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("ParseAlgorithm(quadtree) err = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestNewDetectorSelectsImplementation(t *testing.T) {
	if _, ok := NewDetector(AlgorithmDistance).(DistanceDetector); !ok {
		t.Fatalf("distance algorithm should build a DistanceDetector")
	}
	if _, ok := NewDetector(AlgorithmGrid).(*GridDetector); !ok {
		t.Fatalf("grid algorithm should build a *GridDetector")
	}
	if _, ok := NewDetector(AlgorithmIntervalTrees).(IntervalTreeDetector); !ok {
		t.Fatalf("interval tree algorithm should build an IntervalTreeDetector")
	}
	if _, ok := NewDetector("").(IntervalTreeDetector); !ok {
		t.Fatalf("empty algorithm should fall back to the interval tree detector")
	}
}

func TestDetectorsFindOverlappingPairs(t *testing.T) {
	bolas := bolasAt(
		object.Point{X: 100, Y: 100},
		object.Point{X: 130, Y: 100}, // 30 from #0
		object.Point{X: 400, Y: 400},
		object.Point{X: 400, Y: 439}, // 39 from #2
		object.Point{X: 700, Y: 100},
		object.Point{X: 740, Y: 100}, // exactly 40 from #4, not touching
	)

	for name, d := range allDetectors() {
		t.Run(string(name), func(t *testing.T) {
			got := d.Detect(bolas)
			if len(got) != 2 {
				t.Fatalf("got %d collisions (%v), want 2", len(got), got.Sorted())
			}
			if !got.Contains(0, 1) || !got.Contains(2, 3) {
				t.Fatalf("missing expected pairs, got %v", got.Sorted())
			}
			for c := range got {
				if c.One >= c.Two {
					t.Fatalf("collision %+v is not canonical", c)
				}
			}
		})
	}
}

func TestDetectorsFlagCoincidentCenters(t *testing.T) {
	bolas := bolasAt(object.Point{X: 50, Y: 50}, object.Point{X: 50, Y: 50}, object.Point{X: 50, Y: 50})
	for name, d := range allDetectors() {
		got := d.Detect(bolas)
		if len(got) != 3 {
			t.Fatalf("%s: got %v, want all three pairs", name, got.Sorted())
		}
	}
}

func TestDetectorsHandleEmptyAndSingle(t *testing.T) {
	for name, d := range allDetectors() {
		if got := d.Detect(nil); len(got) != 0 {
			t.Fatalf("%s: nil input produced %v", name, got.Sorted())
		}
		if got := d.Detect(bolasAt(object.Point{X: 1, Y: 1})); len(got) != 0 {
			t.Fatalf("%s: single bola produced %v", name, got.Sorted())
		}
	}
}

func TestIntervalTreesReportBoundingBoxOverlap(t *testing.T) {
	// 30 apart on both axes: boxes overlap, circles are 42.4 apart.
	bolas := bolasAt(object.Point{X: 100, Y: 100}, object.Point{X: 130, Y: 130})

	if got := (DistanceDetector{}).Detect(bolas); len(got) != 0 {
		t.Fatalf("distance detector reported %v for a diagonal near-miss", got.Sorted())
	}
	if got := (IntervalTreeDetector{}).Detect(bolas); !got.Contains(0, 1) {
		t.Fatalf("interval trees should report the bounding-box overlap, got %v", got.Sorted())
	}
}

func TestIntervalTreesRoundCenters(t *testing.T) {
	// round(139.6) = 140, so the spans [80,120) and [120,160) only touch.
	bolas := bolasAt(object.Point{X: 100, Y: 100}, object.Point{X: 139.6, Y: 100})
	if got := (IntervalTreeDetector{}).Detect(bolas); len(got) != 0 {
		t.Fatalf("got %v, want no collision after rounding", got.Sorted())
	}

	bolas = bolasAt(object.Point{X: 100, Y: 100}, object.Point{X: 139.4, Y: 100})
	if got := (IntervalTreeDetector{}).Detect(bolas); !got.Contains(0, 1) {
		t.Fatalf("got %v, want (0,1)", got.Sorted())
	}
}

func TestDetectorsAgreeOnWellSeparatedBolas(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 20; round++ {
		var points []object.Point
		// Lattice cells far apart; some cells hold a pair aligned on one axis.
		for gx := 0; gx < 8; gx++ {
			for gy := 0; gy < 8; gy++ {
				base := object.Point{X: float64(gx*150 + 50), Y: float64(gy*150 + 50)}
				points = append(points, base)
				switch rng.IntN(3) {
				case 0:
					points = append(points, object.Point{X: base.X + float64(rng.IntN(60)), Y: base.Y})
				case 1:
					points = append(points, object.Point{X: base.X, Y: base.Y + float64(rng.IntN(60))})
				}
			}
		}
		rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })
		bolas := bolasAt(points...)

		want := DistanceDetector{}.Detect(bolas)
		for name, d := range allDetectors() {
			if got := d.Detect(bolas); !sameSet(got, want) {
				t.Fatalf("round %d: %s reported %v, distance reported %v", round, name, got.Sorted(), want.Sorted())
			}
		}
	}
}

func TestGridMatchesDistanceOnDenseRandomBolas(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	grid := NewGridDetector()

	for round := 0; round < 20; round++ {
		bolas := make([]object.Bola, 200)
		for i := range bolas {
			bolas[i].Center = object.Point{X: rng.Float64() * 800, Y: rng.Float64() * 600}
		}
		want := DistanceDetector{}.Detect(bolas)
		if got := grid.Detect(bolas); !sameSet(got, want) {
			t.Fatalf("round %d: grid found %d pairs, distance found %d", round, len(got), len(want))
		}
	}
}

func TestGridHandlesFarApartBolas(t *testing.T) {
	bolas := bolasAt(
		object.Point{X: -1e12, Y: 0},
		object.Point{X: -1e12 + 10, Y: 0},
		object.Point{X: 1e12, Y: 1e12},
	)
	got := NewGridDetector().Detect(bolas)
	if len(got) != 1 || !got.Contains(0, 1) {
		t.Fatalf("got %v, want only (0,1)", got.Sorted())
	}
}

func TestDetectorsIgnoreNonFiniteCenters(t *testing.T) {
	bolas := bolasAt(
		object.Point{X: math.NaN(), Y: 10},
		object.Point{X: 10, Y: 10},
		object.Point{X: math.Inf(1), Y: math.Inf(-1)},
		object.Point{X: 15, Y: 10},
		object.Point{X: 1e300, Y: -1e300},
	)
	for name, d := range allDetectors() {
		got := d.Detect(bolas)
		if len(got) != 1 || !got.Contains(1, 3) {
			t.Fatalf("%s: got %v, want only (1,3)", name, got.Sorted())
		}
	}
}

func TestSpatialGridQueryAround(t *testing.T) {
	g := NewSpatialGrid(0, 0, 400, 400, 40)
	g.Insert(10, 10, 0)
	g.Insert(70, 10, 1)   // neighbouring cell
	g.Insert(300, 300, 2) // far away

	var found []int
	g.QueryAround(20, 20, func(i int) bool {
		found = append(found, i)
		return false
	})
	if len(found) != 2 {
		t.Fatalf("found %v, want indexes 0 and 1", found)
	}

	calls := 0
	g.QueryAround(20, 20, func(int) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Fatalf("early stop made %d calls, want 1", calls)
	}

	g.Clear()
	g.QueryAround(20, 20, func(int) bool {
		t.Fatalf("cleared grid returned an item")
		return false
	})
}

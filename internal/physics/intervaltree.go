package physics

import (
	"github.com/biogo/store/interval"

	"github.com/tomz197/bolas/internal/object"
)

// IntervalTreeDetector reports bolas whose bounding boxes overlap on both axes.
//
// Each bola is queried against per-axis interval trees holding the bolas processed
// before it this tick, then inserted, so every pair is found once, at the later index.
// Overlapping boxes do not imply overlapping circles: two bolas near each other on a
// diagonal can be reported while DistanceDetector would not report them.
type IntervalTreeDetector struct{}

// axisInterval is a half-open [start, end) span of one bola on one axis.
type axisInterval struct {
	start, end int
	id         uintptr
}

func (i axisInterval) Overlap(b interval.IntRange) bool {
	return i.end > b.Start && i.start < b.End
}

func (i axisInterval) ID() uintptr { return i.id }

func (i axisInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// boundingIntervals returns the x and y spans covered by the bola at index i.
func boundingIntervals(c object.Point, i int) (x, y axisInterval) {
	cx, cy := roundCoord(c.X), roundCoord(c.Y)
	x = axisInterval{start: cx - CollisionRadius, end: cx + CollisionRadius, id: uintptr(i)}
	y = axisInterval{start: cy - CollisionRadius, end: cy + CollisionRadius, id: uintptr(i)}
	return x, y
}

// Detect implements Detector.
func (IntervalTreeDetector) Detect(bolas []object.Bola) CollisionSet {
	collisions := make(CollisionSet)
	var overlapsX, overlapsY interval.IntTree

	for i, b := range bolas {
		if !b.Center.Finite() {
			continue
		}
		xr, yr := boundingIntervals(b.Center, i)

		if hitsX := overlapsX.Get(xr); len(hitsX) > 0 {
			onX := make(map[uintptr]struct{}, len(hitsX))
			for _, h := range hitsX {
				onX[h.ID()] = struct{}{}
			}
			for _, h := range overlapsY.Get(yr) {
				if _, ok := onX[h.ID()]; ok {
					collisions.Add(int(h.ID()), i)
				}
			}
		}

		// Spans are never inverted, so Insert cannot fail.
		_ = overlapsX.Insert(xr, false)
		_ = overlapsY.Insert(yr, false)
	}
	return collisions
}

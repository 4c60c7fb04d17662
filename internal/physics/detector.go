package physics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tomz197/bolas/internal/object"
)

// ErrUnknownAlgorithm is returned when a collision detection algorithm name is not recognised.
var ErrUnknownAlgorithm = errors.New("unknown collision detection algorithm")

// Detector finds the overlapping bolas for the current tick.
// Indexes in the returned set refer to positions in the bolas slice.
type Detector interface {
	Detect(bolas []object.Bola) CollisionSet
}

// Algorithm selects a Detector implementation.
type Algorithm string

const (
	// AlgorithmIntervalTrees approximates bolas by their bounding boxes, indexed per axis.
	AlgorithmIntervalTrees Algorithm = "interval_trees"
	// AlgorithmDistance compares every pair of bolas.
	AlgorithmDistance Algorithm = "distance"
	// AlgorithmGrid buckets bolas into a uniform grid and compares neighbours.
	AlgorithmGrid Algorithm = "grid"
)

// DefaultAlgorithm is used when none is configured.
const DefaultAlgorithm = AlgorithmIntervalTrees

// ParseAlgorithm converts a configuration value into an Algorithm.
// Matching is case-insensitive and accepts "-" in place of "_".
func ParseAlgorithm(s string) (Algorithm, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Algorithm(name) {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmIntervalTrees, "intervaltrees":
		return AlgorithmIntervalTrees, nil
	case AlgorithmDistance:
		return AlgorithmDistance, nil
	case AlgorithmGrid:
		return AlgorithmGrid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	return string(a)
}

// NewDetector returns the detector for the given algorithm, falling back to the default.
func NewDetector(a Algorithm) Detector {
	switch a {
	case AlgorithmDistance:
		return DistanceDetector{}
	case AlgorithmGrid:
		return NewGridDetector()
	default:
		return IntervalTreeDetector{}
	}
}

// maxCoord bounds coordinates before integer conversion so huge values cannot overflow.
const maxCoord = 1 << 40

// roundCoord rounds v half away from zero, clamped to ±maxCoord.
func roundCoord(v float64) int {
	return int(math.Round(math.Max(-maxCoord, math.Min(maxCoord, v))))
}

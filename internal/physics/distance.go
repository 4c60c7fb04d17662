package physics

import "github.com/tomz197/bolas/internal/object"

// DistanceDetector compares the center distance of every pair of bolas.
// It is exact and O(n²).
type DistanceDetector struct{}

// Detect implements Detector.
func (DistanceDetector) Detect(bolas []object.Bola) CollisionSet {
	collisions := make(CollisionSet)
	for i := range bolas {
		one := bolas[i].Center
		for j := i + 1; j < len(bolas); j++ {
			two := bolas[j].Center
			if Overlapping(one, two) {
				collisions.Add(i, j)
			}
		}
	}
	return collisions
}

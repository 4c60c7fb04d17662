// Package physics provides collision detection and resolution for bolas.
package physics

import (
	"math"

	"github.com/tomz197/bolas/internal/object"
)

// CollisionRadius is the radius every bola is given when testing for overlap,
// independent of how large it is drawn.
const CollisionRadius = 20

// collisionDistance is the center-to-center distance below which two bolas overlap.
const collisionDistance = 2 * CollisionRadius

// Distance returns the Euclidean distance between two centers.
// It is NaN or infinite when either point is not finite.
func Distance(a, b object.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Overlapping reports whether bolas centered at a and b collide.
// Non-finite centers never do.
func Overlapping(a, b object.Point) bool {
	return Distance(a, b) < collisionDistance
}

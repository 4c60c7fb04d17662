package physics

import (
	"math"

	"github.com/tomz197/bolas/internal/object"
)

// Resolve computes the velocities of two colliding bolas after an equal-mass elastic
// collision along the line joining their centers. The tangential components are kept.
//
// ok is false when the centers coincide (or are not finite), in which case there is
// no collision normal and the input velocities are returned unchanged.
func Resolve(one, two object.Bola) (v1, v2 object.Velocity, ok bool) {
	dist := Distance(one.Center, two.Center)
	if dist == 0 || math.IsNaN(dist) || math.IsInf(dist, 0) {
		return one.Velocity, two.Velocity, false
	}

	// Collision normal, pointing from two to one
	nx := (one.Center.X - two.Center.X) / dist
	ny := (one.Center.Y - two.Center.Y) / dist

	// Relative velocity along the normal
	dvx := one.Velocity.VX - two.Velocity.VX
	dvy := one.Velocity.VY - two.Velocity.VY
	speed := dvx*nx + dvy*ny

	v1 = object.Velocity{VX: one.Velocity.VX - nx*speed, VY: one.Velocity.VY - ny*speed}
	v2 = object.Velocity{VX: two.Velocity.VX + nx*speed, VY: two.Velocity.VY + ny*speed}
	return v1, v2, true
}

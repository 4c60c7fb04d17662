// Package object defines the passive simulation entities: points, velocities and bolas.
package object

import "math"

// Point is an absolute position in canvas coordinates.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Velocity is a signed displacement applied once per tick.
type Velocity struct {
	VX float64 `json:"vel_x" msgpack:"vel_x"`
	VY float64 `json:"vel_y" msgpack:"vel_y"`
}

// Scale divides both components by factor. A non-positive factor leaves the velocity untouched.
func (v Velocity) Scale(factor float64) Velocity {
	if factor <= 0 {
		return v
	}
	return Velocity{VX: v.VX / factor, VY: v.VY / factor}
}

// Screen holds the canvas dimensions an arena integrates against.
// A non-positive extent means the client has not reported that dimension yet.
type Screen struct {
	Width  int
	Height int
}

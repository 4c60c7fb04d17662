package object

// Bola is a circular particle bouncing around an arena.
type Bola struct {
	Center   Point    `json:"c" msgpack:"c"`
	Velocity Velocity `json:"v" msgpack:"v"`
}

// UpdatePosition advances the bola by its velocity and reflects it off the canvas walls.
//
// Each axis is handled independently, X first, and reflects at most once per tick. A bola
// moving faster than the canvas is wide can therefore end a tick outside the canvas; the
// next tick pulls it back. The upper wall of an axis only exists once its extent is positive.
func (b *Bola) UpdatePosition(canvasHeight, canvasWidth int) {
	b.Center.X, b.Velocity.VX = reflect(b.Center.X+b.Velocity.VX, b.Velocity.VX, float64(canvasWidth))
	b.Center.Y, b.Velocity.VY = reflect(b.Center.Y+b.Velocity.VY, b.Velocity.VY, float64(canvasHeight))
}

// reflect mirrors a tentative coordinate back inside [0, extent], flipping the velocity on a bounce.
func reflect(pos, vel, extent float64) (float64, float64) {
	if pos < 0 {
		pos = -pos
		vel = -vel
	}
	if extent > 0 && pos > extent {
		pos = extent - (pos - extent)
		vel = -vel
	}
	return pos, vel
}

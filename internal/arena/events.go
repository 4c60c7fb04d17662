package arena

import (
	"fmt"

	"github.com/tomz197/bolas/internal/object"
)

// Event is an inbound client request applied to an Arena between ticks.
type Event interface {
	event()
}

// SetCanvasDimensions reports the observer's canvas size.
type SetCanvasDimensions struct {
	Height int
	Width  int
}

// NewBola launches a bola. Velocity is the raw client vector, scaled on insertion.
type NewBola struct {
	Center   object.Point
	Velocity object.Velocity
}

func (SetCanvasDimensions) event() {}
func (NewBola) event()             {}

// Apply dispatches an inbound event to the matching Arena operation.
func (a *Arena) Apply(e Event) {
	switch ev := e.(type) {
	case SetCanvasDimensions:
		a.SetCanvasDimensions(ev.Height, ev.Width)
	case NewBola:
		a.AddBola(object.Bola{Center: ev.Center, Velocity: ev.Velocity})
	default:
		a.logger.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", e))
	}
}

package protocol

import (
	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/object"
)

// State is the message sent to the observer after every tick.
type State struct {
	Bolas []BolaState `json:"bolas" msgpack:"bolas"`
}

// BolaState is the public view of one bola: its center only.
type BolaState struct {
	C object.Point `json:"c" msgpack:"c"`
}

// NewState converts an arena snapshot into its wire form. The bolas list is never null.
func NewState(s arena.Snapshot) State {
	bolas := make([]BolaState, len(s.Centers))
	for i, c := range s.Centers {
		bolas[i] = BolaState{C: c}
	}
	return State{Bolas: bolas}
}

// Package protocol defines the messages exchanged with a bolas observer.
//
// Client messages are JSON objects with exactly one key naming the variant:
//
//	{"SetCanvasDimensions":{"height":600,"width":800}}
//	{"NewBola":{"c":{"x":10,"y":20},"v":{"vel_x":-3,"vel_y":4}}}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/object"
)

// ErrUnknownMessage is returned for well-formed JSON that is not a known client message.
var ErrUnknownMessage = errors.New("unknown client message")

// Message variant tags.
const (
	TagSetCanvasDimensions = "SetCanvasDimensions"
	TagNewBola             = "NewBola"
)

type canvasDimensions struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// DecodeClientMessage parses one client text frame into an arena event.
func DecodeClientMessage(data []byte) (arena.Event, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("decode client message: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("%w: expected one variant, got %d", ErrUnknownMessage, len(tagged))
	}

	var tag string
	var payload json.RawMessage
	for tag, payload = range tagged {
	}

	switch tag {
	case TagSetCanvasDimensions:
		var dims canvasDimensions
		if err := decodePayload(payload, &dims); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return arena.SetCanvasDimensions{Height: dims.Height, Width: dims.Width}, nil
	case TagNewBola:
		var b object.Bola
		if err := decodePayload(payload, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return arena.NewBola{Center: b.Center, Velocity: b.Velocity}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, tag)
}

// decodePayload rejects a null payload, which json.Unmarshal would otherwise accept as a no-op.
func decodePayload(payload json.RawMessage, v any) error {
	if string(payload) == "null" {
		return errors.New("missing payload")
	}
	return json.Unmarshal(payload, v)
}

// EncodeClientMessage is the inverse of DecodeClientMessage, for Go clients.
func EncodeClientMessage(e arena.Event) ([]byte, error) {
	switch ev := e.(type) {
	case arena.SetCanvasDimensions:
		return json.Marshal(map[string]canvasDimensions{
			TagSetCanvasDimensions: {Height: ev.Height, Width: ev.Width},
		})
	case arena.NewBola:
		return json.Marshal(map[string]object.Bola{
			TagNewBola: {Center: ev.Center, Velocity: ev.Velocity},
		})
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, e)
}

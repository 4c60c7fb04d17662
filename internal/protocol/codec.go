package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes outbound state.
type Codec interface {
	Name() string
	// Binary reports whether encoded frames must be sent as binary websocket messages.
	Binary() bool
	Encode(State) ([]byte, error)
}

// Codec names accepted by CodecByName.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(s State) ([]byte, error) {
	return json.Marshal(s)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgpack }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(s State) ([]byte, error) {
	return msgpack.Marshal(s)
}

// JSON is the default codec, matching what the browser client expects.
var JSON Codec = jsonCodec{}

// Msgpack encodes state as MessagePack using the same field names as JSON.
var Msgpack Codec = msgpackCodec{}

// CodecByName looks up a codec. An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSON, nil
	case CodecMsgpack, "messagepack":
		return Msgpack, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

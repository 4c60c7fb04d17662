package input

import (
	"bufio"
	"io"
)

// Key is a decoded key press.
type Key int

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeyUp
	KeyDown
	KeySpace
	KeyEnter
	KeyEscape
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeySpace:
		return "space"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Input is everything typed since the previous Read.
type Input struct {
	// Keys in the order they were typed.
	Keys []Key
	// Closed is true once the reader returned an error (EOF, closed session).
	Closed  bool
	Pressed []byte
}

// Stream delivers input bytes via a channel so the frame loop never blocks on the reader.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains all available bytes from the stream without blocking and decodes them.
func (s *Stream) Read() Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return Input{Keys: Parse(buf), Closed: s.closed, Pressed: buf}
}

// Parse decodes raw terminal bytes into keys. Arrow keys arrive as ESC [ A..D;
// a lone ESC is the escape key. Unknown bytes are dropped.
func Parse(buf []byte) []Key {
	var keys []Key
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if k, ok := arrow(buf[i+2]); ok {
				keys = append(keys, k)
				i += 2
				continue
			}
		}
		if k, ok := byteKey(b); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func arrow(b byte) (Key, bool) {
	switch b {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return 0, false
}

func byteKey(b byte) (Key, bool) {
	switch b {
	case 'q', 'Q', '\x03':
		return KeyQuit, true
	case 'a', 'A', 'h', 'H':
		return KeyLeft, true
	case 'd', 'D', 'l', 'L':
		return KeyRight, true
	case 'w', 'W', 'k', 'K':
		return KeyUp, true
	case 's', 'S', 'j', 'J':
		return KeyDown, true
	case ' ':
		return KeySpace, true
	case '\n', '\r':
		return KeyEnter, true
	case '\x1b':
		return KeyEscape, true
	}
	return 0, false
}

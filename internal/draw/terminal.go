package draw

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// maxChunkSize keeps every write below a typical MTU so SSH frames stay small.
const maxChunkSize = 1400

// ChunkWriter collects one frame of terminal output and sends it on Flush in
// MTU-sized writes. Canvas.Render writes into it.
type ChunkWriter struct {
	out   io.Writer
	frame bytes.Buffer
	num   [20]byte
}

// NewChunkWriter returns a ChunkWriter flushing to w.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{out: w}
}

// MoveCursor appends a cursor position sequence. col and row are 1-based.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.frame.WriteString("\033[")
	cw.frame.Write(strconv.AppendInt(cw.num[:0], int64(row), 10))
	cw.frame.WriteByte(';')
	cw.frame.Write(strconv.AppendInt(cw.num[:0], int64(col), 10))
	cw.frame.WriteByte('H')
}

// Write appends p to the frame.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.frame.Write(p)
}

// WriteString appends s to the frame.
func (cw *ChunkWriter) WriteString(s string) {
	cw.frame.WriteString(s)
}

// WriteAt appends s at the 1-based position (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame.WriteString(s)
}

// Flush sends the pending frame and starts a new one. The frame is dropped on error.
func (cw *ChunkWriter) Flush() error {
	defer cw.frame.Reset()
	data := cw.frame.Bytes()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.out.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

var _ io.Writer = (*ChunkWriter)(nil)

// TermSizeFunc reports the terminal size in character cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of the process' own terminal.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen erases the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	io.WriteString(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	io.WriteString(w, "\033[?25h")
}

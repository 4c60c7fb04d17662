// Package observer runs an Arena in a terminal: bolas are drawn on a half-block
// canvas and launched with the keyboard. It serves both SSH sessions and the
// local terminal binary.
package observer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
	"github.com/tomz197/bolas/internal/draw"
	"github.com/tomz197/bolas/internal/input"
	"github.com/tomz197/bolas/internal/logging"
	"github.com/tomz197/bolas/internal/object"
	"github.com/tomz197/bolas/internal/physics"
)

// ErrIdle is returned by Run when the user did not press a key within the idle timeout.
var ErrIdle = errors.New("observer idle")

// errQuit ends the frame loop without an error.
var errQuit = errors.New("quit")

// Options configures an Observer.
type Options struct {
	Arena        arena.Config
	TermSizeFunc draw.TermSizeFunc
	// Renderer styles the status bar. Defaults to a renderer detected from the output writer.
	Renderer *lipgloss.Renderer
	// IdleTimeout disconnects a silent user; zero disables it. A warning is shown from IdleWarn on.
	IdleTimeout time.Duration
	IdleWarn    time.Duration
	Logger      *log.Logger
}

// Observer is one terminal user watching their own Arena.
type Observer struct {
	opts     Options
	w        io.Writer
	stream   *input.Stream
	canvas   *draw.Canvas
	cw       *draw.ChunkWriter
	status   lipgloss.Style
	logger   *log.Logger
	session  *arena.Session
	snapshot atomic.Pointer[arena.Snapshot]

	sized      bool
	termWidth  int
	termHeight int

	cursorCol, cursorRow int
	aiming               bool
	anchorCol, anchorRow int

	lastInput  time.Time
	idleNotice time.Duration // time left before disconnect; zero when not shown
}

// New creates an observer reading keys from r and drawing to w.
func New(r io.Reader, w io.Writer, opts Options) *Observer {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(w)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Arena.Logger == nil {
		opts.Arena.Logger = opts.Logger
	}

	return &Observer{
		opts:   opts,
		w:      w,
		stream: input.StartStream(r),
		canvas: draw.NewCanvas(0, 0, config.CellWidthUnits, config.CellHeightUnits/2),
		cw:     draw.NewChunkWriter(w),
		status: opts.Renderer.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		logger: opts.Logger,
	}
}

// Run creates the arena, starts its session and draws frames until the user quits,
// the input closes, the idle timeout passes or ctx is cancelled. The arena is closed
// before Run returns.
func (o *Observer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	a := arena.New(o.opts.Arena)
	defer a.Close()

	o.session = arena.NewSession(a, arena.PublisherFunc(o.publish), o.logger)
	errc := make(chan error, 1)
	go func() { errc <- o.session.Run(ctx) }()
	defer func() {
		cancel()
		<-o.session.Done()
	}()

	draw.HideCursor(o.w)
	defer draw.ShowCursor(o.w)
	draw.ClearScreen(o.w)

	o.lastInput = time.Now()
	ticker := time.NewTicker(config.ObserverTargetFrameTime)
	defer ticker.Stop()

	for {
		err := o.frame(ctx, time.Now())
		switch {
		case errors.Is(err, errQuit):
			draw.ClearScreen(o.w)
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case <-ticker.C:
		}
	}
}

func (o *Observer) publish(s arena.Snapshot) error {
	o.snapshot.Store(&s)
	return nil
}

// frame handles one frame: resize, input, idle check and drawing.
func (o *Observer) frame(ctx context.Context, now time.Time) error {
	if err := o.resize(ctx); err != nil {
		return err
	}

	in := o.stream.Read()
	if len(in.Pressed) > 0 {
		o.lastInput = now
	}
	for _, k := range in.Keys {
		if err := o.handleKey(ctx, k); err != nil {
			return err
		}
	}
	if in.Closed {
		return errQuit
	}
	if err := o.checkIdle(now); err != nil {
		return err
	}
	return o.drawFrame()
}

func (o *Observer) handleKey(ctx context.Context, k input.Key) error {
	switch k {
	case input.KeyLeft:
		o.moveCursor(-config.AimStep, 0)
	case input.KeyRight:
		o.moveCursor(config.AimStep, 0)
	case input.KeyUp:
		o.moveCursor(0, -config.AimStep)
	case input.KeyDown:
		o.moveCursor(0, config.AimStep)
	case input.KeySpace, input.KeyEnter:
		if !o.aiming {
			o.aiming = true
			o.anchorCol, o.anchorRow = o.cursorCol, o.cursorRow
			return nil
		}
		o.aiming = false
		return o.launch(ctx)
	case input.KeyEscape:
		o.aiming = false
	case input.KeyQuit:
		return errQuit
	}
	return nil
}

// launch submits a bola at the cursor moving away from the anchor, like releasing
// a drag in the browser client.
func (o *Observer) launch(ctx context.Context) error {
	at := cellCenter(o.cursorCol, o.cursorRow)
	e := arena.NewBola{
		Center:   at,
		Velocity: launchVelocity(cellCenter(o.anchorCol, o.anchorRow), at),
	}
	if err := o.session.Submit(ctx, e); err != nil {
		return fmt.Errorf("launch bola: %w", err)
	}
	return nil
}

func (o *Observer) moveCursor(dc, dr int) {
	o.cursorCol = clamp(o.cursorCol+dc, 0, o.canvas.Cols()-1)
	o.cursorRow = clamp(o.cursorRow+dr, 0, o.canvas.Rows()-1)
}

// resize follows the terminal size. The bottom row is reserved for the status bar.
func (o *Observer) resize(ctx context.Context) error {
	width, height, err := o.opts.TermSizeFunc()
	if err != nil {
		return nil
	}
	if o.sized && width == o.termWidth && height == o.termHeight {
		return nil
	}
	first := !o.sized
	o.sized = true
	o.termWidth, o.termHeight = width, height

	rows := max(height-1, 0)
	o.canvas.Resize(width, rows)
	o.canvas.ForceRedraw()
	draw.ClearScreen(o.cw)

	if first {
		o.cursorCol, o.cursorRow = width/2, rows/2
	}
	o.moveCursor(0, 0)

	e := arena.SetCanvasDimensions{
		Height: rows * config.CellHeightUnits,
		Width:  width * config.CellWidthUnits,
	}
	if err := o.session.Submit(ctx, e); err != nil {
		return fmt.Errorf("set canvas dimensions: %w", err)
	}
	return nil
}

func (o *Observer) checkIdle(now time.Time) error {
	o.idleNotice = 0
	if o.opts.IdleTimeout <= 0 {
		return nil
	}
	idle := now.Sub(o.lastInput)
	if idle >= o.opts.IdleTimeout {
		return ErrIdle
	}
	if o.opts.IdleWarn > 0 && idle >= o.opts.IdleWarn {
		o.idleNotice = o.opts.IdleTimeout - idle
	}
	return nil
}

// drawFrame renders the latest snapshot, the aim line, the cursor and the status bar.
func (o *Observer) drawFrame() error {
	o.canvas.Clear()

	var s arena.Snapshot
	if p := o.snapshot.Load(); p != nil {
		s = *p
	}
	for _, c := range s.Centers {
		o.canvas.FillCircle(c, physics.CollisionRadius)
	}
	if o.aiming {
		o.canvas.DrawLine(cellCenter(o.anchorCol, o.anchorRow), cellCenter(o.cursorCol, o.cursorRow))
	}
	o.canvas.Render(o.cw)

	if o.canvas.Cols() > 0 && o.canvas.Rows() > 0 {
		o.cw.WriteAt(o.cursorCol+1, o.cursorRow+1, "+")
		o.canvas.Invalidate(o.cursorCol, o.cursorRow)
	}

	if o.termWidth > 0 && o.termHeight > 0 {
		line := statusLine(len(s.Centers), s.Tick, o.aimVelocity(), o.idleNotice)
		bar := o.status.Width(o.termWidth).MaxWidth(o.termWidth).Inline(true).Render(line)
		o.cw.WriteAt(1, o.termHeight, bar)
	}

	return o.cw.Flush()
}

// aimVelocity is the velocity the next launch would get, or nil when not aiming.
func (o *Observer) aimVelocity() *object.Velocity {
	if !o.aiming {
		return nil
	}
	v := launchVelocity(cellCenter(o.anchorCol, o.anchorRow), cellCenter(o.cursorCol, o.cursorRow))
	return &v
}

// cellCenter maps a 0-based terminal cell to the arena point at its center.
func cellCenter(col, row int) object.Point {
	return object.Point{
		X: float64(col*config.CellWidthUnits) + config.CellWidthUnits/2,
		Y: float64(row*config.CellHeightUnits) + config.CellHeightUnits/2,
	}
}

// launchVelocity is the raw velocity of a bola dragged from anchor and released at release.
func launchVelocity(anchor, release object.Point) object.Velocity {
	return object.Velocity{VX: anchor.X - release.X, VY: anchor.Y - release.Y}
}

func statusLine(bolas int, tick uint64, aim *object.Velocity, idleLeft time.Duration) string {
	if idleLeft > 0 {
		return fmt.Sprintf(" idle: disconnecting in %ds, press any key ", int(idleLeft.Round(time.Second).Seconds()))
	}
	line := fmt.Sprintf(" bolas %d  tick %d ", bolas, tick)
	if aim != nil {
		return line + fmt.Sprintf(" aim %+.0f,%+.0f  space: launch  esc: cancel ", aim.VX, aim.VY)
	}
	return line + " move: arrows/hjkl  space: aim  q: quit "
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

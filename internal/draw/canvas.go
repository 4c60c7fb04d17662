package draw

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/tomz197/bolas/internal/object"
)

// Block characters for the half-block renderer.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

// circleSegments is the number of polygon edges used to approximate a circle.
const circleSegments = 20

// maxPixelCoord bounds scaled coordinates so far-away shapes cannot stall the rasterizer.
const maxPixelCoord = 1 << 16

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Shapes are given in arena units; unitsX and unitsY are the arena units covered by one pixel.
//
// Render only emits the cells that changed since the previous Render.
type Canvas struct {
	cols    int    // Terminal columns
	rows    int    // Terminal rows
	subRows int    // rows * 2
	pixels  []bool // Flat slice: [y * cols + x]
	cells   []rune // Last rendered character per cell
	redraw  bool

	unitsX float64
	unitsY float64

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder
	scaledBuf       []object.Point
	intersectionBuf []float64
	polygonBuf      []object.Point
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int, unitsX, unitsY float64) *Canvas {
	c := &Canvas{unitsX: unitsX, unitsY: unitsY}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the buffers for a new terminal size and schedules a full redraw.
// It does nothing when the size is unchanged.
func (c *Canvas) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == c.cols && rows == c.rows && c.pixels != nil {
		return
	}
	c.cols = cols
	c.rows = rows
	c.subRows = rows * 2
	c.pixels = make([]bool, c.subRows*cols)
	c.cells = make([]rune, rows*cols)
	c.redraw = true
}

// Cols returns the terminal column count.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the terminal row count.
func (c *Canvas) Rows() int { return c.rows }

// Clear resets all pixels. The terminal is untouched until the next Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render emit every cell, e.g. after the terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.redraw = true
}

// Invalidate marks a cell (0-based) as unknown so the next Render repaints it.
// Use it after writing text over the canvas area.
func (c *Canvas) Invalidate(col, row int) {
	if col >= 0 && col < c.cols && row >= 0 && row < c.rows {
		c.cells[row*c.cols+col] = 0
	}
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.subRows {
		c.pixels[y*c.cols+x] = true
	}
}

// toPixel scales an arena point to pixel space. ok is false for points the rasterizer must skip.
func (c *Canvas) toPixel(p object.Point) (x, y float64, ok bool) {
	if !p.Finite() {
		return 0, 0, false
	}
	x, y = p.X/c.unitsX, p.Y/c.unitsY
	if math.Abs(x) > maxPixelCoord || math.Abs(y) > maxPixelCoord {
		return 0, 0, false
	}
	return x, y, true
}

// Pixel reports whether the pixel at (x, y) is set.
func (c *Canvas) Pixel(x, y int) bool {
	return x >= 0 && x < c.cols && y >= 0 && y < c.subRows && c.pixels[y*c.cols+x]
}

// DrawLine draws a line between two arena points using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 object.Point) {
	fx1, fy1, ok1 := c.toPixel(p1)
	fx2, fy2, ok2 := c.toPixel(p2)
	if !ok1 || !ok2 {
		return
	}
	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))
	x2, y2 := int(math.Floor(fx2)), int(math.Floor(fy2))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillCircle fills a circle given in arena units. Circles smaller than a pixel still set one pixel.
func (c *Canvas) FillCircle(center object.Point, radius float64) {
	cx, cy, ok := c.toPixel(center)
	if !ok {
		return
	}
	c.setPixel(int(math.Floor(cx)), int(math.Floor(cy)))

	points := c.borrowPoints(circleSegments)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / circleSegments
		points[i] = object.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	c.fillPolygon(points)
}

// fillPolygon fills a polygon using a scanline algorithm in pixel space.
func (c *Canvas) fillPolygon(points []object.Point) {
	if len(points) < 3 {
		return
	}
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]object.Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		x, y, ok := c.toPixel(p)
		if !ok {
			return
		}
		scaled[i] = object.Point{X: x, Y: y}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Only scan rows that exist on the canvas
	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subRows-1)

	n := len(scaled)
	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5

		intersections := c.intersectionBuf[:0]
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections
		slices.Sort(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := max(int(math.Ceil(intersections[i]-0.5)), 0)
			xEnd := min(int(math.Floor(intersections[i+1]-0.5)), c.cols-1)
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// borrowPoints returns a reusable slice valid until the next call.
func (c *Canvas) borrowPoints(n int) []object.Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]object.Point, n)
	}
	return c.polygonBuf[:n]
}

// cell returns the half-block character for a terminal cell.
func (c *Canvas) cell(col, row int) rune {
	top := c.pixels[row*2*c.cols+col]
	bottom := c.pixels[(row*2+1)*c.cols+col]
	switch {
	case top && bottom:
		return BlockFull
	case top:
		return BlockUpperHalf
	case bottom:
		return BlockLowerHalf
	default:
		return BlockEmpty
	}
}

// Render writes the changed cells to w as cursor moves followed by half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			ch := c.cell(col, row)
			idx := row*c.cols + col
			if !c.redraw && c.cells[idx] == ch {
				continue
			}
			c.cells[idx] = ch
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1, col+1, ch)
		}
	}
	c.redraw = false

	if c.renderBuf.Len() > 0 {
		io.WriteString(w, c.renderBuf.String())
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

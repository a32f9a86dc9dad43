package layout

import (
	"fmt"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/sink"
)

// Controller binds a Layout to a PixelSink: it is the thing effects and
// the render loop address by logical index, and Show flushes the current
// frame to hardware. Controller itself is not safe for concurrent
// mutation; the render loop is its only writer.
type Controller struct {
	layout Layout
	sink   sink.PixelSink
	frame  Frame
}

// NewController builds a Controller over a layout and a pixel sink,
// pre-allocating the frame buffer to the layout's pixel count.
func NewController(l Layout, s sink.PixelSink) *Controller {
	return &Controller{
		layout: l,
		sink:   s,
		frame:  NewFrame(l.PixelCount()),
	}
}

func (c *Controller) Layout() Layout { return c.layout }

func (c *Controller) PixelCount() int { return c.layout.PixelCount() }

func (c *Controller) SetPixel(i int, color colorfx.Color) {
	if i < 0 || i >= len(c.frame) {
		return
	}
	c.frame[i] = color
}

func (c *Controller) SetAll(colors []colorfx.Color) {
	n := len(c.frame)
	if len(colors) < n {
		n = len(colors)
	}
	copy(c.frame[:n], colors[:n])
}

// Frame exposes the controller's live frame buffer for in-place effect
// rendering. Callers must not retain it past the current tick.
func (c *Controller) Frame() Frame { return c.frame }

// Show flushes the current frame to the pixel sink.
func (c *Controller) Show() error {
	return c.sink.Push(c.frame)
}

func (c *Controller) CoordOf(i int) (float64, float64) {
	return c.layout.Coord(i)
}

// CellOf returns the hex cell owning strand index i, or an error if the
// active layout is not hex-shaped.
func (c *Controller) CellOf(i int) (int, error) {
	ca, ok := c.layout.(CellAware)
	if !ok {
		return 0, fmt.Errorf("layout %s has no cells", c.layout.Kind())
	}
	return ca.CellOf(i), nil
}

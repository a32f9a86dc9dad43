// Package sink is the narrow hardware boundary the render loop pushes
// finished frames through: one interface, three real drivers (SPI,
// GPIO bit-bang, serial bridge), and a mock fallback for development
// and tests.
package sink

import "github.com/wyrmlight/ledcore/internal/colorfx"

// PixelSink accepts a full RGBW frame and pushes it to hardware (or
// stores it for the mock/viewer path). Implementations are driven
// exclusively by the render loop and are not expected to be reentrant.
type PixelSink interface {
	// Push sends frame to the strand; colors beyond the strand length the
	// sink was opened with are not sent. The sink must
	// not retain frame past the call; the render loop reuses the
	// backing array on the next tick.
	Push(frame []colorfx.Color) error
	// Close releases any hardware resources.
	Close() error
}

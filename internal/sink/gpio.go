package sink

import (
	"fmt"
	"runtime"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

// WS2812 bit-bangs a single-wire WS2812/WS2811-style strand on one GPIO
// pin using go-rpio. There is no hardware PWM/DMA assist here: each bit is
// a timed High/Low pair, so Push locks the OS thread for its duration to
// keep jitter under the ~150ns the protocol tolerates.
// This is a best-effort software driver, not cycle-exact; a timing-critical
// installation should prefer the SPI-backed APA102 sink instead.
type WS2812 struct {
	pin rpio.Pin
	n   int
}

// GPIO protocol timings for WS2812 (NRZ, ~800kHz).
const (
	ws2812T0H = 350 * time.Nanosecond
	ws2812T0L = 800 * time.Nanosecond
	ws2812T1H = 700 * time.Nanosecond
	ws2812T1L = 600 * time.Nanosecond
	ws2812Rst = 280 * time.Microsecond
)

// NewWS2812 opens go-rpio's /dev/gpiomem mapping and configures bcmPin as
// output. n is the strand length.
func NewWS2812(bcmPin, n int) (*WS2812, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("ws2812: open gpio: %w", err)
	}
	p := rpio.Pin(bcmPin)
	p.Output()
	p.Low()
	return &WS2812{pin: p, n: n}, nil
}

func (w *WS2812) Push(frame []colorfx.Color) error {
	n := w.n
	if len(frame) < n {
		n = len(frame)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for i := 0; i < n; i++ {
		c := frame[i]
		// WS2812 wire order is GRB; fold W additively same as the SPI sink.
		w.writeByte(addClamp(c.G, c.W))
		w.writeByte(addClamp(c.R, c.W))
		w.writeByte(addClamp(c.B, c.W))
	}
	w.pin.Low()
	time.Sleep(ws2812Rst)
	return nil
}

func (w *WS2812) writeByte(b uint8) {
	for bit := 7; bit >= 0; bit-- {
		if b&(1<<uint(bit)) != 0 {
			w.pin.High()
			spin(ws2812T1H)
			w.pin.Low()
			spin(ws2812T1L)
		} else {
			w.pin.High()
			spin(ws2812T0H)
			w.pin.Low()
			spin(ws2812T0L)
		}
	}
}

// spin busy-waits rather than calling time.Sleep, whose scheduler
// granularity is far coarser than the sub-microsecond windows WS2812
// needs.
func spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

func (w *WS2812) Close() error {
	w.pin.Low()
	return rpio.Close()
}

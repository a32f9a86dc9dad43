package sink

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

// APA102 drives an APA102/SK9822-style strand over SPI through periph's
// apa102 device driver, which owns the start/end-frame framing and the
// per-LED global brightness field. Frames here are RGBW; the white
// channel has no APA102 equivalent and is folded additively into the
// color bytes before handoff.
type APA102 struct {
	port spi.PortCloser
	dev  *apa102.Dev
	n    int
	buf  []byte
}

// NewAPA102 opens the named SPI port (e.g. "SPI0.0") and binds an
// apa102 device for n LEDs. host.Init is required once per process
// before any periph.io driver will find its bus.
func NewAPA102(busName string, n int) (*APA102, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("apa102: periph host init: %w", err)
	}
	port, err := spireg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("apa102: open %s: %w", busName, err)
	}

	opts := apa102.DefaultOpts
	opts.NumPixels = n
	dev, err := apa102.New(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("apa102: bind device: %w", err)
	}

	return &APA102{port: port, dev: dev, n: n, buf: make([]byte, 3*n)}, nil
}

func (a *APA102) Push(frame []colorfx.Color) error {
	n := a.n
	if len(frame) < n {
		n = len(frame)
	}
	for i := 0; i < n; i++ {
		c := frame[i]
		j := 3 * i
		a.buf[j] = addClamp(c.R, c.W)
		a.buf[j+1] = addClamp(c.G, c.W)
		a.buf[j+2] = addClamp(c.B, c.W)
	}
	if _, err := a.dev.Write(a.buf); err != nil {
		return fmt.Errorf("apa102: push frame: %w", err)
	}
	return nil
}

func addClamp(a, b uint8) uint8 {
	sum := int(a) + int(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func (a *APA102) Close() error {
	if err := a.dev.Halt(); err != nil {
		a.port.Close()
		return err
	}
	return a.port.Close()
}

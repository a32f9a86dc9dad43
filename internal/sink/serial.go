package sink

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

// Serial drives a strand attached through a USB-serial pixel bridge
// (Fadecandy/Teensy-class controllers) using an Open Pixel Control frame:
// a 1-byte channel, a 1-byte command (0 = set pixel colors), a 16-bit
// big-endian payload length, then 3 bytes per LED. This is the
// serial-port sibling of the protocol's usual TCP form.
type Serial struct {
	port serial.Port
	n    int
	buf  []byte
}

// NewSerial opens portName (e.g. "/dev/ttyACM0") at baud and prepares an
// OPC frame buffer for n LEDs on channel 0 (broadcast to every strand the
// bridge controls).
func NewSerial(portName string, baud, n int) (*Serial, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", portName, err)
	}

	payloadLen := 3 * n
	buf := make([]byte, 4+payloadLen)
	buf[0] = 0x00 // channel
	buf[1] = 0x00 // command: set pixel colors
	buf[2] = byte(payloadLen >> 8)
	buf[3] = byte(payloadLen)

	return &Serial{port: port, n: n, buf: buf}, nil
}

func (s *Serial) Push(frame []colorfx.Color) error {
	n := s.n
	if len(frame) < n {
		n = len(frame)
	}
	for i := 0; i < n; i++ {
		c := frame[i]
		j := 4 + 3*i
		s.buf[j] = addClamp(c.R, c.W)
		s.buf[j+1] = addClamp(c.G, c.W)
		s.buf[j+2] = addClamp(c.B, c.W)
	}
	_, err := s.port.Write(s.buf)
	return err
}

func (s *Serial) Close() error {
	return s.port.Close()
}

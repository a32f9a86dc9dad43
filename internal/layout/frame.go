package layout

import "github.com/wyrmlight/ledcore/internal/colorfx"

// Frame is an ordered sequence of N colors in strand order, N fixed by
// the active Layout. The render loop owns the frame buffer exclusively;
// the broadcaster's PublishFrame copies what it is handed.
type Frame []colorfx.Color

// NewFrame allocates a frame of n all-black pixels.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Clone returns a deep copy that stays independent of later writes to
// the original buffer.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Clear resets every pixel to black in place, reusing the backing array.
func (f Frame) Clear() {
	for i := range f {
		f[i] = colorfx.Black
	}
}

// ScaleBrightness multiplies every pixel by factor in place.
func (f Frame) ScaleBrightness(factor float64) {
	for i, c := range f {
		f[i] = c.Scale(factor)
	}
}

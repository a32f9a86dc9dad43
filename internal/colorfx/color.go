// Package colorfx implements the RGBW color model shared by every effect,
// the layout mapper and the render loop's post-processing pipeline.
package colorfx

import "math"

// Color is a single RGBW LED value. Channels are uint8, so always in
// [0,255]; operations that compute channels in floating point round and
// clamp them through clampByte.
type Color struct {
	R, G, B, W uint8
}

// Black is the zero value, reused to avoid allocating it everywhere the
// render loop needs an all-off pixel (power off, blackout frame).
var Black = Color{}

// New builds a Color from float channel values, clamping and rounding to
// the nearest integer the way the brightness/fade pipeline does.
func New(r, g, b, w float64) Color {
	return Color{
		R: clampByte(r),
		G: clampByte(g),
		B: clampByte(b),
		W: clampByte(w),
	}
}

// RGB builds an RGBW color with W=0, the common case for effect output.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Scale multiplies every channel by a factor in [0,1], rounding to the
// nearest integer. Used by both the brightness stage and the power-fade
// envelope in the render loop; both apply this same multiply-then-round
// rule.
func (c Color) Scale(factor float64) Color {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return Color{
		R: clampByte(float64(c.R) * factor),
		G: clampByte(float64(c.G) * factor),
		B: clampByte(float64(c.B) * factor),
		W: clampByte(float64(c.W) * factor),
	}
}

// Lerp linearly interpolates between a and b at t in [0,1].
func Lerp(a, b Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Color{
		R: clampByte(lerpChannel(a.R, b.R, t)),
		G: clampByte(lerpChannel(a.G, b.G, t)),
		B: clampByte(lerpChannel(a.B, b.B, t)),
		W: clampByte(lerpChannel(a.W, b.W, t)),
	}
}

func lerpChannel(a, b uint8, t float64) float64 {
	return float64(a) + (float64(b)-float64(a))*t
}

// PaletteSample samples an ordered, cyclic palette at phase t in [0,1).
// i = floor(t*k), f = t*k - i, result = lerp(c_i, c_(i+1 mod k), f).
func PaletteSample(palette []Color, t float64) Color {
	k := len(palette)
	if k == 0 {
		return Black
	}
	if k == 1 {
		return palette[0]
	}
	t -= math.Floor(t)
	scaled := t * float64(k)
	i := int(math.Floor(scaled))
	if i >= k {
		i = k - 1
	}
	f := scaled - float64(i)
	return Lerp(palette[i], palette[(i+1)%k], f)
}

// HSVToRGB converts hue/saturation/value (each in [0,1]) to an RGB color,
// the basis of every rainbow-family effect.
func HSVToRGB(h, s, v float64) Color {
	h -= math.Floor(h)
	if s <= 0 {
		level := v * 255
		return New(level, level, level, 0)
	}

	h6 := h * 6
	sector := int(h6)
	f := h6 - float64(sector)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch sector % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return New(r*255, g*255, b*255, 0)
}

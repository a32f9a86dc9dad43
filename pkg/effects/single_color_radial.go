package effects

import (
	"math"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("SingleColorRadial", effect.Descriptor{
		Label: "Single Color Radial",
		Params: map[string]effect.ParamSpec{
			"color": {Kind: effect.KindColor, Label: "Color", Default: colorfx.RGB(255, 255, 255)},
			"speed": {Kind: effect.KindFloat, Label: "Speed", Default: 0.3},
		},
	}, NewSingleColorRadial)
}

// SingleColorRadial pulses brightness along radial distance from center,
// a sine wave traveling outward over time, all LEDs sharing one color.
type SingleColorRadial struct {
	cache radialCache
}

func NewSingleColorRadial() effect.Effect { return &SingleColorRadial{} }

func (e *SingleColorRadial) OnLayoutChange(lay layout.Layout) {
	e.cache = buildRadialCache(lay)
}

func (e *SingleColorRadial) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	c := params["color"].Color
	speed := params["speed"].Float
	t := float64(ms) / 1000 * speed
	for i := range frame {
		phase := e.cache.normDist(i)*4 - t*4
		amp := (math.Sin(phase*2*math.Pi) + 1) / 2
		frame[i] = c.Scale(amp)
	}
}

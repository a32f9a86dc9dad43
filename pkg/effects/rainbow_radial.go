package effects

import (
	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("RainbowRadial", effect.Descriptor{
		Label: "Rainbow Radial",
		Params: map[string]effect.ParamSpec{
			"speed": {Kind: effect.KindFloat, Label: "Speed", Default: 0.3},
		},
	}, NewRainbowRadial)
}

// RainbowRadial cycles hue as a function of each LED's radial distance
// from the layout center plus elapsed time.
type RainbowRadial struct {
	cache radialCache
}

func NewRainbowRadial() effect.Effect { return &RainbowRadial{} }

func (e *RainbowRadial) OnLayoutChange(lay layout.Layout) {
	e.cache = buildRadialCache(lay)
}

func (e *RainbowRadial) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	speed := params["speed"].Float
	t := float64(ms) / 1000 * speed
	for i := range frame {
		hue := fract(e.cache.normDist(i) + t)
		frame[i] = colorfx.HSVToRGB(hue, 1, 1)
	}
}

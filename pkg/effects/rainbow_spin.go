package effects

import (
	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("RainbowSpin", effect.Descriptor{
		Label: "Rainbow Spin",
		Params: map[string]effect.ParamSpec{
			"speed":     {Kind: effect.KindFloat, Label: "Speed", Default: 0.3},
			"direction": {Kind: effect.KindEnum, Label: "Direction", Default: "cw", Options: []string{"cw", "ccw"}},
		},
	}, NewRainbowSpin)
}

// RainbowSpin cycles hue as a function of each LED's angle around the
// layout center plus elapsed time, producing a rotating rainbow.
type RainbowSpin struct {
	cache radialCache
}

func NewRainbowSpin() effect.Effect { return &RainbowSpin{} }

func (e *RainbowSpin) OnLayoutChange(lay layout.Layout) {
	e.cache = buildRadialCache(lay)
}

func (e *RainbowSpin) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	speed := params["speed"].Float
	t := float64(ms) / 1000 * speed
	if params["direction"].Enum == "ccw" {
		t = -t
	}
	for i := range frame {
		hue := fract(e.cache.normAngle(i) + t)
		frame[i] = colorfx.HSVToRGB(hue, 1, 1)
	}
}

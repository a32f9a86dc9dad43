package effects

import (
	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("MultiColorRadial", effect.Descriptor{
		Label: "Multi Color Radial",
		Params: map[string]effect.ParamSpec{
			"colors": {Kind: effect.KindColorList, Label: "Colors", Default: []colorfx.Color{
				colorfx.RGB(255, 0, 0), colorfx.RGB(0, 255, 0), colorfx.RGB(0, 0, 255),
			}},
			"speed": {Kind: effect.KindFloat, Label: "Speed", Default: 0.3},
		},
	}, NewMultiColorRadial)
}

// MultiColorRadial samples a palette by radial phase, the palette itself
// traveling outward over time.
type MultiColorRadial struct {
	cache radialCache
}

func NewMultiColorRadial() effect.Effect { return &MultiColorRadial{} }

func (e *MultiColorRadial) OnLayoutChange(lay layout.Layout) {
	e.cache = buildRadialCache(lay)
}

func (e *MultiColorRadial) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	palette := params["colors"].ColorList
	if len(palette) == 0 {
		palette = []colorfx.Color{colorfx.Black}
	}
	speed := params["speed"].Float
	t := float64(ms) / 1000 * speed
	for i := range frame {
		phase := fract(e.cache.normDist(i) - t)
		frame[i] = colorfx.PaletteSample(palette, phase)
	}
}

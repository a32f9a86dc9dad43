package effects

import (
	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("SingleColor", effect.Descriptor{
		Label: "Single Color",
		Params: map[string]effect.ParamSpec{
			"color": {Kind: effect.KindColor, Label: "Color", Default: colorfx.RGB(255, 255, 255)},
		},
	}, NewSingleColor)
}

// SingleColor sets every LED to the same configured color. It has no
// per-layout cached state.
type SingleColor struct{}

func NewSingleColor() effect.Effect { return &SingleColor{} }

func (e *SingleColor) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	c := params["color"].Color
	for i := range frame {
		frame[i] = c
	}
}

func (e *SingleColor) OnLayoutChange(lay layout.Layout) {}

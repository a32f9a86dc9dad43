package effects

import (
	"math/rand"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("RandomColorHex", effect.Descriptor{
		Label: "Random Color (Hex)",
		Params: map[string]effect.ParamSpec{
			"transition_speed": {Kind: effect.KindFloat, Label: "Transition Speed", Default: 0.5},
		},
	}, NewRandomColorHex)
}

// RandomColorHex assigns one random color per hex cell, applied to
// every LED in that cell, refreshed every period. It requires a
// CellAware layout; Render degrades to solid black and leaves it to the
// caller to have rejected activation on an unsuitable layout (the
// control plane checks this before switching effects).
type RandomColorHex struct {
	rng       *rand.Rand
	colors    []colorfx.Color
	lastSwMs  int64
	initiated bool
}

func NewRandomColorHex() effect.Effect {
	return &RandomColorHex{rng: rand.New(rand.NewSource(3))}
}

func (e *RandomColorHex) OnLayoutChange(lay layout.Layout) {
	e.initiated = false
	if ca, ok := lay.(layout.CellAware); ok {
		e.colors = make([]colorfx.Color, ca.CellCount())
	} else {
		e.colors = nil
	}
}

func (e *RandomColorHex) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	ca, ok := lay.(layout.CellAware)
	if !ok || len(e.colors) != ca.CellCount() {
		for i := range frame {
			frame[i] = colorfx.Black
		}
		return
	}

	period := randomPeriodMs(params["transition_speed"].Float)
	if !e.initiated || ms-e.lastSwMs >= period {
		for i := range e.colors {
			e.colors[i] = randomColor(e.rng)
		}
		e.lastSwMs = ms
		e.initiated = true
	}

	for i := range frame {
		cell := ca.CellOf(i)
		if cell < 0 || cell >= len(e.colors) {
			frame[i] = colorfx.Black
			continue
		}
		frame[i] = e.colors[cell]
	}
}

// RequiresHex reports whether name is an effect class that only makes
// sense on a CellAware layout. The control plane consults this to
// surface a StateError instead of letting Render silently degrade.
func RequiresHex(name string) bool {
	return name == "RandomColorHex"
}

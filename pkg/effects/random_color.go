package effects

import (
	"math/rand"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func init() {
	effect.Register("RandomColorSingle", effect.Descriptor{
		Label: "Random Color",
		Params: map[string]effect.ParamSpec{
			"transition_speed": {Kind: effect.KindFloat, Label: "Transition Speed", Default: 0.5},
		},
	}, NewRandomColorSingle)

	effect.Register("RandomColorDual", effect.Descriptor{
		Label: "Random Color (Dual)",
		Params: map[string]effect.ParamSpec{
			"transition_speed": {Kind: effect.KindFloat, Label: "Transition Speed", Default: 0.5},
		},
	}, NewRandomColorDual)
}

// randomPeriodMs converts the [0,1] transition_speed parameter into a
// hold duration: faster speed, shorter hold. A speed of zero or below is
// treated as 0.01.
func randomPeriodMs(speed float64) int64 {
	const minMs, maxMs = 200, 4000
	if speed <= 0 {
		speed = 0.01
	}
	return int64(maxMs - speed*(maxMs-minMs))
}

func randomColor(rng *rand.Rand) colorfx.Color {
	return colorfx.RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
}

// RandomColorSingle refreshes one strand-wide random color every period
// controlled by transition_speed.
type RandomColorSingle struct {
	rng       *rand.Rand
	color     colorfx.Color
	lastSwMs  int64
	initiated bool
}

func NewRandomColorSingle() effect.Effect {
	return &RandomColorSingle{rng: rand.New(rand.NewSource(1))}
}

func (e *RandomColorSingle) OnLayoutChange(lay layout.Layout) {
	e.initiated = false
}

func (e *RandomColorSingle) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	period := randomPeriodMs(params["transition_speed"].Float)
	if !e.initiated || ms-e.lastSwMs >= period {
		e.color = randomColor(e.rng)
		e.lastSwMs = ms
		e.initiated = true
	}
	for i := range frame {
		frame[i] = e.color
	}
}

// RandomColorDual is RandomColorSingle but pairs adjacent LEDs: each
// pair shares one of two colors refreshed together every period, the
// pairing alternating across the strand.
type RandomColorDual struct {
	rng       *rand.Rand
	colorA    colorfx.Color
	colorB    colorfx.Color
	lastSwMs  int64
	initiated bool
}

func NewRandomColorDual() effect.Effect {
	return &RandomColorDual{rng: rand.New(rand.NewSource(2))}
}

func (e *RandomColorDual) OnLayoutChange(lay layout.Layout) {
	e.initiated = false
}

func (e *RandomColorDual) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	period := randomPeriodMs(params["transition_speed"].Float)
	if !e.initiated || ms-e.lastSwMs >= period {
		e.colorA = randomColor(e.rng)
		e.colorB = randomColor(e.rng)
		e.lastSwMs = ms
		e.initiated = true
	}
	for i := range frame {
		if (i/2)%2 == 0 {
			frame[i] = e.colorA
		} else {
			frame[i] = e.colorB
		}
	}
}

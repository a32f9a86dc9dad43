package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func TestRainbowSpinDirectionReversesRotation(t *testing.T) {
	lay := testScale()
	cw := NewRainbowSpin()
	cw.OnLayoutChange(lay)
	ccw := NewRainbowSpin()
	ccw.OnLayoutChange(lay)

	frameCW := layout.NewFrame(lay.PixelCount())
	frameCCW := layout.NewFrame(lay.PixelCount())

	paramsCW := effect.Params{
		"speed":     {Kind: effect.KindFloat, Float: 0.3},
		"direction": {Kind: effect.KindEnum, Enum: "cw"},
	}
	paramsCCW := effect.Params{
		"speed":     {Kind: effect.KindFloat, Float: 0.3},
		"direction": {Kind: effect.KindEnum, Enum: "ccw"},
	}

	cw.Render(frameCW, lay, 500, paramsCW)
	ccw.Render(frameCCW, lay, 500, paramsCCW)

	assert.NotEqual(t, frameCW, frameCCW)
}

func TestRainbowSpinDescriptorDeclaresDirectionEnum(t *testing.T) {
	desc, ok := effect.Global().Descriptor("RainbowSpin")
	assert.True(t, ok)
	spec, ok := desc.Params["direction"]
	assert.True(t, ok)
	assert.Equal(t, effect.KindEnum, spec.Kind)
	assert.ElementsMatch(t, []string{"cw", "ccw"}, spec.Options)
}

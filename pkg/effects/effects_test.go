package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
)

func testScale() *layout.Scale {
	return layout.NewScale(4, 4, 1, 0, 0, 0)
}

func TestAllEffectsRegistered(t *testing.T) {
	for _, name := range []string{
		"SingleColor", "RainbowRadial", "RainbowSpin",
		"SingleColorRadial", "MultiColorRadial",
		"RandomColorSingle", "RandomColorDual", "RandomColorHex",
	} {
		assert.True(t, effect.Global().Has(name), "effect %q not registered", name)
	}
}

func TestSingleColorFillsFrame(t *testing.T) {
	lay := testScale()
	e := NewSingleColor()
	e.OnLayoutChange(lay)
	frame := layout.NewFrame(lay.PixelCount())
	params := effect.Params{"color": {Kind: effect.KindColor, Color: colorfx.RGB(10, 20, 30)}}
	e.Render(frame, lay, 0, params)
	for _, c := range frame {
		assert.Equal(t, colorfx.RGB(10, 20, 30), c)
	}
}

func TestRainbowRadialProducesValidChannels(t *testing.T) {
	lay := testScale()
	e := NewRainbowRadial()
	e.OnLayoutChange(lay)
	frame := layout.NewFrame(lay.PixelCount())
	params := effect.Params{"speed": {Kind: effect.KindFloat, Float: 0.3}}
	e.Render(frame, lay, 500, params)
	assert.Len(t, frame, lay.PixelCount())
}

func TestMultiColorRadialSingleEntryPaletteIsConstant(t *testing.T) {
	lay := testScale()
	e := NewMultiColorRadial()
	e.OnLayoutChange(lay)
	frame := layout.NewFrame(lay.PixelCount())
	params := effect.Params{
		"colors": {Kind: effect.KindColorList, ColorList: []colorfx.Color{colorfx.RGB(5, 6, 7)}},
		"speed":  {Kind: effect.KindFloat, Float: 0.2},
	}
	e.Render(frame, lay, 1234, params)
	for _, c := range frame {
		assert.Equal(t, colorfx.RGB(5, 6, 7), c)
	}
}

func TestRandomColorSingleHoldsColorWithinPeriod(t *testing.T) {
	e := NewRandomColorSingle().(*RandomColorSingle)
	lay := testScale()
	e.OnLayoutChange(lay)
	frame := layout.NewFrame(lay.PixelCount())
	params := effect.Params{"transition_speed": {Kind: effect.KindFloat, Float: 0.5}}

	e.Render(frame, lay, 0, params)
	first := frame[0]
	e.Render(frame, lay, 10, params)
	assert.Equal(t, first, frame[0], "color should not change within the hold period")
}

func TestRandomColorHexRequiresCellAwareLayout(t *testing.T) {
	e := NewRandomColorHex()
	lay := testScale() // not CellAware
	e.OnLayoutChange(lay)
	frame := layout.NewFrame(lay.PixelCount())
	params := effect.Params{"transition_speed": {Kind: effect.KindFloat, Float: 0.5}}
	e.Render(frame, lay, 0, params)
	for _, c := range frame {
		assert.Equal(t, colorfx.Black, c)
	}
	assert.True(t, RequiresHex("RandomColorHex"))
	assert.False(t, RequiresHex("SingleColor"))
}

func TestEffectDescriptorsExposeDefaults(t *testing.T) {
	d, ok := effect.Global().Descriptor("SingleColor")
	require.True(t, ok)
	assert.Contains(t, d.Params, "color")
}

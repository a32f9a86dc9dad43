package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/preset"
)

func testRegistry() *effect.Registry {
	r := effect.NewRegistry()
	r.Register("SingleColor", effect.Descriptor{
		Params: map[string]effect.ParamSpec{
			"color": {Kind: effect.KindColor, Default: nil},
		},
	}, nil)
	r.Register("RainbowRadial", effect.Descriptor{
		Params: map[string]effect.ParamSpec{
			"speed": {Kind: effect.KindFloat, Default: 0.5},
		},
	}, nil)
	return r
}

func newTestState(t *testing.T) *GlobalState {
	t.Helper()
	gs, err := New(testRegistry(), preset.NewStore(), "SingleColor")
	require.NoError(t, err)
	return gs
}

func TestNewDefaultsFromDescriptor(t *testing.T) {
	gs := newTestState(t)
	snap := gs.Snapshot()
	assert.Equal(t, "SingleColor", snap.EffectClass)
	assert.Equal(t, 1.0, snap.Brightness)
	assert.True(t, snap.PowerState)
}

func TestSetEffectClearsActivePreset(t *testing.T) {
	gs := newTestState(t)
	p := preset.Preset{EffectClass: "SingleColor", Brightness: 0.4}
	require.NoError(t, gs.ApplyPreset(preset.Preset{ID: 1, EffectClass: "SingleColor", Brightness: 0.4, Parameters: p.Parameters}))
	require.NotNil(t, gs.Snapshot().ActivePresetID)

	require.NoError(t, gs.SetEffect("RainbowRadial", nil))
	assert.Nil(t, gs.Snapshot().ActivePresetID)
	assert.Equal(t, "RainbowRadial", gs.Snapshot().EffectClass)
}

func TestSetEffectUnknownErrors(t *testing.T) {
	gs := newTestState(t)
	assert.Error(t, gs.SetEffect("DoesNotExist", nil))
}

func TestSetBrightnessClampsAndClearsPreset(t *testing.T) {
	gs := newTestState(t)
	require.NoError(t, gs.ApplyPreset(preset.Preset{ID: 7, EffectClass: "SingleColor"}))

	gs.SetBrightness(5)
	snap := gs.Snapshot()
	assert.Equal(t, 1.0, snap.Brightness)
	assert.Nil(t, snap.ActivePresetID)

	gs.SetBrightness(-1)
	assert.Equal(t, 0.0, gs.Snapshot().Brightness)
}

func TestPowerFadeEnvelope(t *testing.T) {
	gs := newTestState(t)
	gs.SetPowerState(false)

	snap := gs.Snapshot()
	require.True(t, snap.FadeActive)

	almostHalf := snap.FadeStart.Add(150 * time.Millisecond)
	env := snap.FadeEnvelope(almostHalf)
	assert.InDelta(t, 0.5, env, 0.05)

	complete := snap.FadeStart.Add(300 * time.Millisecond)
	assert.Equal(t, 0.0, snap.FadeEnvelope(complete))
}

func TestAdvanceFadeResolvesPowerState(t *testing.T) {
	gs := newTestState(t)
	gs.SetPowerState(false)
	gs.AdvanceFade(time.Now().Add(301 * time.Millisecond))

	snap := gs.Snapshot()
	assert.False(t, snap.FadeActive)
	assert.False(t, snap.PowerState)
}

func TestRecordEffectResultFallsBackAfterFiveFailures(t *testing.T) {
	gs := newTestState(t)
	require.NoError(t, gs.SetEffect("RainbowRadial", nil))
	for i := 0; i < 4; i++ {
		assert.False(t, gs.RecordEffectResult(false))
	}
	assert.True(t, gs.RecordEffectResult(false))

	snap := gs.Snapshot()
	assert.True(t, snap.EffectFault)
	assert.Equal(t, "SingleColor", snap.EffectClass)

	assert.False(t, gs.RecordEffectResult(true))
	assert.True(t, gs.Snapshot().EffectFault, "fault flag stays up until the user picks an effect")

	require.NoError(t, gs.SetEffect("RainbowRadial", nil))
	assert.False(t, gs.Snapshot().EffectFault)
}

func TestApplyPresetSetsActivePresetID(t *testing.T) {
	gs := newTestState(t)
	require.NoError(t, gs.ApplyPreset(preset.Preset{ID: 42, EffectClass: "RainbowRadial", Brightness: 0.8}))

	snap := gs.Snapshot()
	require.NotNil(t, snap.ActivePresetID)
	assert.Equal(t, int64(42), *snap.ActivePresetID)
	assert.Equal(t, 0.8, snap.Brightness)
}

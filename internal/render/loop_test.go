package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/broadcast"
	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
	"github.com/wyrmlight/ledcore/internal/preset"
	"github.com/wyrmlight/ledcore/internal/sink"
	"github.com/wyrmlight/ledcore/internal/state"
)

type solidEffect struct{ color colorfx.Color }

func (e *solidEffect) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	for i := range frame {
		frame[i] = e.color
	}
}
func (e *solidEffect) OnLayoutChange(lay layout.Layout) {}

type panicEffect struct{}

func (e *panicEffect) Render(frame layout.Frame, lay layout.Layout, ms int64, params effect.Params) {
	panic("boom")
}
func (e *panicEffect) OnLayoutChange(lay layout.Layout) {}

func testSetup(t *testing.T) (*Loop, *state.GlobalState, *sink.Mock) {
	t.Helper()
	reg := effect.NewRegistry()
	reg.Register("Red", effect.Descriptor{}, func() effect.Effect { return &solidEffect{color: colorfx.RGB(255, 0, 0)} })
	reg.Register("Panicky", effect.Descriptor{}, func() effect.Effect { return &panicEffect{} })
	reg.Register("SingleColor", effect.Descriptor{
		Params: map[string]effect.ParamSpec{"color": {Kind: effect.KindColor, Default: colorfx.Black}},
	}, func() effect.Effect { return &solidEffect{color: colorfx.Black} })

	gs, err := state.New(reg, preset.NewStore(), "Red")
	require.NoError(t, err)

	lay := layout.NewScale(2, 2, 1, 0, 0, 0)
	m := sink.NewMock()
	ctrl := layout.NewController(lay, m)
	hub := broadcast.NewHub()
	logger := zap.NewNop()

	return NewLoop(ctrl, gs, hub, logger, RegimeMock), gs, m
}

func TestTickPushesFullFrameToSink(t *testing.T) {
	l, _, m := testSetup(t)
	l.tick(time.Now())

	frame := m.Last()
	assert.Len(t, frame, 6) // 2x2 scale panel: 2 main columns + 1 interstitial column of 2
	for _, c := range frame {
		assert.Equal(t, colorfx.RGB(255, 0, 0), c)
	}
}

func TestZeroBrightnessYieldsBlackFrame(t *testing.T) {
	l, gs, m := testSetup(t)
	gs.SetBrightness(0)
	l.tick(time.Now())

	for _, c := range m.Last() {
		assert.Equal(t, colorfx.Black, c)
	}
}

func TestPowerOffYieldsBlackFrame(t *testing.T) {
	l, gs, m := testSetup(t)
	gs.SetPowerState(false)
	l.tick(time.Now().Add(400 * time.Millisecond)) // past fade completion

	for _, c := range m.Last() {
		assert.Equal(t, colorfx.Black, c)
	}
}

func TestPanickingEffectProducesBlackFrameAndContinues(t *testing.T) {
	l, gs, m := testSetup(t)
	require.NoError(t, gs.SetEffect("Panicky", nil))

	assert.NotPanics(t, func() { l.tick(time.Now()) })
	for _, c := range m.Last() {
		assert.Equal(t, colorfx.Black, c)
	}
}

func TestRepeatedFailuresTriggerFallback(t *testing.T) {
	l, gs, _ := testSetup(t)
	require.NoError(t, gs.SetEffect("Panicky", nil))

	for i := 0; i < 5; i++ {
		l.tick(time.Now().Add(time.Duration(i) * time.Millisecond))
	}
	assert.True(t, gs.Snapshot().EffectFault)
}

func TestBlackoutOnShutdown(t *testing.T) {
	l, _, m := testSetup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx)
	require.NoError(t, err)
	for _, c := range m.Last() {
		assert.Equal(t, colorfx.Black, c)
	}
}

// Package render is the periodic scheduler that turns GlobalState and
// the active effect into frames: advance, post-process, emit. The loop
// snapshots shared state at the top of each tick and never holds the
// state lock while rendering or pushing to the sink.
package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/broadcast"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
	"github.com/wyrmlight/ledcore/internal/state"
)

// Regime picks the tick-period target: mock hardware runs at ~20Hz,
// real hardware at ~200Hz.
type Regime int

const (
	RegimeMock Regime = iota
	RegimeReal
)

func (r Regime) period() time.Duration {
	if r == RegimeReal {
		return 5 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// Loop owns the render tick. It is not safe for concurrent use; only
// Run's own goroutine touches its fields after construction, except FPS,
// which reads the mutex-guarded fps counter and may be called from any
// goroutine.
type Loop struct {
	ctrl   *layout.Controller
	state  *state.GlobalState
	hub    *broadcast.Hub
	logger *zap.Logger
	period time.Duration

	activeEffect effect.Effect
	activeClass  string
	effectStart  time.Time
	lastTick     time.Time

	fps fpsCounter
}

// NewLoop builds a Loop bound to a pixel controller, the shared state
// object, the viewer broadcaster, and a tick regime.
func NewLoop(ctrl *layout.Controller, st *state.GlobalState, hub *broadcast.Hub, logger *zap.Logger, regime Regime) *Loop {
	return &Loop{
		ctrl:   ctrl,
		state:  st,
		hub:    hub,
		logger: logger,
		period: regime.period(),
	}
}

// FPS returns the most recently measured ticks-per-second, for the
// debug counter and GET /state's fps field.
func (l *Loop) FPS() float64 { return l.fps.rate() }

// Run executes the render loop until ctx is cancelled, then pushes one
// final blackout frame before returning so the strand goes dark on
// shutdown.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.blackout()
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}

func (l *Loop) tick(now time.Time) {
	if !l.lastTick.IsZero() {
		l.fps.record(now.Sub(l.lastTick))
	}
	l.lastTick = now

	l.state.AdvanceFade(now)
	snap := l.state.Snapshot()

	l.ensureEffect(snap.EffectClass)

	frame := l.ctrl.Frame()
	if ok := l.renderSafely(frame, snap); !ok {
		frame.Clear()
		if fallback := l.state.RecordEffectResult(false); fallback {
			l.logger.Warn("effect failing repeatedly, falling back to default", zap.String("effect", snap.EffectClass))
			l.activeClass = ""
		}
	} else {
		l.state.RecordEffectResult(true)
	}

	envelope := snap.FadeEnvelope(now)
	frame.ScaleBrightness(envelope * snap.Brightness)

	if err := l.ctrl.Show(); err != nil {
		l.logger.Error("pixel sink push failed", zap.Error(err))
	}
	l.hub.PublishFrame(frame)
}

// ensureEffect instantiates a fresh effect instance and calls
// OnLayoutChange whenever the active class changes; switching effects
// invalidates any per-layout caches the old instance held.
func (l *Loop) ensureEffect(class string) {
	if class == l.activeClass && l.activeEffect != nil {
		return
	}
	if class == "" {
		class = "SingleColor"
	}
	e, err := l.state.Registry().New(class)
	if err != nil {
		l.logger.Error("unknown effect class at activation", zap.String("effect", class), zap.Error(err))
		e, _ = l.state.Registry().New("SingleColor")
		class = "SingleColor"
	}
	e.OnLayoutChange(l.ctrl.Layout())
	l.activeEffect = e
	l.activeClass = class
	l.effectStart = time.Now()
}

// renderSafely calls the active effect's Render, recovering from a
// panic: the tick produces a black frame and the error is recorded,
// never propagated out of the loop.
func (l *Loop) renderSafely(frame layout.Frame, snap state.Snapshot) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("effect panicked", zap.String("effect", snap.EffectClass), zap.Any("panic", r))
			ok = false
		}
	}()
	ms := time.Since(l.effectStart).Milliseconds()
	l.activeEffect.Render(frame, l.ctrl.Layout(), ms, snap.Params)
	return true
}

func (l *Loop) blackout() error {
	frame := l.ctrl.Frame()
	frame.Clear()
	if err := l.ctrl.Show(); err != nil {
		return fmt.Errorf("render: blackout push failed: %w", err)
	}
	return nil
}

// fpsCounter tracks a rolling window of recent tick durations and
// reports the achieved rate over that window, exposed via GET /state
// and the debug FPS log.
type fpsCounter struct {
	mu     sync.Mutex
	window [32]time.Duration
	idx    int
	filled int
}

func (f *fpsCounter) record(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.window[f.idx] = d
	f.idx = (f.idx + 1) % len(f.window)
	if f.filled < len(f.window) {
		f.filled++
	}
}

func (f *fpsCounter) rate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filled == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < f.filled; i++ {
		total += f.window[i]
	}
	avg := total / time.Duration(f.filled)
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

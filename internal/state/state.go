// Package state owns GlobalState, the single mutex-guarded object the
// control plane mutates and the render loop snapshots every tick: one
// struct, one lock, readers take a snapshot, writers mutate in place.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/wyrmlight/ledcore/internal/colorfx"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/preset"
)

const fadeDuration = 300 * time.Millisecond

// fallbackEffect is what the render state degrades to after repeated
// effect failures: a solid black frame that keeps the loop ticking.
const fallbackEffect = "SingleColor"

// Snapshot is the immutable view the render loop reads under lock and
// then works from without holding the lock for the rest of the tick.
type Snapshot struct {
	EffectClass      string
	Params           effect.Params
	Brightness       float64
	PowerState       bool
	TargetPowerState bool
	FadeStart        time.Time
	FadeActive       bool
	ActivePresetID   *int64
	EffectFault      bool
	Generation       uint64
}

// FadeEnvelope returns the [0,1] brightness multiplier for a power fade
// in progress at instant now. The envelope is linear over 300ms: off to
// on rises with progress, on to off falls with it.
func (s Snapshot) FadeEnvelope(now time.Time) float64 {
	if !s.FadeActive {
		if s.PowerState {
			return 1
		}
		return 0
	}
	progress := float64(now.Sub(s.FadeStart)) / float64(fadeDuration)
	if progress >= 1 {
		progress = 1
	}
	if s.TargetPowerState {
		return progress
	}
	return 1 - progress
}

// GlobalState is the single source of truth for effect selection,
// parameters, brightness, power, and presets. All fields are guarded by
// mu; Generation increments on every mutation so callers can detect
// whether a snapshot is stale without re-locking.
type GlobalState struct {
	mu sync.Mutex

	effectClass      string
	params           effect.Params
	brightness       float64
	powerState       bool
	targetPowerState bool
	fadeStart        time.Time
	fadeActive       bool
	activePresetID   *int64
	effectFault      bool
	consecutiveFails int
	generation       uint64

	registry *effect.Registry
	presets  *preset.Store
}

// New builds a GlobalState with the given default effect active and
// power on.
func New(registry *effect.Registry, presets *preset.Store, defaultEffect string) (*GlobalState, error) {
	desc, ok := registry.Descriptor(defaultEffect)
	if !ok {
		return nil, fmt.Errorf("default effect %q not registered", defaultEffect)
	}
	return &GlobalState{
		effectClass:      defaultEffect,
		params:           effect.DefaultsFor(desc.Params),
		brightness:       1,
		powerState:       true,
		targetPowerState: true,
		registry:         registry,
		presets:          presets,
	}, nil
}

// Snapshot copies every field under lock, the single point where the
// render loop and the broadcast serializer cross the mutex boundary.
func (g *GlobalState) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		EffectClass:      g.effectClass,
		Params:           g.params.Clone(),
		Brightness:       g.brightness,
		PowerState:       g.powerState,
		TargetPowerState: g.targetPowerState,
		FadeStart:        g.fadeStart,
		FadeActive:       g.fadeActive,
		ActivePresetID:   g.activePresetID,
		EffectFault:      g.effectFault,
		Generation:       g.generation,
	}
}

// SetEffect switches the active effect class, initializing its
// parameter map from declared defaults and overlaying any supplied
// partial values. Clears the active preset.
func (g *GlobalState) SetEffect(class string, overlay effect.Params) error {
	desc, ok := g.registry.Descriptor(class)
	if !ok {
		return fmt.Errorf("unknown effect %q", class)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	params := effect.DefaultsFor(desc.Params)
	for name, v := range overlay {
		params[name] = v
	}
	g.effectClass = class
	g.params = params
	g.activePresetID = nil
	g.effectFault = false
	g.consecutiveFails = 0
	g.bump()
	return nil
}

// SetParams merges overlay into the live parameter map of the active
// effect without switching effects, clearing the active preset.
func (g *GlobalState) SetParams(overlay effect.Params) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for name, v := range overlay {
		g.params[name] = v
	}
	g.activePresetID = nil
	g.bump()
}

// SetBrightness clamps b to [0,1], clears the active preset.
func (g *GlobalState) SetBrightness(b float64) {
	if b < 0 {
		b = 0
	} else if b > 1 {
		b = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.brightness = b
	g.activePresetID = nil
	g.bump()
}

// SetPowerState requests a transition to on (true) or off (false),
// starting a fade if the target actually changes. A no-op request
// (target already equals on) does not restart an in-progress fade.
func (g *GlobalState) SetPowerState(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.targetPowerState == on && (g.fadeActive || g.powerState == on) {
		return
	}
	g.targetPowerState = on
	g.fadeStart = time.Now()
	g.fadeActive = true
	g.bump()
}

// AdvanceFade is called once per render tick to resolve a completed
// fade: powerState flips to the target exactly at fade completion. It
// takes the lock itself since it is invoked from the render loop, not
// from a request handler.
func (g *GlobalState) AdvanceFade(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.fadeActive {
		return
	}
	if now.Sub(g.fadeStart) >= fadeDuration {
		g.powerState = g.targetPowerState
		g.fadeActive = false
		g.bump()
	}
}

// RecordEffectResult tracks consecutive render-tick failures. After 5
// in a row it sets the effect_fault flag and switches the active effect
// to a solid-black fallback; the flag stays up until the user picks an
// effect again. A successful tick resets the counter.
func (g *GlobalState) RecordEffectResult(ok bool) (fallback bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ok {
		g.consecutiveFails = 0
		return false
	}
	g.consecutiveFails++
	if g.consecutiveFails < 5 {
		return false
	}
	g.effectFault = true
	g.consecutiveFails = 0
	if desc, found := g.registry.Descriptor(fallbackEffect); found {
		params := effect.DefaultsFor(desc.Params)
		if _, declared := params["color"]; declared {
			params["color"] = effect.Value{Kind: effect.KindColor, Color: colorfx.Black}
		}
		g.effectClass = fallbackEffect
		g.params = params
		g.bump()
	}
	return true
}

// ApplyPreset sets effect, parameters, and brightness in one atomic
// batch and marks the preset active.
func (g *GlobalState) ApplyPreset(p preset.Preset) error {
	desc, ok := g.registry.Descriptor(p.EffectClass)
	if !ok {
		return fmt.Errorf("unknown effect %q", p.EffectClass)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	params := effect.DefaultsFor(desc.Params)
	for name, v := range p.Parameters {
		params[name] = v
	}
	g.effectClass = p.EffectClass
	g.params = params
	g.brightness = p.Brightness
	if p.ID != 0 {
		id := p.ID
		g.activePresetID = &id
	} else {
		// ad-hoc apply (no stored preset behind it) leaves no handle
		g.activePresetID = nil
	}
	g.bump()
	return nil
}

func (g *GlobalState) bump() {
	g.generation++
}

// Registry returns the effect registry this state was constructed
// with, for handlers that need to validate class names or list
// descriptors.
func (g *GlobalState) Registry() *effect.Registry { return g.registry }

// Presets returns the bound preset store.
func (g *GlobalState) Presets() *preset.Store { return g.presets }

// Package effect declares the render-time contract every effect
// implements and a registry of concrete effects, each of which
// registers itself with a declarative descriptor at init() time.
package effect

import (
	"github.com/wyrmlight/ledcore/internal/layout"
)

// Effect is a deterministic function from (time, parameters, layout) to
// a frame of N colors. Implementations write directly into the frame
// passed to Render; they must not retain it past the call.
type Effect interface {
	// Render writes exactly layout.PixelCount() colors into frame given
	// the elapsed time (ms) since the effect became active.
	Render(frame layout.Frame, lay layout.Layout, ms int64, params Params)
	// OnLayoutChange invalidates and rebuilds any precomputed per-layout
	// tables (radial distances, coordinates). Called whenever the active
	// layout changes or the effect is (re)activated.
	OnLayoutChange(lay layout.Layout)
}

// Descriptor is the static, declarative metadata for one effect class:
// its display label and its parameter table. It carries no factory in
// the JSON view; Factory lives alongside it in registryEntry.
type Descriptor struct {
	Label  string               `json:"label"`
	Params map[string]ParamSpec `json:"parameters"`
}

// Factory builds a fresh Effect instance. Effects are stateful (caches,
// phase accumulators) so the registry hands out new instances rather
// than sharing one across activations.
type Factory func() Effect

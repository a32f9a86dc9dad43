// Package api is the control plane: HTTP handlers that read and mutate
// GlobalState, persist the result, and broadcast the relevant summary
// event. Business logic lives in Service; handlers.go keeps the fiber
// routes thin.
package api

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/broadcast"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/hal"
	"github.com/wyrmlight/ledcore/internal/layout"
	"github.com/wyrmlight/ledcore/internal/persistence"
	"github.com/wyrmlight/ledcore/internal/preset"
	"github.com/wyrmlight/ledcore/internal/render"
	"github.com/wyrmlight/ledcore/internal/state"
	"github.com/wyrmlight/ledcore/pkg/effects"
)

// SinkInfo describes which pixel sink is currently driving the strand,
// for the GET /hal introspection endpoint.
type SinkInfo struct {
	Kind    string `json:"kind"`    // mock, spi, gpio, serial
	GPIOPin int    `json:"-"`       // BCM pin number, meaningful only when Kind == "gpio"
}

// Service holds every dependency a control-plane request touches: the
// shared state object, the preset store, the persistence blob store,
// the viewer broadcaster, the active layout controller, and the render
// loop (read-only, for its FPS counter).
type Service struct {
	state    *state.GlobalState
	presets  *preset.Store
	store    *persistence.Store
	hub      *broadcast.Hub
	ctrl     *layout.Controller
	loop     *render.Loop
	sinkInfo SinkInfo
	logger   *zap.Logger

	// hexSetup is non-nil only while an operator is running the
	// interactive hex-assignment flow.
	hexSetup *layout.HexSetup
}

// NewService wires a Service from its already-constructed dependencies;
// main is responsible for building each of these in the right order at
// startup.
func NewService(st *state.GlobalState, presets *preset.Store, store *persistence.Store, hub *broadcast.Hub, ctrl *layout.Controller, loop *render.Loop, sinkInfo SinkInfo, logger *zap.Logger) *Service {
	return &Service{state: st, presets: presets, store: store, hub: hub, ctrl: ctrl, loop: loop, sinkInfo: sinkInfo, logger: logger}
}

// --- hex setup mode ---

// StartHexSetup begins (or restarts) an interactive hex-assignment
// session over the active layout's pixel count and the requested cell
// count.
func (s *Service) StartHexSetup(cellCount int) {
	s.hexSetup = layout.NewHexSetup(s.ctrl.PixelCount(), cellCount)
}

func (s *Service) HexAssign(led, cell int) error {
	if s.hexSetup == nil {
		return ClientError("hex setup is not active; POST /config/hex/reset to start one")
	}
	if err := s.hexSetup.Assign(led, cell); err != nil {
		return ClientError(err.Error())
	}
	return nil
}

func (s *Service) HexNext() (cursor int, hasMore bool, err error) {
	if s.hexSetup == nil {
		return 0, false, ClientError("hex setup is not active")
	}
	cursor, hasMore = s.hexSetup.Next()
	return cursor, hasMore, nil
}

func (s *Service) HexReset() error {
	if s.hexSetup == nil {
		cellCount := 0
		if ca, ok := s.ctrl.Layout().(layout.CellAware); ok {
			cellCount = ca.CellCount()
		}
		s.StartHexSetup(cellCount)
		return nil
	}
	s.hexSetup.Reset()
	return nil
}

func (s *Service) HexExport() (map[int][]int, error) {
	if s.hexSetup == nil {
		return nil, ClientError("hex setup is not active")
	}
	return s.hexSetup.Export(), nil
}

// --- effects ---

// EffectsView is the GET /effects response body.
type EffectsView struct {
	EffectParameters map[string]map[string]ParamView `json:"effect_parameters"`
	EffectNames      []string                         `json:"effect_names"`
	CurrentEffect    string                           `json:"current_effect"`
}

// ParamView merges a parameter's static spec with its live value, so
// the UI reads current values alongside the declared kinds.
type ParamView struct {
	Kind    effect.ParamKind `json:"kind"`
	Label   string           `json:"label"`
	Options []string         `json:"options,omitempty"`
	Value   interface{}      `json:"value"`
}

// GetEffects builds the full effects view: every registered effect's
// declared parameters, with the active effect's live values overlaid.
func (s *Service) GetEffects() EffectsView {
	snap := s.state.Snapshot()
	descriptors := s.state.Registry().Descriptors()

	view := EffectsView{
		EffectParameters: make(map[string]map[string]ParamView, len(descriptors)),
		EffectNames:      s.state.Registry().Names(),
		CurrentEffect:    snap.EffectClass,
	}
	for name, desc := range descriptors {
		params := make(map[string]ParamView, len(desc.Params))
		for pname, spec := range desc.Params {
			v := effect.DefaultsFor(map[string]effect.ParamSpec{pname: spec})[pname]
			if name == snap.EffectClass {
				if live, ok := snap.Params[pname]; ok {
					v = live
				}
			}
			params[pname] = ParamView{Kind: spec.Kind, Label: spec.Label, Options: spec.Options, Value: valueJSON(v)}
		}
		view.EffectParameters[name] = params
	}
	return view
}

func valueJSON(v effect.Value) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out interface{}
	_ = json.Unmarshal(data, &out)
	return out
}

// SetEffectRequest is the POST /effects body.
type SetEffectRequest struct {
	EffectName string                     `json:"effect_name"`
	Parameters map[string]json.RawMessage `json:"parameters"`
}

// SetEffect validates and applies a POST /effects request: unknown
// names are a 404, an effect that requires a layout the active layout
// doesn't provide is a 400 StateError, and a successful switch persists
// and broadcasts. Naming the already-active effect merges the supplied
// parameters onto the live map instead of resetting it to defaults, so
// a client tweaking one knob doesn't wipe the others.
func (s *Service) SetEffect(req SetEffectRequest) error {
	if req.EffectName == "" {
		return ClientError("effect_name is required")
	}
	if !s.state.Registry().Has(req.EffectName) {
		return NotFoundError(fmt.Sprintf("unknown effect %q", req.EffectName))
	}
	if effects.RequiresHex(req.EffectName) && s.ctrl.Layout().Kind() != layout.KindHex {
		return StateError(fmt.Sprintf("effect %q requires a hex layout", req.EffectName))
	}

	desc, _ := s.state.Registry().Descriptor(req.EffectName)
	overlay, err := effect.DecodeParams(desc.Params, req.Parameters)
	if err != nil {
		return ClientError(err.Error())
	}
	if req.EffectName == s.state.Snapshot().EffectClass {
		s.state.SetParams(overlay)
	} else if err := s.state.SetEffect(req.EffectName, overlay); err != nil {
		return NotFoundError(err.Error())
	}

	if err := s.persist(); err != nil {
		return PersistenceError(err.Error())
	}
	s.broadcastEffects()
	s.broadcastState()
	return nil
}

// --- state ---

// StateView is the GET/POST /state response body.
type StateView struct {
	PowerState       bool    `json:"power_state"`
	TargetPowerState bool    `json:"target_power_state"`
	Brightness       float64 `json:"brightness"`
	ActivePresetID   *int64  `json:"active_preset_id"`
	EffectFault      bool    `json:"effect_fault"`
	FPS              float64 `json:"fps"`
}

func (s *Service) stateView(snap state.Snapshot) StateView {
	return StateView{
		PowerState:       snap.PowerState,
		TargetPowerState: snap.TargetPowerState,
		Brightness:       snap.Brightness,
		ActivePresetID:   snap.ActivePresetID,
		EffectFault:      snap.EffectFault,
		FPS:              s.loop.FPS(),
	}
}

// GetState returns the current state view.
func (s *Service) GetState() StateView {
	return s.stateView(s.state.Snapshot())
}

// SetStateRequest is the POST /state body; both fields are optional.
type SetStateRequest struct {
	PowerState *bool    `json:"power_state"`
	Brightness *float64 `json:"brightness"`
}

// SetState applies a partial power/brightness update and returns the
// resulting state view. A persistence failure still yields the updated
// view to the caller, who decides how to combine it with the error.
func (s *Service) SetState(req SetStateRequest) (StateView, error) {
	if req.Brightness != nil {
		s.state.SetBrightness(*req.Brightness)
	}
	if req.PowerState != nil {
		s.state.SetPowerState(*req.PowerState)
	}
	view := s.GetState()
	if err := s.persist(); err != nil {
		return view, PersistenceError(err.Error())
	}
	s.broadcastState()
	return view, nil
}

// --- presets ---

// PresetRequest is the POST /presets and /presets/apply body; id is
// optional on create.
type PresetRequest struct {
	ID          int64                      `json:"id"`
	Name        string                     `json:"name"`
	EffectClass string                     `json:"effect"`
	Brightness  float64                    `json:"brightness"`
	Parameters  map[string]json.RawMessage `json:"parameters"`
}

// ListPresets returns every stored preset in creation order.
func (s *Service) ListPresets() []preset.Preset {
	return s.presets.List()
}

// CreatePreset validates the effect class, decodes parameters against
// its spec, and upserts (create if id is absent/unknown, update in
// place otherwise).
func (s *Service) CreatePreset(req PresetRequest) (preset.Preset, error) {
	desc, ok := s.state.Registry().Descriptor(req.EffectClass)
	if !ok {
		return preset.Preset{}, ClientError(fmt.Sprintf("unknown effect %q", req.EffectClass))
	}
	params, err := effect.DecodeParams(desc.Params, req.Parameters)
	if err != nil {
		return preset.Preset{}, ClientError(err.Error())
	}
	p := preset.Preset{ID: req.ID, Name: req.Name, EffectClass: req.EffectClass, Brightness: req.Brightness, Parameters: params}
	saved := s.presets.Upsert(p)

	if err := s.persist(); err != nil {
		return preset.Preset{}, PersistenceError(err.Error())
	}
	s.broadcastPresets()
	return saved, nil
}

// DeletePreset removes a preset by id, 404ing if it never existed.
func (s *Service) DeletePreset(id int64) error {
	if err := s.presets.Delete(id); err != nil {
		return NotFoundError(err.Error())
	}
	if err := s.persist(); err != nil {
		return PersistenceError(err.Error())
	}
	s.broadcastPresets()
	return nil
}

// ApplyPresetResult is the POST /presets/apply response; Success is
// false when the stored effect was unsuitable for the active layout and
// the service fell back to a safe default instead.
type ApplyPresetResult struct {
	Success bool `json:"success"`
}

// ApplyPreset looks up a preset (by id, or treats the request body
// itself as an ad-hoc preset when id is absent) and applies it in one
// batch. An effect unsuitable for the current layout falls back to
// SingleColor with default parameters at brightness 0 (a dark strand)
// and reports success:false rather than erroring.
func (s *Service) ApplyPreset(req PresetRequest) (ApplyPresetResult, error) {
	var p preset.Preset
	if req.ID != 0 {
		found, ok := s.presets.Get(req.ID)
		if !ok {
			return ApplyPresetResult{}, NotFoundError(fmt.Sprintf("preset %d not found", req.ID))
		}
		p = found
	} else {
		if req.EffectClass == "" {
			return ApplyPresetResult{}, ClientError("effect is required")
		}
		desc, ok := s.state.Registry().Descriptor(req.EffectClass)
		if !ok {
			return ApplyPresetResult{}, ClientError(fmt.Sprintf("unknown effect %q", req.EffectClass))
		}
		params, err := effect.DecodeParams(desc.Params, req.Parameters)
		if err != nil {
			return ApplyPresetResult{}, ClientError(err.Error())
		}
		p = preset.Preset{Name: req.Name, EffectClass: req.EffectClass, Brightness: req.Brightness, Parameters: params}
	}

	if effects.RequiresHex(p.EffectClass) && s.ctrl.Layout().Kind() != layout.KindHex {
		fallback := preset.Preset{EffectClass: "SingleColor", Brightness: 0}
		if err := s.state.ApplyPreset(fallback); err != nil {
			s.logger.Error("fallback preset application failed", zap.Error(err))
		}
		if err := s.persist(); err != nil {
			return ApplyPresetResult{}, PersistenceError(err.Error())
		}
		s.broadcastState()
		return ApplyPresetResult{Success: false}, nil
	}

	if err := s.state.ApplyPreset(p); err != nil {
		return ApplyPresetResult{}, StateError(err.Error())
	}
	if err := s.persist(); err != nil {
		return ApplyPresetResult{}, PersistenceError(err.Error())
	}
	s.broadcastState()
	s.broadcastEffects()
	return ApplyPresetResult{Success: true}, nil
}

// --- config / hal ---

// GetConfig returns the active layout descriptor for GET /config.
func (s *Service) GetConfig() layout.Descriptor {
	return s.ctrl.Layout().Descriptor()
}

// HALView is the GET /hal response: detected board, the active pixel
// sink, and (for a GPIO sink) the header pin it's wired to.
type HALView struct {
	Board *hal.BoardInfo `json:"board,omitempty"`
	Sink  SinkInfo       `json:"sink"`
	Pin   *hal.PinInfo   `json:"pin,omitempty"`
}

// GetHAL reports the detected board (nil when not running on one), the
// active pixel sink, and the sink's GPIO pin capabilities when it is
// bit-banging a strand directly off the header.
func (s *Service) GetHAL() HALView {
	board, err := hal.DetectBoard()
	if err != nil {
		board = nil
	}
	var pin *hal.PinInfo
	if s.sinkInfo.Kind == "gpio" {
		pin = hal.GetPinByBCM(s.sinkInfo.GPIOPin)
	}
	return HALView{Board: board, Sink: s.sinkInfo, Pin: pin}
}

// --- persistence + broadcast plumbing ---

// persist writes the current GlobalState + preset store to the blob
// store. A failure is returned to the caller as-is: the already-applied
// in-memory mutation stands, but the triggering request still surfaces
// the failure as a 500.
func (s *Service) persist() error {
	snap := s.state.Snapshot()

	paramsRaw, err := persistence.EncodeParams(snap.Params)
	if err != nil {
		s.logger.Error("encode parameters for persistence", zap.Error(err))
		return err
	}

	presets := s.presets.List()
	presetBlobs := make([]persistence.PresetBlob, 0, len(presets))
	for _, p := range presets {
		pb, err := persistence.PresetToBlob(p)
		if err != nil {
			s.logger.Error("encode preset for persistence", zap.Int64("preset_id", p.ID), zap.Error(err))
			continue
		}
		presetBlobs = append(presetBlobs, pb)
	}

	blob := persistence.Blob{
		CurrentEffect:      snap.EffectClass,
		ParametersByEffect: map[string]map[string]json.RawMessage{snap.EffectClass: paramsRaw},
		Brightness:         snap.Brightness,
		PowerState:         snap.TargetPowerState,
		ActivePresetID:     snap.ActivePresetID,
		Presets:            presetBlobs,
	}
	if err := s.store.Save(blob); err != nil {
		s.logger.Error("persist state blob", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) broadcastState() {
	if err := s.hub.BroadcastEvent("state_update", s.GetState()); err != nil {
		s.logger.Warn("broadcast state_update failed", zap.Error(err))
	}
}

func (s *Service) broadcastEffects() {
	if err := s.hub.BroadcastEvent("effects_update", s.GetEffects()); err != nil {
		s.logger.Warn("broadcast effects_update failed", zap.Error(err))
	}
}

func (s *Service) broadcastPresets() {
	presets := s.presets.List()
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })
	if err := s.hub.BroadcastEvent("presets_update", presets); err != nil {
		s.logger.Warn("broadcast presets_update failed", zap.Error(err))
	}
}

// ConnectSnapshot returns the three on-connect packets a new viewer
// needs (state_update, effects_update, presets_update), encoded as raw
// Socket.IO event frames.
func (s *Service) ConnectSnapshot() []string {
	packets := make([]string, 0, 3)
	if p, err := broadcast.EncodeEvent("state_update", s.GetState()); err == nil {
		packets = append(packets, p)
	}
	if p, err := broadcast.EncodeEvent("effects_update", s.GetEffects()); err == nil {
		packets = append(packets, p)
	}
	presets := s.presets.List()
	if p, err := broadcast.EncodeEvent("presets_update", presets); err == nil {
		packets = append(packets, p)
	}
	return packets
}

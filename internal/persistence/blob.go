// Package persistence loads and saves the single JSON configuration
// blob backing GlobalState and the preset store. Writes are atomic
// (write-temp, rename) so a crash mid-save never leaves a torn file.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/preset"
)

// Blob is the on-disk representation of GlobalState plus the preset
// store.
type Blob struct {
	CurrentEffect      string                                 `json:"current_effect"`
	ParametersByEffect map[string]map[string]json.RawMessage `json:"parameters_by_effect"`
	Brightness         float64                                `json:"brightness"`
	PowerState         bool                                   `json:"power_state"`
	ActivePresetID     *int64                                 `json:"active_preset_id"`
	Presets            []PresetBlob                           `json:"presets"`
}

// PresetBlob is a preset.Preset with its parameters kept as raw JSON,
// since effect.Value's wire shape depends on a ParamSpec that only the
// registry knows; decoding straight into effect.Params would lose every
// field tagged json:"-". ToPreset/PresetToBlob bridge the two shapes
// the same way DecodeParams/EncodeParams do for the live effect.
type PresetBlob struct {
	ID          int64                      `json:"id"`
	Name        string                     `json:"name"`
	EffectClass string                     `json:"effect_class"`
	Brightness  float64                    `json:"brightness"`
	Parameters  map[string]json.RawMessage `json:"parameters"`
}

// ToPreset decodes a PresetBlob's raw parameters against the current
// registry, dropping any the effect no longer declares.
func (pb PresetBlob) ToPreset(registry *effect.Registry) (preset.Preset, error) {
	params, err := DecodeParams(registry, pb.EffectClass, pb.Parameters)
	if err != nil {
		return preset.Preset{}, err
	}
	return preset.Preset{
		ID:          pb.ID,
		Name:        pb.Name,
		EffectClass: pb.EffectClass,
		Brightness:  pb.Brightness,
		Parameters:  params,
	}, nil
}

// PresetToBlob encodes a preset.Preset's live parameters to the raw-JSON
// form Blob persists.
func PresetToBlob(p preset.Preset) (PresetBlob, error) {
	params, err := EncodeParams(p.Parameters)
	if err != nil {
		return PresetBlob{}, err
	}
	return PresetBlob{
		ID:          p.ID,
		Name:        p.Name,
		EffectClass: p.EffectClass,
		Brightness:  p.Brightness,
		Parameters:  params,
	}, nil
}

// Store wraps a fixed file path with an atomic Save and a Load that
// returns a zero-value Blob for a missing file and an error for one that
// cannot be read or parsed.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore binds a Store to path, creating its parent directory if
// necessary.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("persistence: create directory %s: %w", dir, err)
		}
	}
	return &Store{path: path}, nil
}

// Load reads the blob from disk. A missing file is not an error: it
// returns a zero-value Blob so callers fall back to in-code defaults.
func (s *Store) Load() (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Blob{}, nil
		}
		return Blob{}, fmt.Errorf("persistence: read %s: %w", s.path, err)
	}

	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return Blob{}, fmt.Errorf("persistence: parse %s: %w", s.path, err)
	}
	return b, nil
}

// Save writes b atomically: marshal to a temp file in the same
// directory, fsync, then rename over the destination. The rename is
// what makes concurrent readers never observe a partially written file.
func (s *Store) Save(b Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("persistence: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("persistence: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("persistence: rename into place: %w", err)
	}
	return nil
}

// DecodeParams decodes one effect's persisted raw parameter map against
// its current registered spec, dropping any names the effect no longer
// declares.
func DecodeParams(registry *effect.Registry, effectClass string, raw map[string]json.RawMessage) (effect.Params, error) {
	desc, ok := registry.Descriptor(effectClass)
	if !ok {
		return effect.DefaultsFor(nil), nil
	}
	return effect.DecodeParams(desc.Params, raw)
}

// EncodeParams converts a live Params map to the raw-JSON form Blob
// persists, so each effect's saved shape tracks whatever kind its
// current spec declares.
func EncodeParams(p effect.Params) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(p))
	for name, v := range p {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("persistence: encode parameter %q: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

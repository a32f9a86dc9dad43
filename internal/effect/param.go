package effect

import (
	"encoding/json"
	"fmt"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

// ParamKind identifies the wire type a parameter accepts.
type ParamKind string

const (
	KindFloat     ParamKind = "float"
	KindColor     ParamKind = "color"
	KindEnum      ParamKind = "enum"
	KindColorList ParamKind = "color_list"
)

// ParamSpec declares one effect parameter: its kind, default, and (for
// enums) the fixed ordered list of accepted labels.
type ParamSpec struct {
	Kind    ParamKind   `json:"kind"`
	Label   string      `json:"label"`
	Default interface{} `json:"default"`
	Options []string    `json:"options,omitempty"` // enum only
}

// Value holds one live parameter value, tagged with its kind so JSON
// (de)serialization and validation stay symmetric with Spec.
type Value struct {
	Kind      ParamKind       `json:"-"`
	Float     float64         `json:"-"`
	Color     colorfx.Color   `json:"-"`
	Enum      string          `json:"-"`
	ColorList []colorfx.Color `json:"-"`
}

// MarshalJSON emits the value in whichever shape its Kind implies: a bare
// number for float, an {r,g,b} object for color, a bare string for enum,
// an array of {r,g,b} objects for color_list.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindFloat:
		return json.Marshal(v.Float)
	case KindColor:
		return json.Marshal(colorJSON{R: v.Color.R, G: v.Color.G, B: v.Color.B})
	case KindEnum:
		return json.Marshal(v.Enum)
	case KindColorList:
		out := make([]colorJSON, len(v.ColorList))
		for i, c := range v.ColorList {
			out[i] = colorJSON{R: c.R, G: c.G, B: c.B}
		}
		return json.Marshal(out)
	default:
		return json.Marshal(nil)
	}
}

type colorJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// decodeValue interprets a raw JSON value against spec's declared kind,
// since the wire format carries no type tag of its own.
func decodeValue(spec ParamSpec, raw json.RawMessage) (Value, error) {
	switch spec.Kind {
	case KindFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Value{}, fmt.Errorf("expected number: %w", err)
		}
		return Value{Kind: KindFloat, Float: f}, nil
	case KindColor:
		var cj colorJSON
		if err := json.Unmarshal(raw, &cj); err != nil {
			return Value{}, fmt.Errorf("expected {r,g,b}: %w", err)
		}
		return Value{Kind: KindColor, Color: colorfx.RGB(cj.R, cj.G, cj.B)}, nil
	case KindEnum:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("expected string: %w", err)
		}
		return Value{Kind: KindEnum, Enum: s}, nil
	case KindColorList:
		var cjs []colorJSON
		if err := json.Unmarshal(raw, &cjs); err != nil {
			return Value{}, fmt.Errorf("expected array of {r,g,b}: %w", err)
		}
		cl := make([]colorfx.Color, len(cjs))
		for i, cj := range cjs {
			cl[i] = colorfx.RGB(cj.R, cj.G, cj.B)
		}
		return Value{Kind: KindColorList, ColorList: cl}, nil
	default:
		return Value{}, fmt.Errorf("unknown parameter kind %q", spec.Kind)
	}
}

// DecodeParams parses a raw {name: value} JSON object against a spec
// table, used by POST /effects to merge partial parameter updates.
func DecodeParams(specs map[string]ParamSpec, raw map[string]json.RawMessage) (Params, error) {
	out := make(Params, len(raw))
	for name, msg := range raw {
		spec, ok := specs[name]
		if !ok {
			// Unknown parameter names are ignored so a stale UI build
			// degrades gracefully instead of erroring.
			continue
		}
		v, err := decodeValue(spec, msg)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		v, err = Validate(spec, v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Params is the live parameter map for one effect instance, keyed by
// parameter name.
type Params map[string]Value

// Clone returns an independent copy; effects and the global state object
// must never share a Params map across goroutines.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if v.ColorList != nil {
			cl := make([]colorfx.Color, len(v.ColorList))
			copy(cl, v.ColorList)
			v.ColorList = cl
		}
		out[k] = v
	}
	return out
}

// DefaultsFor builds a Params map from a spec table, one Value per
// declared parameter. Switching effects starts from this map before
// overlaying any caller-supplied values.
func DefaultsFor(specs map[string]ParamSpec) Params {
	out := make(Params, len(specs))
	for name, spec := range specs {
		out[name] = defaultValue(spec)
	}
	return out
}

func defaultValue(spec ParamSpec) Value {
	switch spec.Kind {
	case KindFloat:
		f, _ := spec.Default.(float64)
		return Value{Kind: KindFloat, Float: f}
	case KindColor:
		if c, ok := spec.Default.(colorfx.Color); ok {
			return Value{Kind: KindColor, Color: c}
		}
		return Value{Kind: KindColor}
	case KindEnum:
		s, _ := spec.Default.(string)
		return Value{Kind: KindEnum, Enum: s}
	case KindColorList:
		if cl, ok := spec.Default.([]colorfx.Color); ok {
			out := make([]colorfx.Color, len(cl))
			copy(out, cl)
			return Value{Kind: KindColorList, ColorList: out}
		}
		return Value{Kind: KindColorList, ColorList: []colorfx.Color{colorfx.Black}}
	default:
		return Value{}
	}
}

// Validate checks one incoming value against its spec and returns a
// normalized Value, clamping floats and rejecting unknown enum labels.
func Validate(spec ParamSpec, raw Value) (Value, error) {
	switch spec.Kind {
	case KindFloat:
		f := raw.Float
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		return Value{Kind: KindFloat, Float: f}, nil
	case KindColor:
		return Value{Kind: KindColor, Color: raw.Color}, nil
	case KindEnum:
		for _, opt := range spec.Options {
			if opt == raw.Enum {
				return Value{Kind: KindEnum, Enum: raw.Enum}, nil
			}
		}
		return Value{}, fmt.Errorf("invalid enum value %q, want one of %v", raw.Enum, spec.Options)
	case KindColorList:
		if len(raw.ColorList) == 0 {
			return Value{}, fmt.Errorf("color_list must have at least one color")
		}
		return Value{Kind: KindColorList, ColorList: raw.ColorList}, nil
	default:
		return Value{}, fmt.Errorf("unknown parameter kind %q", spec.Kind)
	}
}

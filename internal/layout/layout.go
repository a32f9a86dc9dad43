package layout

// Kind identifies which physical geometry a Layout implements.
type Kind string

const (
	KindScale Kind = "scale"
	KindHex   Kind = "hex"
)

// Layout maps a logical pixel index onto a physical strand position and
// back, for one of the two supported geometries. Implementations are
// read-only after construction; effects cache derived per-layout values
// (radial distances, coordinates) and rebuild those caches in
// OnLayoutChange.
type Layout interface {
	Kind() Kind
	PixelCount() int
	// Bounds returns the logical width/height, used for UI/config only.
	Bounds() (width, height float64)
	// Coord returns the logical (x,y) position of strand index i.
	Coord(i int) (x, y float64)
	// Center returns the radial effect anchor point: (width/2, height/2)
	// for Scale layouts, the centroid of cell positions for Hex layouts.
	Center() (x, y float64)
	// Descriptor returns the wire-format layout descriptor for GET /config.
	Descriptor() Descriptor
}

// CellAware is implemented by layouts whose pixels are grouped into
// discrete cells (currently only Hex). Effects that need per-cell
// behavior (RandomColorHex) type-assert a Layout to this interface and
// fail gracefully when it isn't satisfied.
type CellAware interface {
	CellCount() int
	// CellOf returns the cell index owning strand index i.
	CellOf(i int) int
	// LEDsInCell returns the ordered strand indices belonging to a cell.
	LEDsInCell(cell int) []int
}

// Descriptor is the JSON-serializable layout description returned by
// GET /config.
type Descriptor struct {
	Type Kind `json:"type"`

	// Scale fields.
	XCount      int     `json:"x_count,omitempty"`
	YCount      int     `json:"y_count,omitempty"`
	PanelCount  int     `json:"panel_count,omitempty"`
	Spacing     float64 `json:"spacing,omitempty"`
	ScaleLength float64 `json:"scale_length,omitempty"`
	ScaleWidth  float64 `json:"scale_width,omitempty"`

	// Hex fields.
	Hexagons []HexCellDescriptor `json:"hexagons,omitempty"`
}

// HexCellDescriptor is the wire representation of one hex cell.
type HexCellDescriptor struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	OrderedLEDs []int   `json:"ordered_leds"`
}

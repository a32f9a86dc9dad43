package layout

import "fmt"

// HexCell is one hexagonal cell: an axial (x,y) position (y may be a
// half-integer for an offset row) and the ordered strand indices that
// ring it, spiral-assigned at setup.
type HexCell struct {
	X, Y float64
	LEDs []int
}

// Hex is the hexagonal-tiling layout. The LED->cell inverse is computed
// once at construction and cached for the lifetime of the layout value.
type Hex struct {
	cells     []HexCell
	ledCount  int
	ledToCell map[int]int
}

// NewHex builds a Hex layout from a set of cells and the total strand
// length. Every strand index in [0, ledCount) must appear in exactly one
// cell's LEDs list; NewHex does not itself enforce that. Callers check
// with Validate before relying on the mapping.
func NewHex(cells []HexCell, ledCount int) *Hex {
	h := &Hex{
		cells:    cells,
		ledCount: ledCount,
	}
	h.rebuildIndex()
	return h
}

func (h *Hex) rebuildIndex() {
	h.ledToCell = make(map[int]int, h.ledCount)
	for ci, cell := range h.cells {
		for _, led := range cell.LEDs {
			h.ledToCell[led] = ci
		}
	}
}

// Validate checks the one-cell-per-LED invariant, returning an error
// naming the first violation found.
func (h *Hex) Validate() error {
	seen := make(map[int]bool, h.ledCount)
	for ci, cell := range h.cells {
		for _, led := range cell.LEDs {
			if led < 0 || led >= h.ledCount {
				return fmt.Errorf("cell %d references out-of-range led %d", ci, led)
			}
			if seen[led] {
				return fmt.Errorf("led %d assigned to more than one cell", led)
			}
			seen[led] = true
		}
	}
	if len(seen) != h.ledCount {
		return fmt.Errorf("hex layout covers %d of %d leds", len(seen), h.ledCount)
	}
	return nil
}

func (h *Hex) Kind() Kind { return KindHex }

func (h *Hex) PixelCount() int { return h.ledCount }

func (h *Hex) Bounds() (float64, float64) {
	if len(h.cells) == 0 {
		return 0, 0
	}
	minX, maxX := h.cells[0].X, h.cells[0].X
	minY, maxY := h.cells[0].Y, h.cells[0].Y
	for _, c := range h.cells {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}
	return maxX - minX, maxY - minY
}

// Center is the centroid of cell positions.
func (h *Hex) Center() (float64, float64) {
	if len(h.cells) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, c := range h.cells {
		sx += c.X
		sy += c.Y
	}
	n := float64(len(h.cells))
	return sx / n, sy / n
}

// Coord returns the position of the cell owning strand index i.
func (h *Hex) Coord(i int) (float64, float64) {
	ci, ok := h.ledToCell[i]
	if !ok {
		return 0, 0
	}
	c := h.cells[ci]
	return c.X, c.Y
}

func (h *Hex) CellCount() int { return len(h.cells) }

func (h *Hex) CellOf(i int) int {
	ci, ok := h.ledToCell[i]
	if !ok {
		return -1
	}
	return ci
}

func (h *Hex) LEDsInCell(cell int) []int {
	if cell < 0 || cell >= len(h.cells) {
		return nil
	}
	return h.cells[cell].LEDs
}

func (h *Hex) Descriptor() Descriptor {
	d := Descriptor{Type: KindHex, Hexagons: make([]HexCellDescriptor, len(h.cells))}
	for i, c := range h.cells {
		d.Hexagons[i] = HexCellDescriptor{X: c.X, Y: c.Y, OrderedLEDs: c.LEDs}
	}
	return d
}

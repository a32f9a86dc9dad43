package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// hexFile is the on-disk shape of an assembled hex layout, the same
// JSON the Descriptor for GET /config carries and HexSetup's export
// feeds into.
type hexFile struct {
	Hexagons []HexCellDescriptor `json:"hexagons"`
}

// LoadHexFile reads an exported hex layout from path and builds a
// validated Hex from it. The strand length is the total LED count
// across all cells.
func LoadHexFile(path string) (*Hex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: read hex layout %s: %w", path, err)
	}

	var f hexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("layout: parse hex layout %s: %w", path, err)
	}
	if len(f.Hexagons) == 0 {
		return nil, fmt.Errorf("layout: hex layout %s declares no cells", path)
	}

	cells := make([]HexCell, len(f.Hexagons))
	ledCount := 0
	for i, hc := range f.Hexagons {
		cells[i] = HexCell{X: hc.X, Y: hc.Y, LEDs: hc.OrderedLEDs}
		ledCount += len(hc.OrderedLEDs)
	}

	h := NewHex(cells, ledCount)
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("layout: hex layout %s: %w", path, err)
	}
	return h, nil
}

// SaveHexFile writes a Hex layout's cells to path as the same JSON
// LoadHexFile reads, used by the hex setup export flow.
func SaveHexFile(path string, h *Hex) error {
	d := h.Descriptor()
	data, err := json.MarshalIndent(hexFile{Hexagons: d.Hexagons}, "", "  ")
	if err != nil {
		return fmt.Errorf("layout: encode hex layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("layout: write hex layout %s: %w", path, err)
	}
	return nil
}

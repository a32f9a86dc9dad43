package layout

import (
	"fmt"
	"sort"
	"sync"
)

// HexSetup is the interactive cell assigner: it
// walks a cursor across every strand index and lets an operator assign
// each one to a hex cell, one at a time, before the final Hex layout is
// built from the export.
type HexSetup struct {
	mu         sync.Mutex
	ledCount   int
	cellCount  int
	assignment map[int]int // led -> cell, only entries made so far
	cursor     int
}

// NewHexSetup starts a setup session over ledCount strand positions and
// cellCount declared cells.
func NewHexSetup(ledCount, cellCount int) *HexSetup {
	return &HexSetup{
		ledCount:   ledCount,
		cellCount:  cellCount,
		assignment: make(map[int]int),
	}
}

// Cursor returns the strand index currently awaiting assignment.
func (s *HexSetup) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Assign records that led belongs to cell and does not itself move the
// cursor; call Next to advance.
func (s *HexSetup) Assign(led, cell int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if led < 0 || led >= s.ledCount {
		return fmt.Errorf("led %d out of range [0,%d)", led, s.ledCount)
	}
	if cell < 0 || cell >= s.cellCount {
		return fmt.Errorf("cell %d out of range [0,%d)", cell, s.cellCount)
	}
	s.assignment[led] = cell
	return nil
}

// Next advances the cursor to the next unassigned strand index after it,
// scanning toward the end of the strand without wrapping. Returns the
// unchanged cursor and false when no unassigned index remains after it.
func (s *HexSetup) Next() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := s.cursor + 1; i < s.ledCount; i++ {
		if _, ok := s.assignment[i]; !ok {
			s.cursor = i
			return i, true
		}
	}
	return s.cursor, false
}

// Reset clears every assignment and returns the cursor to 0.
func (s *HexSetup) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignment = make(map[int]int)
	s.cursor = 0
}

// Export produces a cell->leds table from the assignments made so far.
// Cells with no assigned LEDs are omitted. Within a cell, LEDs are
// ordered by ascending strand index, which is assignment order when the
// operator walks the strand with the cursor.
func (s *HexSetup) Export() map[int][]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int][]int)
	leds := make([]int, 0, len(s.assignment))
	for led := range s.assignment {
		leds = append(leds, led)
	}
	sort.Ints(leds)
	for _, led := range leds {
		cell := s.assignment[led]
		out[cell] = append(out[cell], led)
	}
	return out
}

// Complete reports whether every strand index has been assigned.
func (s *HexSetup) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignment) == s.ledCount
}

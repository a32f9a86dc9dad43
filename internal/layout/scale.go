package layout

// Scale is the rectangular "scale panel" layout: a set of
// identical panels, each wired in a boustrophedon (back-and-forth)
// pattern across main columns and the interstitial columns between them.
//
// Within a panel, traversal order is: main column 0, interstitial column
// (0,1), main column 1, interstitial column (1,2), ..., main column
// XCount-1 (no trailing interstitial). Main columns are walked
// bottom-to-top (row 0 first); interstitial columns are walked
// top-to-bottom. Panels are concatenated in strand order.
type Scale struct {
	XCount      int
	YCount      int
	PanelCount  int
	Spacing     float64
	ScaleLength float64
	ScaleWidth  float64

	perPanel int
}

// NewScale builds a Scale layout from the given dimensions; it does not
// validate them.
func NewScale(xCount, yCount, panelCount int, spacing, scaleLength, scaleWidth float64) *Scale {
	s := &Scale{
		XCount:      xCount,
		YCount:      yCount,
		PanelCount:  panelCount,
		Spacing:     spacing,
		ScaleLength: scaleLength,
		ScaleWidth:  scaleWidth,
	}
	s.perPanel = xCount*yCount + (xCount-1)*yCount
	return s
}

func (s *Scale) Kind() Kind { return KindScale }

func (s *Scale) PixelCount() int { return s.perPanel * s.PanelCount }

func (s *Scale) Bounds() (float64, float64) {
	return float64(s.XCount), float64(s.YCount) * float64(s.PanelCount)
}

func (s *Scale) Center() (float64, float64) {
	w, h := s.Bounds()
	return w / 2, h / 2
}

// Coord returns the global (x,y) of strand index i: panels stack
// vertically, so y is offset by panel*YCount. Interstitial
// columns report a half-integer x between the two main columns they sit
// between.
func (s *Scale) Coord(i int) (float64, float64) {
	if s.perPanel == 0 {
		return 0, 0
	}
	panel := i / s.perPanel
	local := i % s.perPanel
	x, y := s.decodeLocal(local)
	return x, y + float64(panel*s.YCount)
}

// Panel returns which panel strand index i belongs to.
func (s *Scale) Panel(i int) int {
	if s.perPanel == 0 {
		return 0
	}
	return i / s.perPanel
}

// Encode returns the global strand index for a given panel, main column x,
// row y, and whether (x,y) addresses the interstitial column following x
// rather than main column x itself.
func (s *Scale) Encode(panel, x, y int, interstitial bool) int {
	block := 2 * s.YCount
	local := x * block
	if interstitial {
		local += s.YCount + (s.YCount - 1 - y)
	} else {
		local += y
	}
	return panel*s.perPanel + local
}

func (s *Scale) decodeLocal(local int) (float64, float64) {
	if s.XCount <= 1 {
		return 0, float64(local)
	}
	lastColStart := (s.XCount - 1) * 2 * s.YCount
	if local >= lastColStart {
		y := local - lastColStart
		return float64(s.XCount - 1), float64(y)
	}
	block := 2 * s.YCount
	x := local / block
	rem := local % block
	if rem < s.YCount {
		return float64(x), float64(rem)
	}
	rem2 := rem - s.YCount
	y := s.YCount - 1 - rem2
	return float64(x) + 0.5, float64(y)
}

func (s *Scale) Descriptor() Descriptor {
	return Descriptor{
		Type:        KindScale,
		XCount:      s.XCount,
		YCount:      s.YCount,
		PanelCount:  s.PanelCount,
		Spacing:     s.Spacing,
		ScaleLength: s.ScaleLength,
		ScaleWidth:  s.ScaleWidth,
	}
}

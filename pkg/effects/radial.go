package effects

import (
	"math"

	"github.com/wyrmlight/ledcore/internal/layout"
)

// radialCache precomputes, per LED, the distance from and angle around a
// layout's center point. Effects rebuild it in OnLayoutChange and reuse
// it across ticks until the layout changes again.
type radialCache struct {
	dist  []float64
	angle []float64
	maxR  float64
}

func buildRadialCache(lay layout.Layout) radialCache {
	n := lay.PixelCount()
	cx, cy := lay.Center()
	c := radialCache{
		dist:  make([]float64, n),
		angle: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x, y := lay.Coord(i)
		dx, dy := x-cx, y-cy
		d := math.Hypot(dx, dy)
		c.dist[i] = d
		c.angle[i] = math.Atan2(dy, dx)
		if d > c.maxR {
			c.maxR = d
		}
	}
	if c.maxR == 0 {
		c.maxR = 1
	}
	return c
}

// normDist returns the LED's distance from center scaled to [0,1].
func (c radialCache) normDist(i int) float64 {
	if i < 0 || i >= len(c.dist) {
		return 0
	}
	return c.dist[i] / c.maxR
}

// normAngle returns the LED's angle around center scaled to [0,1).
func (c radialCache) normAngle(i int) float64 {
	if i < 0 || i >= len(c.angle) {
		return 0
	}
	a := c.angle[i] / (2 * math.Pi)
	if a < 0 {
		a += 1
	}
	return a
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}

package physics

import (
	"math"
	"sync/atomic"

	"github.com/kasuganosora/tilecombat/game/geom"
)

// Segment is a line blocker in camera coordinates.
type Segment struct {
	A, B geom.Vec2
}

// Grid is the ray world of one map: blocked tiles plus free-form
// polygons and walls.
//
// Blocked tiles are walked in tile space. A ray reports one TileBlocker
// collision where it enters a run of blocked tiles and another where it
// leaves it, so the second TileBlocker hit marks the far side of the
// first wall. Polygons and lines report one collision per edge crossed.
type Grid struct {
	width, height int
	blocked       []bool
	proj          geom.Projection

	grounds  []*geom.Polygon
	polygons []*geom.Polygon
	lines    []Segment

	disposed atomic.Bool
}

// NewGrid creates an empty ray world of w×h tiles.
func NewGrid(w, h int, proj geom.Projection) *Grid {
	if proj == nil {
		proj = geom.Orthogonal{}
	}
	return &Grid{
		width:   w,
		height:  h,
		blocked: make([]bool, w*h),
		proj:    proj,
	}
}

func (g *Grid) SetBlocked(x, y int, v bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.blocked[x+y*g.width] = v
}

// Blocked reports whether (x, y) blocks sight. Tiles outside the map do not.
func (g *Grid) Blocked(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	return g.blocked[x+y*g.width]
}

func (g *Grid) AddGroundPolygon(p *geom.Polygon) { g.grounds = append(g.grounds, p) }
func (g *Grid) AddPolygon(p *geom.Polygon)       { g.polygons = append(g.polygons, p) }
func (g *Grid) AddLine(a, b geom.Vec2)           { g.lines = append(g.lines, Segment{A: a, B: b}) }

// Dispose tears the world down. RayCast returns nothing afterwards.
func (g *Grid) Dispose()    { g.disposed.Store(true) }
func (g *Grid) Valid() bool { return g != nil && !g.disposed.Load() }

// RayCast implements RayCaster.
func (g *Grid) RayCast(from, to geom.Vec2) []Collision {
	if !g.Valid() {
		return nil
	}
	var out []Collision
	out = g.castTiles(from, to, out)
	out = castPolygons(from, to, g.grounds, GroundPolygonBlocker, out)
	out = castPolygons(from, to, g.polygons, PolygonBlocker, out)
	for _, l := range g.lines {
		if f, ok := geom.SegmentIntersection(from, to, l.A, l.B); ok && f > 0 {
			out = append(out, Collision{Point: from.Lerp(to, f), Fraction: f, Type: LineBlocker})
		}
	}
	return out
}

func castPolygons(from, to geom.Vec2, polys []*geom.Polygon, typ BlockerType, out []Collision) []Collision {
	for _, p := range polys {
		p.Edges(func(a, b geom.Vec2) {
			if f, ok := geom.SegmentIntersection(from, to, a, b); ok && f > 0 {
				out = append(out, Collision{Point: from.Lerp(to, f), Fraction: f, Type: typ, Polygon: p})
			}
		})
	}
	return out
}

// castTiles walks the tiles under the ray (Amanatides & Woo). The
// projection is affine, so fractions along the tile-space ray equal
// fractions along the camera-space ray.
func (g *Grid) castTiles(from, to geom.Vec2, out []Collision) []Collision {
	a := g.proj.ToTiles(from)
	b := g.proj.ToTiles(to)
	dx, dy := b.X-a.X, b.Y-a.Y

	cx, cy := int(math.Floor(a.X)), int(math.Floor(a.Y))
	stepX, tMaxX, tDeltaX := axis(a.X, dx, cx)
	stepY, tMaxY, tDeltaY := axis(a.Y, dy, cy)

	inside := g.Blocked(cx, cy)
	for {
		var t float64
		if tMaxX < tMaxY {
			t = tMaxX
			cx += stepX
			tMaxX += tDeltaX
		} else {
			t = tMaxY
			cy += stepY
			tMaxY += tDeltaY
		}
		if t > 1 || math.IsInf(t, 1) {
			return out
		}
		now := g.Blocked(cx, cy)
		if now != inside && t > 0 {
			out = append(out, Collision{Point: from.Lerp(to, t), Fraction: t, Type: TileBlocker})
		}
		inside = now
	}
}

func axis(start, d float64, cell int) (step int, tMax, tDelta float64) {
	switch {
	case d > 0:
		return 1, (float64(cell+1) - start) / d, 1 / d
	case d < 0:
		return -1, (float64(cell) - start) / d, -1 / d
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

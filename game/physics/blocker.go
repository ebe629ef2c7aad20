package physics

import (
	"sort"

	"github.com/kasuganosora/tilecombat/game/geom"
)

// BlockerType classifies the surface a sight ray hit.
type BlockerType int

const (
	// TileBlocker is the boundary of a blocked map tile.
	TileBlocker BlockerType = iota + 1
	// GroundPolygonBlocker is an edge of a ground-level blocking polygon.
	GroundPolygonBlocker
	// LineBlocker is a hard wall segment; it always stops sight.
	LineBlocker
	// PolygonBlocker is a freestanding shape. Sight passes it, but the shape
	// becomes visible.
	PolygonBlocker
)

func (b BlockerType) String() string {
	switch b {
	case TileBlocker:
		return "tile"
	case GroundPolygonBlocker:
		return "ground_polygon"
	case LineBlocker:
		return "line"
	case PolygonBlocker:
		return "polygon"
	default:
		return "unknown"
	}
}

// Collision is a single ray hit.
type Collision struct {
	Point    geom.Vec2
	Fraction float64 // 0 at the ray start, 1 at its end
	Type     BlockerType
	Polygon  *geom.Polygon // set for PolygonBlocker and GroundPolygonBlocker hits
}

// RayCaster returns every collision on the segment from → to, in camera
// coordinates, in no particular order.
type RayCaster interface {
	RayCast(from, to geom.Vec2) []Collision
	// Valid is false once the backing world has been torn down.
	Valid() bool
}

// SortByFraction orders collisions from nearest to farthest.
func SortByFraction(c []Collision) {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Fraction < c[j].Fraction })
}

package geom

import "math"

// Vec2 is a point or offset in camera or tile space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dst(o Vec2) float64   { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Tile truncates v towards zero, the same way a float tile position is
// turned into integer tile coordinates everywhere in the simulation.
func (v Vec2) Tile() Tile { return Tile{X: int(v.X), Y: int(v.Y)} }

// Tile is an integer tile coordinate.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// T is shorthand for Tile{x, y}.
func T(x, y int) Tile { return Tile{X: x, Y: y} }

// Center returns the tile-space centre of t.
func (t Tile) Center() Vec2 { return Vec2{float64(t.X) + 0.5, float64(t.Y) + 0.5} }

// Vec returns the tile's origin corner as a Vec2.
func (t Tile) Vec() Vec2 { return Vec2{float64(t.X), float64(t.Y)} }

// Dst is the euclidean distance between two tiles.
func (t Tile) Dst(o Tile) float64 {
	return math.Hypot(float64(t.X-o.X), float64(t.Y-o.Y))
}

// Manhattan returns |dx| + |dy|.
func (t Tile) Manhattan(o Tile) int {
	return abs(t.X-o.X) + abs(t.Y-o.Y)
}

// Adjacent reports whether o is one of the eight neighbours of t.
func (t Tile) Adjacent(o Tile) bool {
	return t != o && abs(t.X-o.X) <= 1 && abs(t.Y-o.Y) <= 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package geom

// Projection converts between camera coordinates and tile coordinates.
type Projection interface {
	ToTiles(v Vec2) Vec2
	FromTiles(v Vec2) Vec2
	Isometric() bool
}

// ProjectionFor returns the isometric projection when iso is set.
func ProjectionFor(iso bool) Projection {
	if iso {
		return Isometric{}
	}
	return Orthogonal{}
}

// Orthogonal maps use tile coordinates as camera coordinates.
type Orthogonal struct{}

func (Orthogonal) ToTiles(v Vec2) Vec2   { return v }
func (Orthogonal) FromTiles(v Vec2) Vec2 { return v }
func (Orthogonal) Isometric() bool       { return false }

// Isometric rotates the tile grid by -45°, scales it by (√2, √2/2) and
// shifts it up by half a unit:
//
//	camera = (x + y, (y - x)/2 + 0.5)
type Isometric struct{}

func (Isometric) FromTiles(v Vec2) Vec2 {
	return Vec2{X: v.X + v.Y, Y: (v.Y-v.X)/2 + 0.5}
}

func (Isometric) ToTiles(v Vec2) Vec2 {
	dy := 2 * (v.Y - 0.5)
	return Vec2{X: (v.X - dy) / 2, Y: (v.X + dy) / 2}
}

func (Isometric) Isometric() bool { return true }

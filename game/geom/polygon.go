package geom

// Polygon is a closed ring of camera-space vertices.
type Polygon struct {
	Vertices []Vec2
}

// NewPolygon builds a polygon from flat x, y pairs.
func NewPolygon(coords ...float64) *Polygon {
	p := &Polygon{Vertices: make([]Vec2, 0, len(coords)/2)}
	for i := 0; i+1 < len(coords); i += 2 {
		p.Vertices = append(p.Vertices, Vec2{coords[i], coords[i+1]})
	}
	return p
}

// Contains reports whether (x, y) lies inside p (even-odd rule).
func (p *Polygon) Contains(x, y float64) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := p.Vertices[i], p.Vertices[j]
		if (vi.Y < y && vj.Y >= y) || (vj.Y < y && vi.Y >= y) {
			if vi.X+(y-vi.Y)/(vj.Y-vi.Y)*(vj.X-vi.X) < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Edges calls fn for every edge of the ring, including the closing one.
func (p *Polygon) Edges(fn func(a, b Vec2)) {
	n := len(p.Vertices)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		fn(p.Vertices[i], p.Vertices[(i+1)%n])
	}
}

// SegmentIntersection intersects segment p0→p1 with q0→q1 and returns the
// fraction along p0→p1 of the crossing point.
func SegmentIntersection(p0, p1, q0, q1 Vec2) (float64, bool) {
	r := p1.Sub(p0)
	s := q1.Sub(q0)
	denom := cross(r, s)
	if denom == 0 {
		return 0, false
	}
	qp := q0.Sub(p0)
	t := cross(qp, s) / denom
	u := cross(qp, r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

func cross(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// Package los computes which tiles an observer can currently see.
//
// A LineOfSight casts a fan of rays from its position, cuts each ray at
// the first wall it passes through, and rasterizes the resulting polygon
// into a set of visible tiles. Results are recomputed in full on every
// change; nothing is maintained incrementally.
package los

import (
	"math"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/physics"
)

const (
	// MinRays is the smallest ray fan an observer will cast.
	MinRays = 3
	// pullback moves a truncated endpoint towards the observer so that
	// integer truncation lands on the near side of the wall.
	pullback = 0.001
	// radiusEpsilon evens out rounding at the rim of a circle or cone.
	radiusEpsilon = 0.1
)

// Map is what an observer needs from the map it stands on.
type Map interface {
	ProjectToTiles(v geom.Vec2) geom.Vec2
	ProjectFromTiles(v geom.Vec2) geom.Vec2
	IsIsometric() bool
	IsDisposed() bool
	// RayWorld may return nil when the map has no physics backing.
	RayWorld() physics.RayCaster
	TileSize() (x, y float64)
}

// Shape selects the ray geometry of an observer.
type Shape int

const (
	// Circle casts rays over the full 360°.
	Circle Shape = iota
	// Cone casts rays over direction ± half-angle.
	Cone
)

func (s Shape) String() string {
	if s == Cone {
		return "cone"
	}
	return "circle"
}

// LineOfSight is a single observer. It is not safe for concurrent use.
type LineOfSight struct {
	m        Map
	shape    Shape
	rays     int
	distance int

	// ellipse radii in camera space
	rx, ry float64

	// cone only, degrees
	direction float64
	coneAngle float64

	start geom.Vec2
	endX  []float64
	endY  []float64
	mx    []float64
	my    []float64

	vertices *geom.PositionArray
	visible  *geom.PositionArray
	shapes   map[*geom.Polygon]struct{}
}

// NewCircular creates a full-circle observer at camera position (x, y)
// and computes its first visible set.
//
// On isometric maps the tile radius is widened by √2 and the vertical
// radius halved to follow the projected diamond grid.
func NewCircular(m Map, rays, radius int, x, y float64) *LineOfSight {
	l := newLineOfSight(m, Circle, rays, x, y)
	l.setRadius(radius)
	l.Update()
	return l
}

// NewCone creates a view cone facing direction (degrees, camera space,
// counter-clockwise from +X) that spans ±coneAngle degrees.
func NewCone(m Map, rays, radius int, direction, coneAngle, x, y float64) *LineOfSight {
	l := newLineOfSight(m, Cone, rays, x, y)
	l.direction = normalizeDegrees(direction)
	l.coneAngle = math.Abs(coneAngle)
	l.setRadius(radius)
	l.Update()
	return l
}

func newLineOfSight(m Map, shape Shape, rays int, x, y float64) *LineOfSight {
	if rays < MinRays {
		rays = MinRays
	}
	return &LineOfSight{
		m:        m,
		shape:    shape,
		rays:     rays,
		start:    geom.V(x, y),
		endX:     make([]float64, rays),
		endY:     make([]float64, rays),
		mx:       make([]float64, rays),
		my:       make([]float64, rays),
		vertices: geom.NewPositionArray(rays + 1),
		visible:  geom.NewPositionArray(0),
		shapes:   make(map[*geom.Polygon]struct{}),
	}
}

func (l *LineOfSight) setRadius(radius int) {
	iso := l.m.IsIsometric()
	d := radius
	if iso {
		d = int(float64(radius) * math.Sqrt2)
	}
	if d < 1 {
		d = 1
	}
	l.distance = d

	switch l.shape {
	case Cone:
		l.rx = float64(d) - radiusEpsilon
		l.ry = l.rx
		if iso {
			l.ry = l.rx / 2
		}
	default:
		if iso {
			l.rx = float64(d)
			l.ry = l.rx / 2
		} else {
			l.rx = float64(d) - radiusEpsilon
			l.ry = l.rx
		}
	}
	l.setEndPoints()
}

func (l *LineOfSight) setEndPoints() {
	n := float64(l.rays - 1)
	for i := 0; i < l.rays; i++ {
		var angle float64
		if l.shape == Cone {
			angle = l.direction + l.coneAngle - 2*l.coneAngle*float64(i)/n
		} else {
			angle = 360 / n * float64(i)
		}
		s, c := math.Sincos(angle * math.Pi / 180)
		l.endX[i] = l.rx * c
		l.endY[i] = l.ry * s
	}
}

func (l *LineOfSight) Shape() Shape        { return l.shape }
func (l *LineOfSight) RayCount() int       { return l.rays }
func (l *LineOfSight) Distance() int       { return l.distance }
func (l *LineOfSight) Position() geom.Vec2 { return l.start }
func (l *LineOfSight) Direction() float64  { return l.direction }

// SetPosition moves the observer to camera position (x, y) and recomputes.
func (l *LineOfSight) SetPosition(x, y float64) {
	l.start = geom.V(x, y)
	l.Update()
}

// SetRadius changes the sight radius in tiles and recomputes.
func (l *LineOfSight) SetRadius(radius int) {
	l.setRadius(radius)
	l.Update()
}

// SetDirection turns a cone observer. It is a no-op for circles.
func (l *LineOfSight) SetDirection(direction float64) {
	if l.shape != Cone {
		return
	}
	l.direction = normalizeDegrees(direction)
	l.setEndPoints()
	l.Update()
}

// Update recomputes the visible tiles and visible shape polygons from the
// current position, ray fan and radius.
func (l *LineOfSight) Update() {
	clear(l.shapes)
	l.vertices.Clear()

	origin := l.m.ProjectToTiles(l.start).Tile()
	if l.shape == Cone {
		l.vertices.AddTile(origin)
	}

	var world physics.RayCaster
	if w := l.m.RayWorld(); w != nil && w.Valid() && !l.m.IsDisposed() {
		world = w
	}

	for i := 0; i < l.rays; i++ {
		end := geom.V(l.start.X+l.endX[i], l.start.Y+l.endY[i])
		if world != nil {
			end = l.cast(world, end)
		}
		l.mx[i], l.my[i] = end.X, end.Y
		l.vertices.AddTile(l.m.ProjectToTiles(end).Tile())
	}

	l.visible = fillPolygon(l.vertices, origin.X, origin.Y, l.distance)
}

// cast returns the visible endpoint of a single ray towards end.
func (l *LineOfSight) cast(world physics.RayCaster, end geom.Vec2) geom.Vec2 {
	hits := world.RayCast(l.start, end)
	physics.SortByFraction(hits)

	var enteredTile, enteredGround bool
	for _, h := range hits {
		stop := false
		switch h.Type {
		case physics.TileBlocker:
			stop = enteredTile
			enteredTile = true
		case physics.GroundPolygonBlocker:
			stop = enteredGround
			enteredGround = true
		case physics.LineBlocker:
			stop = true
		}
		if stop {
			dist := l.start.Dst(h.Point)
			if dist == 0 {
				return l.start
			}
			r := pullback / dist
			return l.start.Scale(r).Add(h.Point.Scale(1 - r))
		}
		if h.Type == physics.PolygonBlocker && h.Polygon != nil {
			l.shapes[h.Polygon] = struct{}{}
		}
	}
	return end
}

// fillPolygon rasterizes the vertex ring with a horizontal scanline fill
// limited to the [c-d, c+d) box around the centre tile. Vertices outside
// the box are dropped so every returned tile lies inside it.
func fillPolygon(vertices *geom.PositionArray, centerX, centerY, d int) *geom.PositionArray {
	xMin, xMax := centerX-d, centerX+d
	yMin, yMax := centerY-d, centerY+d

	out := geom.NewPositionArray(vertices.Len() + 4*d*d)
	for _, t := range vertices.Tiles() {
		if t.X >= xMin && t.X < xMax && t.Y >= yMin && t.Y < yMax {
			out.AddTile(t)
		}
	}

	n := vertices.Len()
	if n == 0 {
		return out
	}
	nodeX := make([]int, n)

	for y := yMin; y < yMax; y++ {
		nodes := 0
		j := n - 1
		for i := 0; i < n; i++ {
			xi, yi := vertices.X(i), vertices.Y(i)
			xj, yj := vertices.X(j), vertices.Y(j)
			if (yi < y && yj >= y) || (yj < y && yi >= y) {
				x := float64(xi) + float64(y-yi)/float64(yj-yi)*float64(xj-xi)
				nodeX[nodes] = int(math.Floor(x + 0.5))
				nodes++
			}
			j = i
		}

		// few crossings per row; adjacent swaps are enough
		for i := 0; i < nodes-1; {
			if nodeX[i] > nodeX[i+1] {
				nodeX[i], nodeX[i+1] = nodeX[i+1], nodeX[i]
				if i > 0 {
					i--
				}
			} else {
				i++
			}
		}

		for i := 0; i+1 < nodes; i += 2 {
			if nodeX[i] >= xMax {
				break
			}
			if nodeX[i+1] <= xMin {
				continue
			}
			left, right := nodeX[i], nodeX[i+1]
			if left < xMin {
				left = xMin
			}
			if right > xMax {
				right = xMax
			}
			for x := left + 1; x < right; x++ {
				out.Add(x, y)
			}
		}
	}
	return out
}

// VisibleTiles returns the result of the last Update. Callers must not
// modify it.
func (l *LineOfSight) VisibleTiles() *geom.PositionArray { return l.visible }

// Vertices returns the tile-space polygon ring of the last Update.
func (l *LineOfSight) Vertices() []geom.Tile { return l.vertices.Tiles() }

// Endpoints returns the camera-space ray endpoints of the last Update.
func (l *LineOfSight) Endpoints() []geom.Vec2 {
	out := make([]geom.Vec2, l.rays)
	for i := range out {
		out[i] = geom.V(l.mx[i], l.my[i])
	}
	return out
}

// IsVisible reports whether tile (x, y) was visible at the last Update.
func (l *LineOfSight) IsVisible(x, y int) bool { return l.visible.Contains(x, y) }

// ContainsInRadius reports whether camera point (x, y) lies inside the
// observer's radius shape, ignoring walls.
func (l *LineOfSight) ContainsInRadius(x, y float64) bool {
	dx := l.start.X - x
	dy := l.start.Y - y
	if (dx*dx)/(l.rx*l.rx)+(dy*dy)/(l.ry*l.ry) > 1 {
		return false
	}
	if l.shape != Cone {
		return true
	}
	if dx == 0 && dy == 0 {
		return true
	}
	// undo the vertical squash before measuring the angle
	angle := math.Atan2(-dy*l.rx/l.ry, -dx) * 180 / math.Pi
	diff := normalizeDegrees(angle - l.direction)
	if diff > 180 {
		diff -= 360
	}
	return math.Abs(diff) <= l.coneAngle
}

// IsContainedInVisibleShapePolygon reports whether tile (x, y) lies in any
// freestanding polygon that was hit by a ray at the last Update.
func (l *LineOfSight) IsContainedInVisibleShapePolygon(x, y int) bool {
	sx, sy := l.m.TileSize()
	xf, yf := float64(x)*sx, float64(y)*sy
	for p := range l.shapes {
		if p.Contains(xf, yf) {
			return true
		}
	}
	return false
}

// VisibleShapeCount is the number of distinct shape polygons seen.
func (l *LineOfSight) VisibleShapeCount() int { return len(l.shapes) }

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

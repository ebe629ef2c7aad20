package world

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/physics"
)

// Occupant is anything that stands on a map tile.
type Occupant interface {
	// Tile is the logical tile, updated as soon as a move starts.
	Tile() geom.Tile
	SetTile(t geom.Tile)
	// Position is the animated tile-space position.
	Position() geom.Vec2
	SetPosition(v geom.Vec2)
}

// MapOptions configure a new GameMap.
type MapOptions struct {
	Isometric bool
	// CombatMap maps cannot be left mid-fight: combat on them only ends
	// when no hostiles remain.
	CombatMap bool
	// WorldMap maps use the shorter overland sight radius.
	WorldMap   bool
	TileWidth  float64
	TileHeight float64
}

// GameMap is a rectangular tile map with its ray world and occupants.
//
// Not safe for concurrent use; the simulation goroutine owns it.
type GameMap struct {
	id            string
	width, height int
	blocked       []bool
	revealed      []bool // nil means fully revealed
	proj          geom.Projection
	tileW, tileH  float64
	combatMap     bool
	worldMap      bool
	disposed      atomic.Bool

	rays      *physics.Grid
	occupants []Occupant
	tweens    *Tweener
}

// NewGameMap creates an empty w×h map.
func NewGameMap(id string, w, h int, opts MapOptions) *GameMap {
	proj := geom.ProjectionFor(opts.Isometric)
	tw, th := opts.TileWidth, opts.TileHeight
	if tw <= 0 {
		tw = 1
	}
	if th <= 0 {
		th = 1
	}
	return &GameMap{
		id:        id,
		width:     w,
		height:    h,
		blocked:   make([]bool, w*h),
		proj:      proj,
		tileW:     tw,
		tileH:     th,
		combatMap: opts.CombatMap,
		worldMap:  opts.WorldMap,
		rays:      physics.NewGrid(w, h, proj),
		tweens:    NewTweener(),
	}
}

// ParseLayout builds a map from rows of characters:
//
//	'#' wall: blocks movement and sight
//	'_' chasm: blocks movement only
//	'|' glass: blocks sight only
//
// Anything else is floor.
func ParseLayout(id string, rows []string, opts MapOptions) (*GameMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("world: map %q has no rows", id)
	}
	w := len(rows[0])
	for i, r := range rows {
		if len(r) != w {
			return nil, fmt.Errorf("world: map %q row %d has width %d, want %d", id, i, len(r), w)
		}
	}
	m := NewGameMap(id, w, len(rows), opts)
	for y, r := range rows {
		for x, ch := range []byte(r) {
			switch ch {
			case '#':
				m.SetBlocked(x, y, true)
				m.rays.SetBlocked(x, y, true)
			case '_':
				m.SetBlocked(x, y, true)
			case '|':
				m.rays.SetBlocked(x, y, true)
			}
		}
	}
	return m, nil
}

func (m *GameMap) ID() string          { return m.id }
func (m *GameMap) Size() (int, int)    { return m.width, m.height }
func (m *GameMap) IsCombatMap() bool   { return m.combatMap }
func (m *GameMap) IsWorldMap() bool    { return m.worldMap }
func (m *GameMap) IsIsometric() bool   { return m.proj.Isometric() }
func (m *GameMap) IsDisposed() bool    { return m.disposed.Load() }
func (m *GameMap) Grid() *physics.Grid { return m.rays }
func (m *GameMap) Tweens() *Tweener    { return m.tweens }
func (m *GameMap) SetCombatMap(v bool) { m.combatMap = v }
func (m *GameMap) TileSize() (float64, float64) {
	return m.tileW, m.tileH
}

// RayWorld returns nil once the map is disposed.
func (m *GameMap) RayWorld() physics.RayCaster {
	if m.rays == nil || m.IsDisposed() {
		return nil
	}
	return m.rays
}

// Dispose tears the map's ray world down. Observers on a disposed map
// see as if there were no obstacles.
func (m *GameMap) Dispose() {
	m.disposed.Store(true)
	if m.rays != nil {
		m.rays.Dispose()
	}
}

func (m *GameMap) ProjectToTiles(v geom.Vec2) geom.Vec2   { return m.proj.ToTiles(v) }
func (m *GameMap) ProjectFromTiles(v geom.Vec2) geom.Vec2 { return m.proj.FromTiles(v) }

func (m *GameMap) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// SetBlocked marks (x, y) as impassable terrain.
func (m *GameMap) SetBlocked(x, y int, v bool) {
	if m.inside(x, y) {
		m.blocked[x+y*m.width] = v
	}
}

// EnableFog hides every tile until Reveal is called for it.
func (m *GameMap) EnableFog() {
	m.revealed = make([]bool, m.width*m.height)
}

// Reveal marks the given tiles as explored.
func (m *GameMap) Reveal(tiles ...geom.Tile) {
	if m.revealed == nil {
		return
	}
	for _, t := range tiles {
		if m.inside(t.X, t.Y) {
			m.revealed[t.X+t.Y*m.width] = true
		}
	}
}

// Blocked reports whether mover may not enter (x, y).
//
// With unrevealed set, unexplored tiles are impassable. With
// oneCharPerTile set, a tile holding any occupant other than mover is
// impassable, as is a tile holding more than one occupant.
func (m *GameMap) Blocked(mover Occupant, x, y int, unrevealed, oneCharPerTile bool) bool {
	if !m.inside(x, y) {
		return true
	}
	id := x + y*m.width
	if unrevealed && m.revealed != nil && !m.revealed[id] {
		return true
	}
	if m.blocked[id] {
		return true
	}
	if oneCharPerTile {
		n, self := 0, false
		for _, o := range m.occupants {
			if t := o.Tile(); t.X == x && t.Y == y {
				n++
				if o == mover {
					self = true
				}
			}
		}
		if (!self && n > 0) || n > 1 {
			return true
		}
	}
	return false
}

// UnblockedTile finds the nearest tile to (x, y) within radius that mover
// can stand on and that is not in ignore. Rings are searched outwards,
// each ring walked bottom, right, top, left.
func (m *GameMap) UnblockedTile(x, y, radius int, mover Occupant, oneCharPerTile bool, ignore *geom.PositionArray) (geom.Tile, bool) {
	free := func(tx, ty int) bool {
		return !m.Blocked(mover, tx, ty, false, oneCharPerTile) && (ignore == nil || !ignore.Contains(tx, ty))
	}
	if free(x, y) {
		return geom.T(x, y), true
	}
	for r := 1; r <= radius; r++ {
		for i := -r; i <= r; i++ {
			if free(x+i, y+r) {
				return geom.T(x+i, y+r), true
			}
			if free(x+r, y+i) {
				return geom.T(x+r, y+i), true
			}
			if free(x+i, y-r) {
				return geom.T(x+i, y-r), true
			}
			if free(x-r, y+i) {
				return geom.T(x-r, y+i), true
			}
		}
	}
	return geom.Tile{}, false
}

// UnblockedTiles appends every free tile within radius of (x, y) to dst.
// dst is not cleared first.
func (m *GameMap) UnblockedTiles(x, y, radius int, mover Occupant, oneCharPerTile bool, dst *geom.PositionArray) {
	add := func(tx, ty int) {
		if !m.Blocked(mover, tx, ty, false, oneCharPerTile) && !dst.Contains(tx, ty) {
			dst.Add(tx, ty)
		}
	}
	add(x, y)
	for r := 1; r <= radius; r++ {
		for i := -r; i <= r; i++ {
			add(x+i, y+r)
			add(x+i, y-r)
			add(x+r, y+i)
			add(x-r, y+i)
		}
	}
}

// AddOccupant places o on the map. Adding twice is a no-op.
func (m *GameMap) AddOccupant(o Occupant) {
	if slices.Contains(m.occupants, o) {
		return
	}
	m.occupants = append(m.occupants, o)
}

func (m *GameMap) RemoveOccupant(o Occupant) {
	m.occupants = slices.DeleteFunc(m.occupants, func(v Occupant) bool { return v == o })
	m.tweens.Cancel(o)
}

// Occupants returns every occupant in insertion order.
func (m *GameMap) Occupants() []Occupant {
	return slices.Clone(m.occupants)
}

// OccupantsAt returns the occupants whose logical tile is (x, y).
func (m *GameMap) OccupantsAt(x, y int) []Occupant {
	var out []Occupant
	for _, o := range m.occupants {
		if t := o.Tile(); t.X == x && t.Y == y {
			out = append(out, o)
		}
	}
	return out
}

// MoveOccupant sets o's logical tile to (x, y) at once and animates its
// position there over duration seconds.
func (m *GameMap) MoveOccupant(o Occupant, x, y int, duration float64) {
	o.SetTile(geom.T(x, y))
	m.tweens.Start(o, geom.V(float64(x), float64(y)), duration, EaseOutQuint)
}

// Update advances position animations.
func (m *GameMap) Update(dt float64) {
	m.tweens.Update(dt)
}

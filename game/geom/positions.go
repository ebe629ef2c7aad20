package geom

// PositionArray is an ordered, append-biased collection of tiles.
//
// It serves two roles: a polygon vertex ring, where order matters and
// duplicates are kept, and a visible-tile result, where only membership
// matters. Duplicates are tolerated in both; Contains is O(1).
type PositionArray struct {
	tiles []Tile
	count map[Tile]int
}

// NewPositionArray returns an empty array with room for n tiles.
func NewPositionArray(n int) *PositionArray {
	return &PositionArray{
		tiles: make([]Tile, 0, n),
		count: make(map[Tile]int, n),
	}
}

// Clone returns an independent copy of p.
func (p *PositionArray) Clone() *PositionArray {
	c := NewPositionArray(len(p.tiles))
	c.tiles = append(c.tiles, p.tiles...)
	for t, n := range p.count {
		c.count[t] = n
	}
	return c
}

func (p *PositionArray) Len() int      { return len(p.tiles) }
func (p *PositionArray) Empty() bool   { return len(p.tiles) == 0 }
func (p *PositionArray) At(i int) Tile { return p.tiles[i] }
func (p *PositionArray) X(i int) int   { return p.tiles[i].X }
func (p *PositionArray) Y(i int) int   { return p.tiles[i].Y }

// Tiles returns the backing slice. Callers must not modify it.
func (p *PositionArray) Tiles() []Tile { return p.tiles }

// Add appends (x, y), keeping any existing entry for the same tile.
func (p *PositionArray) Add(x, y int) { p.AddTile(Tile{x, y}) }

func (p *PositionArray) AddTile(t Tile) {
	if p.count == nil {
		p.count = make(map[Tile]int)
	}
	p.tiles = append(p.tiles, t)
	p.count[t]++
}

// AddAll appends every tile of o in order.
func (p *PositionArray) AddAll(o *PositionArray) {
	for _, t := range o.tiles {
		p.AddTile(t)
	}
}

// AddAllNew appends the tiles of o that p does not contain yet.
func (p *PositionArray) AddAllNew(o *PositionArray) {
	for _, t := range o.tiles {
		if !p.ContainsTile(t) {
			p.AddTile(t)
		}
	}
}

func (p *PositionArray) Contains(x, y int) bool   { return p.count[Tile{x, y}] > 0 }
func (p *PositionArray) ContainsTile(t Tile) bool { return p.count[t] > 0 }

// IndexOf returns the index of the first occurrence of (x, y), or -1.
func (p *PositionArray) IndexOf(x, y int) int {
	t := Tile{x, y}
	if p.count[t] == 0 {
		return -1
	}
	for i, v := range p.tiles {
		if v == t {
			return i
		}
	}
	return -1
}

// RemoveIndex removes the tile at i, preserving order.
func (p *PositionArray) RemoveIndex(i int) {
	t := p.tiles[i]
	p.tiles = append(p.tiles[:i], p.tiles[i+1:]...)
	if p.count[t] <= 1 {
		delete(p.count, t)
	} else {
		p.count[t]--
	}
}

// RemoveValue removes the first occurrence of (x, y) if present.
func (p *PositionArray) RemoveValue(x, y int) {
	if i := p.IndexOf(x, y); i >= 0 {
		p.RemoveIndex(i)
	}
}

func (p *PositionArray) Clear() {
	p.tiles = p.tiles[:0]
	clear(p.count)
}

// Unique returns the distinct tiles of p in first-seen order.
func (p *PositionArray) Unique() []Tile {
	seen := make(map[Tile]struct{}, len(p.count))
	out := make([]Tile, 0, len(p.count))
	for _, t := range p.tiles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

package world

import (
	"errors"
	"testing"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummy struct {
	tile geom.Tile
	pos  geom.Vec2
}

func newDummy(x, y int) *dummy {
	return &dummy{tile: geom.T(x, y), pos: geom.V(float64(x), float64(y))}
}

func (d *dummy) Tile() geom.Tile         { return d.tile }
func (d *dummy) SetTile(t geom.Tile)     { d.tile = t }
func (d *dummy) Position() geom.Vec2     { return d.pos }
func (d *dummy) SetPosition(v geom.Vec2) { d.pos = v }

func arena(t *testing.T) *GameMap {
	t.Helper()
	m, err := ParseLayout("arena", []string{
		"#######",
		"#.....#",
		"#.._..#",
		"#..|..#",
		"#######",
	}, MapOptions{})
	require.NoError(t, err)
	return m
}

func TestParseLayout(t *testing.T) {
	m := arena(t)
	w, h := m.Size()
	assert.Equal(t, 7, w)
	assert.Equal(t, 5, h)

	assert.True(t, m.Blocked(nil, 0, 0, false, false), "wall")
	assert.True(t, m.Blocked(nil, 3, 2, false, false), "chasm")
	assert.False(t, m.Blocked(nil, 3, 3, false, false), "glass is walkable")
	assert.True(t, m.Blocked(nil, -1, 2, false, false), "outside")

	assert.True(t, m.Grid().Blocked(0, 0))
	assert.False(t, m.Grid().Blocked(3, 2), "chasm does not block sight")
	assert.True(t, m.Grid().Blocked(3, 3))
}

func TestParseLayout_Errors(t *testing.T) {
	_, err := ParseLayout("x", nil, MapOptions{})
	assert.Error(t, err)
	_, err = ParseLayout("x", []string{"...", ".."}, MapOptions{})
	assert.Error(t, err)
}

func TestBlocked_OneCharPerTile(t *testing.T) {
	m := arena(t)
	a := newDummy(1, 1)
	b := newDummy(2, 1)
	m.AddOccupant(a)
	m.AddOccupant(b)

	assert.False(t, m.Blocked(a, 1, 1, false, true), "own tile")
	assert.True(t, m.Blocked(a, 2, 1, false, true))
	assert.False(t, m.Blocked(a, 2, 1, false, false))

	b.SetTile(geom.T(1, 1))
	assert.True(t, m.Blocked(a, 1, 1, false, true), "shared tile")
}

func TestBlocked_Fog(t *testing.T) {
	m := arena(t)
	m.EnableFog()
	m.Reveal(geom.T(1, 1))
	assert.False(t, m.Blocked(nil, 1, 1, true, false))
	assert.True(t, m.Blocked(nil, 2, 1, true, false))
	assert.False(t, m.Blocked(nil, 2, 1, false, false))
}

func TestUnblockedTile_RingOrder(t *testing.T) {
	m := NewGameMap("open", 10, 10, MapOptions{})
	m.SetBlocked(5, 5, true)

	got, ok := m.UnblockedTile(5, 5, 3, nil, true, nil)
	require.True(t, ok)
	assert.Equal(t, geom.T(4, 6), got)

	ignore := geom.NewPositionArray(1)
	ignore.Add(4, 6)
	got, ok = m.UnblockedTile(5, 5, 3, nil, true, ignore)
	require.True(t, ok)
	assert.Equal(t, geom.T(6, 4), got)

	got, ok = m.UnblockedTile(2, 2, 3, nil, true, nil)
	require.True(t, ok)
	assert.Equal(t, geom.T(2, 2), got)
}

func TestUnblockedTile_NoneInRadius(t *testing.T) {
	m := NewGameMap("tiny", 1, 1, MapOptions{})
	m.SetBlocked(0, 0, true)
	_, ok := m.UnblockedTile(0, 0, 2, nil, true, nil)
	assert.False(t, ok)
}

func TestUnblockedTiles(t *testing.T) {
	m := NewGameMap("open", 5, 5, MapOptions{})
	dst := geom.NewPositionArray(0)
	m.UnblockedTiles(2, 2, 1, nil, false, dst)
	assert.Equal(t, 9, dst.Len())
	assert.True(t, dst.Contains(1, 1))
}

func TestMoveOccupant_Tweens(t *testing.T) {
	m := arena(t)
	d := newDummy(1, 1)
	m.AddOccupant(d)

	m.MoveOccupant(d, 5, 1, 0.5)
	assert.Equal(t, geom.T(5, 1), d.Tile(), "logical tile moves at once")
	assert.Equal(t, 1, m.Tweens().Running())

	m.Update(0.25)
	assert.Greater(t, d.Position().X, 1.0)
	assert.Less(t, d.Position().X, 5.0)

	m.Update(0.25)
	assert.Equal(t, geom.V(5, 1), d.Position())
	assert.Equal(t, 0, m.Tweens().Running())

	m.MoveOccupant(d, 2, 1, 0)
	assert.Equal(t, geom.V(2, 1), d.Position())
}

func TestOccupants(t *testing.T) {
	m := arena(t)
	a, b := newDummy(1, 1), newDummy(1, 1)
	m.AddOccupant(a)
	m.AddOccupant(a)
	m.AddOccupant(b)
	assert.Len(t, m.Occupants(), 2)
	assert.Len(t, m.OccupantsAt(1, 1), 2)

	m.RemoveOccupant(a)
	assert.Equal(t, []Occupant{b}, m.Occupants())
}

func TestDispose(t *testing.T) {
	m := arena(t)
	assert.NotNil(t, m.RayWorld())
	m.Dispose()
	assert.True(t, m.IsDisposed())
	assert.Nil(t, m.RayWorld())
}

func TestEaseOutQuint(t *testing.T) {
	assert.InDelta(t, 0.0, EaseOutQuint(0), 1e-12)
	assert.InDelta(t, 1.0, EaseOutQuint(1), 1e-12)
	assert.Greater(t, EaseOutQuint(0.5), 0.5)
}

func TestRegistry(t *testing.T) {
	loads := 0
	r := NewRegistry(func(id string) (*GameMap, error) {
		if id == "missing" {
			return nil, errors.New("not found")
		}
		loads++
		return NewGameMap(id, 3, 3, MapOptions{}), nil
	}, nil)

	m1, err := r.GetOrLoad("a")
	require.NoError(t, err)
	m2, err := r.GetOrLoad("a")
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, loads)

	_, err = r.GetOrLoad("missing")
	assert.Error(t, err)

	r.Put(NewGameMap("b", 2, 2, MapOptions{}))
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	r.Destroy("a")
	assert.True(t, m1.IsDisposed())
	assert.Nil(t, r.Get("a"))
}

func TestGameState_Clock(t *testing.T) {
	gs := NewGameState(0)
	gs.AdvanceGameTime(6)
	gs.AdvanceGameTime(-5)
	assert.Equal(t, int64(6), gs.GameSeconds())

	gs.AdvanceGameTime(86400 + 3600 + 60 - 6)
	day, hour, minute := gs.Clock()
	assert.Equal(t, 1, day)
	assert.Equal(t, 1, hour)
	assert.Equal(t, 1, minute)
}

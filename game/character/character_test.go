package character

import (
	"context"
	"testing"

	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layout(t *testing.T, rows ...string) *world.GameMap {
	t.Helper()
	mp, err := world.ParseLayout("test", rows, world.MapOptions{})
	require.NoError(t, err)
	return mp
}

func openMap(t *testing.T) *world.GameMap {
	return layout(t,
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
	)
}

func hero(id string, level int) *Character {
	return New(id, id, FactionPlayer, Stats{Level: level, MaxAP: 8, MaxHP: 20, Attack: 5}, DefaultOptions())
}

func orc(id string) *Character {
	return New(id, id, FactionHostile, Stats{Level: 5, ExperienceValue: 100, MaxAP: 8, MaxHP: 5, Attack: 5}, DefaultOptions())
}

type board struct {
	mp    *world.GameMap
	group *Group
	secs  int
}

func (b *board) CurrentMap() combat.Map          { return b.mp }
func (b *board) PlayerGroup() combat.PlayerGroup { return b.group }
func (b *board) AdvanceGameTime(s int)           { b.secs += s }

func TestCharacter_WallHidesEnemy(t *testing.T) {
	mp := layout(t,
		"....#.....",
		"....#.....",
		"....#.....",
		"....#.....",
		"....#.....",
	)
	h, o := hero("hero", 1), orc("orc")
	h.Place(mp, geom.T(1, 2))
	o.Place(mp, geom.T(7, 2))

	assert.False(t, h.CanSee(o))
	assert.False(t, o.CanSee(h))
	assert.True(t, h.CanSeeTile(4, 2), "the wall itself is seen")
	assert.Empty(t, h.EnemiesInSight())

	h.BroadcastPositionToEnemiesInSight()
	_, ok := o.LastKnownEnemyPosition()
	assert.False(t, ok)
}

func TestCharacter_SeesAcrossOpenGround(t *testing.T) {
	mp := openMap(t)
	h, o := hero("hero", 1), orc("orc")
	cat := New("cat", "cat", FactionNeutral, Stats{}, DefaultOptions())
	h.Place(mp, geom.T(1, 2))
	o.Place(mp, geom.T(7, 2))
	cat.Place(mp, geom.T(3, 3))

	assert.True(t, h.CanSee(o))
	assert.True(t, h.CanSee(cat))
	assert.Equal(t, []*Character{o}, h.EnemiesInSight(), "neutrals are not enemies")

	h.BroadcastPositionToEnemiesInSight()
	last, ok := o.LastKnownEnemyPosition()
	require.True(t, ok)
	assert.Equal(t, geom.T(1, 2), last)
	_, ok = cat.LastKnownEnemyPosition()
	assert.False(t, ok)

	o.SetInvisible(true)
	assert.False(t, h.CanSee(o))
	o.SetInvisible(false)
	h.TakeDamage(100, o)
	assert.False(t, h.CanSee(o), "the dead see nothing")
}

func TestCharacter_MovingRecomputesSight(t *testing.T) {
	mp := openMap(t)
	h := hero("hero", 1)
	h.Place(mp, geom.T(0, 0))
	_, ok := h.PrevTile()
	assert.False(t, ok)
	before := h.Sight().Position()

	mp.MoveOccupant(h, 3, 4, 0)
	prev, ok := h.PrevTile()
	require.True(t, ok)
	assert.Equal(t, geom.T(0, 0), prev)
	assert.Equal(t, geom.T(3, 4), h.Tile())
	assert.Equal(t, geom.V(3, 4), h.Position())
	assert.NotEqual(t, before, h.Sight().Position())
	assert.Equal(t, geom.V(3.5, 4.5), h.Sight().Position())
	assert.Contains(t, h.VisibleTiles(), geom.T(3, 4))
}

func TestCharacter_SightRadiusFollowsMapKind(t *testing.T) {
	local := hero("a", 1)
	local.Place(openMap(t), geom.T(5, 5))
	assert.Equal(t, 10, local.Sight().Distance())

	wm := world.NewGameMap("overworld", 20, 20, world.MapOptions{WorldMap: true})
	far := hero("b", 1)
	far.Place(wm, geom.T(5, 5))
	assert.Equal(t, 5, far.Sight().Distance())
	assert.Equal(t, 360, far.Sight().RayCount())

	o := orc("o")
	o.Place(wm, geom.T(9, 9))
	assert.Equal(t, 100, o.Sight().RayCount())
}

func TestCharacter_ViewConeTurnsWithMovement(t *testing.T) {
	opts := DefaultOptions()
	opts.ConeAngle = 45
	guard := New("guard", "guard", FactionHostile, Stats{}, opts)
	guard.Place(openMap(t), geom.T(5, 5))

	assert.True(t, guard.CanSeeTile(8, 5))
	assert.False(t, guard.CanSeeTile(2, 5))

	guard.SetTile(geom.T(4, 5))
	assert.True(t, guard.CanSeeTile(1, 5))
	assert.False(t, guard.CanSeeTile(8, 5))
}

func TestCharacter_DamageAndLifecycle(t *testing.T) {
	mp := openMap(t)
	h, o := hero("hero", 1), orc("orc")
	h.Place(mp, geom.T(0, 0))
	o.Place(mp, geom.T(1, 0))
	assert.Nil(t, o.Killer())
	assert.Nil(t, h.Brain(), "player characters have no brain")
	assert.NotNil(t, o.Brain())

	h.Attack(o)
	assert.False(t, o.Active())
	assert.Equal(t, 0, o.Stats().HP)
	assert.Equal(t, combat.Combatant(h), o.Killer())

	h.TakeDamage(3, nil)
	assert.Equal(t, 17, h.Stats().HP)

	require.True(t, h.SpendAP(6))
	assert.False(t, h.SpendAP(6))
	h.OnTurnStart()
	assert.Equal(t, 8, h.AP())

	h.SetLastKnownEnemyPosition(geom.T(4, 4))
	h.SetHighlighted(true)
	h.OnTurnEnd()
	assert.False(t, h.Highlighted())
	h.OnCombatEnd()
	_, ok := h.LastKnownEnemyPosition()
	assert.False(t, ok)

	h.UpdateSurvival(0.5)
	assert.Equal(t, Survival{Hunger: 0.5, Fatigue: 0.5}, h.Survival())
}

func TestGroup(t *testing.T) {
	a, b := hero("a", 4), hero("b", 5)
	stranger := hero("x", 9)
	g := NewGroup(a, b, a)
	require.Len(t, g.Members(), 2)
	assert.Equal(t, 5, g.AverageLevel(false), "4.5 rounds up")
	assert.True(t, g.Contains(a))
	assert.False(t, g.Contains(stranger))
	assert.Nil(t, g.Leader())

	g.SetLeader(stranger)
	assert.Nil(t, g.Leader())
	g.SetLeader(b)
	assert.Equal(t, combat.Combatant(b), g.Leader())

	g.SelectOnly(stranger)
	assert.Zero(t, g.SelectedCount())
	g.SelectOnly(a)
	g.Select(b)
	g.Select(b)
	assert.Equal(t, []*Character{a, b}, g.Selected())
	g.SelectOnly(b)
	assert.Equal(t, 1, g.SelectedCount())

	b.TakeDamage(100, nil)
	assert.Equal(t, 4, g.AverageLevel(false))
	assert.Equal(t, 5, g.AverageLevel(true))
	assert.Equal(t, 0, NewGroup().AverageLevel(true))
}

func TestGroup_CanSeeEnemy(t *testing.T) {
	mp := openMap(t)
	h, o := hero("hero", 1), orc("orc")
	h.Place(mp, geom.T(0, 0))
	o.Place(mp, geom.T(5, 5))
	g := NewGroup(h)
	assert.True(t, g.CanSeeEnemy())

	h.SetInvisible(true)
	assert.False(t, g.CanSeeEnemy())
	h.SetInvisible(false)
	o.TakeDamage(100, h)
	assert.False(t, g.CanSeeEnemy())
}

func TestFaction(t *testing.T) {
	for _, f := range []Faction{FactionPlayer, FactionHostile, FactionNeutral} {
		got, err := ParseFaction(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFaction("pirate")
	assert.Error(t, err)
}

func TestCombat_OrcClosesInAndAttacks(t *testing.T) {
	ctx := context.Background()
	mp := openMap(t)
	h, o := hero("hero", 1), orc("orc")
	h.Place(mp, geom.T(0, 0))
	o.Place(mp, geom.T(3, 0))
	m := combat.NewManager(&board{mp: mp, group: NewGroup(h)}, combat.Config{})

	m.StartCombat(ctx)
	m.EndPlayerTurn(ctx)
	for i := 0; m.ActiveSide() == combat.SideComputer; i++ {
		require.Less(t, i, 50)
		m.Update(ctx, 0.05)
	}

	assert.Equal(t, geom.T(1, 0), o.Tile())
	assert.Equal(t, 15, h.Stats().HP)
	assert.Equal(t, 0, o.AP())
	assert.True(t, m.InProgress())
	assert.Equal(t, 0, m.AutoEndCounter(), "hero still sees the orc")
	last, ok := o.LastKnownEnemyPosition()
	require.True(t, ok)
	assert.Equal(t, geom.T(0, 0), last)
}

func TestCombat_KillSharesExperience(t *testing.T) {
	ctx := context.Background()
	mp := openMap(t)
	low, high, o := hero("low", 4), hero("high", 6), orc("orc")
	low.Place(mp, geom.T(0, 0))
	high.Place(mp, geom.T(0, 1))
	o.Place(mp, geom.T(1, 0))
	m := combat.NewManager(&board{mp: mp, group: NewGroup(low, high)}, combat.Config{})

	m.StartCombat(ctx)
	low.Attack(o)
	m.EndCombat(ctx)
	assert.Equal(t, 50, low.Stats().Experience)
	assert.Equal(t, 50, high.Stats().Experience)
}

package ai

import (
	"testing"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTarget struct {
	tile   geom.Tile
	active bool
	hits   int
}

func (t *testTarget) Tile() geom.Tile { return t.tile }
func (t *testTarget) Active() bool    { return t.active }

type testActor struct {
	tile    geom.Tile
	ap      int
	reach   int
	enemy   *testTarget
	visible bool
	last    *geom.Tile
	moves   []geom.Tile
}

func (a *testActor) Tile() geom.Tile  { return a.tile }
func (a *testActor) Active() bool     { return true }
func (a *testActor) AP() int          { return a.ap }
func (a *testActor) AttackRange() int { return a.reach }
func (a *testActor) SpendAP(n int) bool {
	if a.ap < n {
		return false
	}
	a.ap -= n
	return true
}
func (a *testActor) NearestEnemyInSight() (Target, bool) {
	if a.enemy == nil || !a.visible {
		return nil, false
	}
	return a.enemy, true
}
func (a *testActor) LastKnownEnemyPosition() (geom.Tile, bool) {
	if a.last == nil {
		return geom.Tile{}, false
	}
	return *a.last, true
}
func (a *testActor) ClearLastKnownEnemyPosition() { a.last = nil }
func (a *testActor) StepTo(t geom.Tile) {
	a.tile = t
	a.moves = append(a.moves, t)
}
func (a *testActor) Attack(t Target) { t.(*testTarget).hits++ }

// open 10x10 field; occupied tiles cannot be entered.
func field(occupied ...geom.Tile) Passability {
	return PassFunc(func(_, to geom.Tile) bool {
		if to.X < 0 || to.Y < 0 || to.X >= 10 || to.Y >= 10 {
			return false
		}
		for _, o := range occupied {
			if o == to {
				return false
			}
		}
		return true
	})
}

func runTurn(b *Brain, maxSteps int) {
	b.StartTurn()
	for i := 0; i < maxSteps && !b.FinishedTurn(); i++ {
		b.UpdateCombatAction(0.05)
	}
}

func TestAStar_StraightAndAround(t *testing.T) {
	path := AStar(field(), geom.T(0, 0), geom.T(3, 0))
	assert.Equal(t, []geom.Tile{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}, path)

	wall := PassFunc(func(_, to geom.Tile) bool {
		if to.X < 0 || to.Y < 0 || to.X >= 5 || to.Y >= 5 {
			return false
		}
		return !(to.X == 2 && to.Y < 4)
	})
	path = AStar(wall, geom.T(0, 0), geom.T(4, 0))
	require.NotNil(t, path)
	assert.Equal(t, geom.T(4, 0), path[len(path)-1])
	for _, p := range path {
		assert.False(t, p.X == 2 && p.Y < 4, "stepped into wall at %v", p)
	}
	assert.Len(t, path, 12)
}

func TestAStar_Degenerate(t *testing.T) {
	assert.Nil(t, AStar(nil, geom.T(0, 0), geom.T(1, 0)))
	assert.Empty(t, AStar(field(), geom.T(2, 2), geom.T(2, 2)))
	assert.Nil(t, AStar(field(), geom.T(0, 0), geom.T(20, 20)), "unreachable")
}

func TestBrain_ApproachesThenAttacks(t *testing.T) {
	enemy := &testTarget{tile: geom.T(5, 0), active: true}
	a := &testActor{tile: geom.T(0, 0), ap: 12, reach: 1, enemy: enemy, visible: true}
	b := NewBrain(a, field(enemy.tile), BrainConfig{APCostMove: 2, APCostAttack: 4})

	runTurn(b, 50)
	assert.True(t, b.FinishedTurn())
	assert.Equal(t, []geom.Tile{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}}, a.moves)
	assert.Equal(t, 1, enemy.hits)
	assert.Equal(t, 0, a.ap)
}

func TestBrain_RangedAttacksFromDistance(t *testing.T) {
	enemy := &testTarget{tile: geom.T(4, 0), active: true}
	a := &testActor{tile: geom.T(0, 0), ap: 8, reach: 5, enemy: enemy, visible: true}
	b := NewBrain(a, field(enemy.tile), BrainConfig{APCostMove: 2, APCostAttack: 4})

	runTurn(b, 50)
	assert.Empty(t, a.moves)
	assert.Equal(t, 2, enemy.hits)
}

func TestBrain_InvestigatesLastKnownPosition(t *testing.T) {
	last := geom.T(0, 3)
	a := &testActor{tile: geom.T(0, 0), ap: 20, reach: 1, last: &last}
	b := NewBrain(a, field(), BrainConfig{APCostMove: 2, APCostAttack: 4})

	runTurn(b, 50)
	assert.True(t, b.FinishedTurn())
	assert.Equal(t, geom.T(0, 3), a.tile)
	assert.Nil(t, a.last, "forgotten once reached")
	assert.Equal(t, "investigate", b.LastAction())
}

func TestBrain_NothingToDoEndsTurnAtOnce(t *testing.T) {
	a := &testActor{tile: geom.T(0, 0), ap: 10, reach: 1}
	b := NewBrain(a, field(), BrainConfig{APCostMove: 2, APCostAttack: 4})

	b.StartTurn()
	b.UpdateCombatAction(0.05)
	assert.True(t, b.FinishedTurn())
	assert.Equal(t, "end_turn", b.LastAction())
	assert.Equal(t, 10, a.ap)
}

func TestBrain_NoAPFinishesWithoutActing(t *testing.T) {
	a := &testActor{tile: geom.T(0, 0), ap: 1, reach: 1}
	b := NewBrain(a, field(), BrainConfig{APCostMove: 2, APCostAttack: 4})
	b.StartTurn()
	b.UpdateCombatAction(0.05)
	assert.True(t, b.FinishedTurn())
	assert.Equal(t, 0, b.Steps())
}

func TestBrain_StepInterval(t *testing.T) {
	enemy := &testTarget{tile: geom.T(3, 0), active: true}
	a := &testActor{tile: geom.T(0, 0), ap: 10, reach: 1, enemy: enemy, visible: true}
	b := NewBrain(a, field(enemy.tile), BrainConfig{APCostMove: 2, APCostAttack: 4, StepInterval: 0.1})

	b.StartTurn()
	b.UpdateCombatAction(0.05)
	assert.Empty(t, a.moves)
	b.UpdateCombatAction(0.05)
	assert.Len(t, a.moves, 1)
}

func TestInverterAndStatus(t *testing.T) {
	inv := &Inverter{Child: &Condition{Fn: func(*Context) bool { return true }}}
	assert.Equal(t, StatusFailure, inv.Tick(&Context{}))
	assert.Equal(t, StatusFailure, (&Tree{}).Tick(&Context{}))
	assert.Equal(t, "running", StatusRunning.String())
}

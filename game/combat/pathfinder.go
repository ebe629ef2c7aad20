package combat

import (
	"github.com/kasuganosora/tilecombat/game/ai"
	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
)

// PathMap is the board MapPathfinder searches.
type PathMap interface {
	Blocked(mover world.Occupant, x, y int, unrevealed, oneCharPerTile bool) bool
	OccupantsAt(x, y int) []world.Occupant
}

// MapPathfinder routes with A* over a PathMap.
type MapPathfinder struct {
	Map PathMap
	// Hostile decides between attacking and talking to an occupant. Nil
	// treats every other occupant as a target.
	Hostile func(mover Mover, o world.Occupant) bool
	// Reach is the mover's attack range in tiles. Nil means melee only.
	Reach func(mover Mover) int
}

func (pf *MapPathfinder) ActionFor(mover Mover, x, y int) Action {
	for _, o := range pf.Map.OccupantsAt(x, y) {
		if o == world.Occupant(mover) {
			continue
		}
		if pf.Hostile == nil || pf.Hostile(mover, o) {
			return ActionAttack
		}
		return ActionTalk
	}
	if pf.Map.Blocked(mover, x, y, false, false) {
		return ActionNone
	}
	return ActionMove
}

func (pf *MapPathfinder) IsRangedAttack(mover Mover, x, y int) bool {
	if pf.Reach == nil || pf.ActionFor(mover, x, y) != ActionAttack {
		return false
	}
	t := geom.T(x, y)
	return pf.Reach(mover) > 1 && !mover.Tile().Adjacent(t)
}

func (pf *MapPathfinder) FindPath(mover Mover, from, to geom.Tile) []geom.Tile {
	steps := ai.AStar(ai.PassFunc(func(_, t geom.Tile) bool {
		return t == to || !pf.Map.Blocked(mover, t.X, t.Y, false, true)
	}), from, to)
	if steps == nil {
		return nil
	}
	return append([]geom.Tile{from}, steps...)
}

package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/tilecombat/game/character"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/geom"
)

var (
	// ErrEnemiesRemain is returned when the player tries to leave a fight
	// that is not over.
	ErrEnemiesRemain = errors.New("sim: enemies remain")
	// ErrOutOfReach is returned when an attack target cannot be hit from
	// where the attacker stands.
	ErrOutOfReach = errors.New("sim: target out of reach")
)

func (h *Host) apply(ctx context.Context, cmd *Command) (any, error) {
	switch cmd.Kind {
	case CmdStartCombat:
		h.mgr.StartCombat(ctx)
		return map[string]bool{"in_progress": h.mgr.InProgress()}, nil
	case CmdEndCombat:
		if !h.mgr.InProgress() {
			return nil, combat.ErrNotInCombat
		}
		if !h.mgr.CanPlayerEndCombat() {
			return nil, ErrEnemiesRemain
		}
		h.mgr.EndCombat(ctx)
		return nil, nil
	case CmdEndTurn:
		if !h.mgr.InProgress() {
			return nil, combat.ErrNotInCombat
		}
		if !h.mgr.IsPlayersTurn() {
			return nil, ErrNotYourTurn
		}
		h.mgr.EndPlayerTurn(ctx)
		return nil, nil
	case CmdMove:
		c, err := h.controllable(cmd.Character)
		if err != nil {
			return nil, err
		}
		return h.move(ctx, c, geom.T(cmd.X, cmd.Y))
	case CmdSelect:
		c, err := h.controllable(cmd.Character)
		if err != nil {
			return nil, err
		}
		h.group.SelectOnly(c)
		return nil, nil
	case CmdVisible:
		c, ok := h.byID[cmd.Character]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, cmd.Character)
		}
		res := VisibleResult{Character: c.ID(), Tiles: c.VisibleTiles(), Enemies: []string{}}
		for _, e := range c.EnemiesInSight() {
			res.Enemies = append(res.Enemies, e.ID())
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
}

// controllable looks up a living party member.
func (h *Host) controllable(id string) (*character.Character, error) {
	c, ok := h.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, id)
	}
	if !h.group.Contains(c) || !c.Active() {
		return nil, ErrNotControllable
	}
	return c, nil
}

// occupantAt returns the living character standing on t.
func (h *Host) occupantAt(t geom.Tile) *character.Character {
	for _, c := range h.cast {
		if c.Active() && c.Tile() == t {
			return c
		}
	}
	return nil
}

// move walks c towards to and, if to holds an enemy, attacks it. During
// combat every step and the attack cost AP; outside combat walking is
// free, attacking starts a fight, and so does walking into an enemy's
// sight.
func (h *Host) move(ctx context.Context, c *character.Character, to geom.Tile) (MoveResult, error) {
	if h.mgr.InProgress() && !h.mgr.IsPlayersTurn() {
		return MoveResult{}, ErrNotYourTurn
	}
	p := combat.NewPath(h.finder, h.opts.APCostMove)
	ok := p.Compute(c, to.X, to.Y)
	res := MoveResult{Action: p.Action().String(), Steps: []geom.Tile{}}
	if !ok {
		return res, ErrNoPath
	}

	walk := p.Steps()
	if p.Action() == combat.ActionAttack || p.Action() == combat.ActionTalk {
		walk = walk[:len(walk)-1]
	}
	for _, t := range walk {
		if h.mgr.InProgress() && !c.SpendAP(h.opts.APCostMove) {
			break
		}
		c.StepTo(t)
		res.Steps = append(res.Steps, t)
	}

	if p.Action() == combat.ActionAttack {
		target := h.occupantAt(to)
		if target == nil || !h.inReach(c, target) {
			res.AP = c.AP()
			return res, ErrOutOfReach
		}
		if !h.mgr.InProgress() {
			h.mgr.StartCombat(ctx)
			res.CombatStarted = h.mgr.InProgress()
		}
		if c.SpendAP(h.opts.APCostAttack) {
			c.Attack(target)
			res.Target = target.ID()
		}
	} else if !h.mgr.InProgress() && h.group.CanSeeEnemy() {
		h.mgr.StartCombat(ctx)
		res.CombatStarted = h.mgr.InProgress()
	}
	res.AP = c.AP()
	return res, nil
}

// inReach mirrors the brain's rule: melee needs an adjacent tile, ranged
// attackers need the target within range and in sight.
func (h *Host) inReach(c, target *character.Character) bool {
	if c.Tile().Adjacent(target.Tile()) {
		return true
	}
	r := c.AttackRange()
	return r > 1 && c.Tile().Dst(target.Tile()) <= float64(r) && c.CanSee(target)
}

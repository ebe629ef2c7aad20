package ai

import (
	"github.com/kasuganosora/tilecombat/game/geom"
	"go.uber.org/zap"
)

// BrainConfig tunes a combat brain.
type BrainConfig struct {
	APCostMove   int
	APCostAttack int
	// StepInterval is the number of seconds between two actions. Zero acts
	// on every update.
	StepInterval float64
	Logger       *zap.Logger
}

// Brain drives one computer-controlled character through its combat turn,
// one action per update: attack a visible enemy in reach, close in on it,
// walk to the last place an enemy was seen, or end the turn.
type Brain struct {
	cfg      BrainConfig
	actor    Actor
	pass     Passability
	tree     *Tree
	ctx      Context
	acc      float64
	finished bool
	steps    int
	logger   *zap.Logger
}

// NewBrain creates a brain for actor. pass decides which tiles the actor
// may step on.
func NewBrain(actor Actor, pass Passability, cfg BrainConfig) *Brain {
	if cfg.APCostMove < 1 {
		cfg.APCostMove = 1
	}
	if cfg.APCostAttack < 1 {
		cfg.APCostAttack = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	b := &Brain{cfg: cfg, actor: actor, pass: pass, logger: cfg.Logger}
	b.ctx = Context{Actor: actor, Brain: b}
	b.tree = b.buildTree()
	return b
}

func (b *Brain) buildTree() *Tree {
	acquire := &Condition{Name: "acquire_target", Fn: func(c *Context) bool {
		t, ok := c.Actor.NearestEnemyInSight()
		if ok {
			c.Target = t
		}
		return ok
	}}
	inReach := &Condition{Name: "in_reach", Fn: func(c *Context) bool {
		return inReach(c.Actor, c.Target)
	}}
	attack := &Action{Name: "attack", Fn: func(c *Context) Status {
		if c.Actor.AP() < b.cfg.APCostAttack {
			return StatusFailure
		}
		c.Actor.Attack(c.Target)
		c.Actor.SpendAP(b.cfg.APCostAttack)
		return StatusRunning
	}}
	approach := &Action{Name: "approach", Fn: func(c *Context) Status {
		path := b.route(c.Target.Tile())
		if len(path) == 0 || c.Actor.AP() < b.cfg.APCostMove {
			return StatusFailure
		}
		c.Actor.StepTo(path[0])
		c.Actor.SpendAP(b.cfg.APCostMove)
		return StatusRunning
	}}
	remembers := &Condition{Name: "remembers_enemy", Fn: func(c *Context) bool {
		if c.Target != nil {
			return false
		}
		g, ok := c.Actor.LastKnownEnemyPosition()
		c.Goal = g
		return ok
	}}
	investigate := &Action{Name: "investigate", Fn: func(c *Context) Status {
		path := b.route(c.Goal)
		if len(path) == 0 {
			c.Actor.ClearLastKnownEnemyPosition()
			return StatusSuccess
		}
		if c.Actor.AP() < b.cfg.APCostMove {
			return StatusFailure
		}
		c.Actor.StepTo(path[0])
		c.Actor.SpendAP(b.cfg.APCostMove)
		return StatusRunning
	}}
	endTurn := &Action{Name: "end_turn", Fn: func(*Context) Status { return StatusSuccess }}

	return &Tree{Root: &Selector{Children: []Node{
		&Sequence{Children: []Node{acquire, &Selector{Children: []Node{
			&Sequence{Children: []Node{inReach, attack}},
			approach,
		}}}},
		&Sequence{Children: []Node{remembers, investigate}},
		endTurn,
	}}}
}

func inReach(a Actor, t Target) bool {
	if t == nil {
		return false
	}
	at, tt := a.Tile(), t.Tile()
	if at.Adjacent(tt) {
		return true
	}
	r := a.AttackRange()
	return r > 1 && at.Dst(tt) <= float64(r)
}

// route returns the steps towards goal. When goal itself cannot be
// entered, the route stops next to it.
func (b *Brain) route(goal geom.Tile) []geom.Tile {
	from := b.actor.Tile()
	path := AStar(PassFunc(func(f, t geom.Tile) bool {
		return t == goal || b.pass.CanPass(f, t)
	}), from, goal)
	if len(path) == 0 {
		return nil
	}
	prev := from
	if len(path) > 1 {
		prev = path[len(path)-2]
	}
	if !b.pass.CanPass(prev, goal) {
		path = path[:len(path)-1]
	}
	return path
}

// StartTurn readies the brain for a new turn.
func (b *Brain) StartTurn() {
	b.finished = false
	b.acc = 0
	b.steps = 0
	b.ctx.Last = ""
}

// UpdateCombatAction performs at most one action.
func (b *Brain) UpdateCombatAction(dt float64) {
	if b.finished {
		return
	}
	if !b.actor.Active() || b.actor.AP() < min(b.cfg.APCostMove, b.cfg.APCostAttack) {
		b.finished = true
		return
	}
	b.acc += dt
	if b.acc < b.cfg.StepInterval {
		return
	}
	b.acc = 0

	b.ctx.Delta = dt
	b.ctx.Target = nil
	st := b.tree.Tick(&b.ctx)
	b.steps++
	b.logger.Debug("ai step",
		zap.String("action", b.ctx.Last),
		zap.Stringer("status", st),
		zap.Int("ap", b.actor.AP()))
	if st != StatusRunning {
		b.finished = true
	}
}

// FinishedTurn reports whether the actor is done for this turn.
func (b *Brain) FinishedTurn() bool { return b.finished }

// Steps is the number of actions taken this turn.
func (b *Brain) Steps() int { return b.steps }

// LastAction names the last action node that ran.
func (b *Brain) LastAction() string { return b.ctx.Last }

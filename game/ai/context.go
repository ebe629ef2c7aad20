package ai

import "github.com/kasuganosora/tilecombat/game/geom"

// Target is something an actor can attack.
type Target interface {
	Tile() geom.Tile
	Active() bool
}

// Actor is the character a Brain drives during combat.
type Actor interface {
	Target
	AP() int
	SpendAP(n int) bool
	AttackRange() int
	// NearestEnemyInSight returns the closest visible hostile, if any.
	NearestEnemyInSight() (Target, bool)
	LastKnownEnemyPosition() (geom.Tile, bool)
	ClearLastKnownEnemyPosition()
	// StepTo moves the actor onto an adjacent tile.
	StepTo(t geom.Tile)
	Attack(t Target)
}

// Context is passed to every node during a tick.
type Context struct {
	Actor Actor
	Brain *Brain
	Delta float64 // seconds since the previous step

	// scratch for the current step
	Target Target
	Goal   geom.Tile
	Last   string // name of the last action ticked
}

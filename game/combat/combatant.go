// Package combat schedules turn-based fights: the two sides take turns,
// computer-controlled combatants act one at a time in initiative order,
// and the fight ends on command or once the player has been left alone
// for long enough.
package combat

import (
	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
)

// Brain is the per-actor driver polled while a computer combatant acts.
type Brain interface {
	UpdateCombatAction(dt float64)
	FinishedTurn() bool
}

// Combatant is anything on a map that takes part in combat.
type Combatant interface {
	world.Occupant

	ID() string
	Name() string
	Active() bool
	BelongsToPlayerFaction() bool
	HostileTowardsPlayer() bool
	Asleep() bool
	Invisible() bool
	// MaxAP is the initiative key.
	MaxAP() int
	Level() int
	ExperienceValue() int
	// Killer returns the combatant that killed this one, or nil.
	Killer() Combatant
	PrevTile() (geom.Tile, bool)

	OnCombatStart()
	OnTurnStart()
	OnTurnEnd()
	OnCombatEnd()
	ResetHighlight()

	// Brain returns nil for combatants without one.
	Brain() Brain
	UpdateSurvival(hours float64)
	BroadcastPositionToEnemiesInSight()
	GiveExperience(exp int)
	CanSee(other Combatant) bool
}

// PlayerGroup is the party under player control.
type PlayerGroup interface {
	Members() []Combatant
	// Leader returns nil when no leader is set.
	Leader() Combatant
	SelectOnly(c Combatant)
	SelectedCount() int
	Contains(c Combatant) bool
	AverageLevel(includeInactive bool) int
	CanSeeEnemy() bool
}

// Map is the board a fight happens on.
type Map interface {
	Occupants() []world.Occupant
	IsCombatMap() bool
	Size() (int, int)
	Blocked(mover world.Occupant, x, y int, unrevealed, oneCharPerTile bool) bool
	UnblockedTile(x, y, radius int, mover world.Occupant, oneCharPerTile bool, ignore *geom.PositionArray) (geom.Tile, bool)
	MoveOccupant(o world.Occupant, x, y int, duration float64)
}

// State gives the manager access to the rest of the game.
type State interface {
	// CurrentMap returns nil when no map is loaded.
	CurrentMap() Map
	PlayerGroup() PlayerGroup
	AdvanceGameTime(seconds int)
}

// Music is the combat soundtrack.
type Music interface {
	Stop()
}

type silence struct{}

func (silence) Stop() {}

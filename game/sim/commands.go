package sim

import (
	"errors"

	"github.com/kasuganosora/tilecombat/game/geom"
)

var (
	// ErrHostStopped is returned for commands submitted after Stop.
	ErrHostStopped = errors.New("sim: host stopped")
	// ErrUnknownCharacter is returned when a command names nobody on the map.
	ErrUnknownCharacter = errors.New("sim: unknown character")
	// ErrNotYourTurn is returned for player orders during the computer turn.
	ErrNotYourTurn = errors.New("sim: not the player's turn")
	// ErrNotControllable is returned when a command tries to steer a
	// computer-controlled or dead character.
	ErrNotControllable = errors.New("sim: character cannot be controlled")
	// ErrNoPath is returned when a move has no usable route.
	ErrNoPath = errors.New("sim: no path")
	// ErrUnknownCommand is returned for an unrecognised command kind.
	ErrUnknownCommand = errors.New("sim: unknown command")
)

// Kind names a command.
type Kind string

const (
	CmdStartCombat Kind = "start_combat"
	CmdEndCombat   Kind = "end_combat"
	CmdEndTurn     Kind = "end_turn"
	CmdMove        Kind = "move"
	CmdSelect      Kind = "select"
	CmdVisible     Kind = "visible"
)

// Command is one order for the simulation. X and Y are the target tile
// of a move.
type Command struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Character string `json:"character,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`

	reply chan Result
}

// Result is the outcome of a command.
type Result struct {
	ID   string `json:"id"`
	Err  error  `json:"-"`
	Data any    `json:"data,omitempty"`
}

// MoveResult describes what a move did.
type MoveResult struct {
	Action string      `json:"action"`
	Steps  []geom.Tile `json:"steps"`
	AP     int         `json:"ap"`
	// Target is set when the move ended in an attack.
	Target string `json:"target,omitempty"`
	// CombatStarted is set when the walk brought an enemy into sight.
	CombatStarted bool `json:"combat_started,omitempty"`
}

// VisibleResult lists what a character sees.
type VisibleResult struct {
	Character string      `json:"character"`
	Tiles     []geom.Tile `json:"tiles"`
	Enemies   []string    `json:"enemies"`
}

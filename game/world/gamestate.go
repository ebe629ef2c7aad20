package world

import (
	"sync/atomic"
	"time"
)

// GameState holds the in-game clock.
//
// Combat advances it by a fixed number of game seconds per side switch;
// outside combat the host advances it with wall time.
type GameState struct {
	seconds atomic.Int64
	started time.Time
}

// NewGameState starts the clock at the given game second.
func NewGameState(startSeconds int64) *GameState {
	gs := &GameState{started: time.Now()}
	gs.seconds.Store(startSeconds)
	return gs
}

// AdvanceGameTime moves the clock forward. Negative values are ignored.
func (gs *GameState) AdvanceGameTime(seconds int) {
	if seconds <= 0 {
		return
	}
	gs.seconds.Add(int64(seconds))
}

// GameSeconds is the total elapsed game time.
func (gs *GameState) GameSeconds() int64 { return gs.seconds.Load() }

// Day, Hour and Minute of the game clock.
func (gs *GameState) Clock() (day, hour, minute int) {
	s := gs.seconds.Load()
	day = int(s / 86400)
	hour = int(s % 86400 / 3600)
	minute = int(s % 3600 / 60)
	return day, hour, minute
}

// Uptime is wall time since the state was created.
func (gs *GameState) Uptime() time.Duration { return time.Since(gs.started) }

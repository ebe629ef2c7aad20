package sim

import (
	"github.com/kasuganosora/tilecombat/game/character"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/geom"
)

// Snapshot is the state published after every tick.
type Snapshot struct {
	Tick           uint64          `json:"tick"`
	MapID          string          `json:"map_id"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	GameSeconds    int64           `json:"game_seconds"`
	InProgress     bool            `json:"in_progress"`
	Side           combat.Side     `json:"side"`
	AutoEndCounter int             `json:"auto_end_counter"`
	CanEndCombat   bool            `json:"can_end_combat"`
	Current        string          `json:"current,omitempty"`
	Queue          []string        `json:"queue"`
	Session        string          `json:"session,omitempty"`
	Characters     []CharacterView `json:"characters"`
}

// CharacterView is one character as seen from outside the simulation.
type CharacterView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Faction      character.Faction  `json:"faction"`
	Tile         geom.Tile          `json:"tile"`
	Position     geom.Vec2          `json:"position"`
	Active       bool               `json:"active"`
	Asleep       bool               `json:"asleep,omitempty"`
	Invisible    bool               `json:"invisible,omitempty"`
	Selected     bool               `json:"selected,omitempty"`
	Stats        character.Stats    `json:"stats"`
	Survival     character.Survival `json:"survival"`
	VisibleTiles int                `json:"visible_tiles"`
}

func (h *Host) snapshot() Snapshot {
	w, ht := h.mp.Size()
	s := Snapshot{
		Tick:           h.ticks,
		MapID:          h.mp.ID(),
		Width:          w,
		Height:         ht,
		GameSeconds:    h.clock.GameSeconds(),
		InProgress:     h.mgr.InProgress(),
		Side:           h.mgr.ActiveSide(),
		AutoEndCounter: h.mgr.AutoEndCounter(),
		CanEndCombat:   h.mgr.CanPlayerEndCombat(),
		Queue:          []string{},
		Characters:     make([]CharacterView, 0, len(h.cast)),
	}
	if cur := h.mgr.Current(); cur != nil {
		s.Current = cur.ID()
	}
	for _, c := range h.mgr.Queue() {
		s.Queue = append(s.Queue, c.ID())
	}
	if h.mgr.InProgress() {
		s.Session = h.session.String()
	}
	selected := make(map[string]bool)
	for _, c := range h.group.Selected() {
		selected[c.ID()] = true
	}
	for _, c := range h.cast {
		s.Characters = append(s.Characters, CharacterView{
			ID:           c.ID(),
			Name:         c.Name(),
			Faction:      c.Faction(),
			Tile:         c.Tile(),
			Position:     c.Position(),
			Active:       c.Active(),
			Asleep:       c.Asleep(),
			Invisible:    c.Invisible(),
			Selected:     selected[c.ID()],
			Stats:        c.Stats(),
			Survival:     c.Survival(),
			VisibleTiles: len(c.VisibleTiles()),
		})
	}
	return s
}

package combat

import (
	"context"
	"errors"
	"sort"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/plugin/hook"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// ErrNotInCombat is returned by command layers when an order needs a
// running fight. The Manager itself never returns it.
var ErrNotInCombat = errors.New("combat: not in combat")

// Config configures a Manager.
type Config struct {
	TurnDuration    int     // in-game seconds per side switch; 0 = 6
	AutoEndTurns    int     // quiet player turns before combat ends itself; 0 = 2
	PlacementRadius int     // first search radius when fixing start positions; 0 = 3
	PlacementTween  float64 // seconds; 0 = 0.5
	EventBuffer     int     // 0 = 64

	Music  Music
	Hooks  *hook.HookCenter
	Tracer trace.Tracer
	Logger *zap.Logger
}

// Manager runs combat on the current map. It is not safe for concurrent
// use; a single simulation goroutine owns it.
type Manager struct {
	cfg    Config
	state  State
	logger *zap.Logger
	tracer trace.Tracer

	inProgress bool
	side       Side
	roster     []Combatant
	queue      []Combatant
	current    Combatant
	autoEnd    int
	occupied   *geom.PositionArray

	events chan Event
}

// NewManager creates a Manager over state.
func NewManager(state State, cfg Config) *Manager {
	if cfg.TurnDuration <= 0 {
		cfg.TurnDuration = 6
	}
	if cfg.AutoEndTurns <= 0 {
		cfg.AutoEndTurns = 2
	}
	if cfg.PlacementRadius <= 0 {
		cfg.PlacementRadius = 3
	}
	if cfg.PlacementTween <= 0 {
		cfg.PlacementTween = 0.5
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if cfg.Music == nil {
		cfg.Music = silence{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("combat")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		state:    state,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
		occupied: geom.NewPositionArray(16),
		events:   make(chan Event, cfg.EventBuffer),
	}
}

// Events returns the event channel.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) InProgress() bool    { return m.inProgress }
func (m *Manager) ActiveSide() Side    { return m.side }
func (m *Manager) AutoEndCounter() int { return m.autoEnd }

// IsPlayersTurn reports whether combat is running and waiting on the player.
func (m *Manager) IsPlayersTurn() bool { return m.inProgress && m.side == SidePlayer }

// Current returns the computer combatant acting right now, or nil.
func (m *Manager) Current() Combatant { return m.current }

// Queue returns the computer combatants still waiting to act this turn.
func (m *Manager) Queue() []Combatant {
	out := make([]Combatant, len(m.queue))
	copy(out, m.queue)
	return out
}

// Roster returns every combatant taking part in the current fight.
func (m *Manager) Roster() []Combatant {
	out := make([]Combatant, len(m.roster))
	copy(out, m.roster)
	return out
}

// StartCombat begins a fight with every combatant on the current map.
func (m *Manager) StartCombat(ctx context.Context) {
	if m.inProgress {
		return
	}
	mp := m.state.CurrentMap()
	if mp == nil {
		m.logger.Warn("start combat without a map")
		return
	}
	ctx, span := m.tracer.Start(ctx, "combat.start")
	defer span.End()

	if m.cfg.Hooks != nil {
		if _, err := m.cfg.Hooks.Trigger(ctx, hook.BeforeCombatStart, nil); errors.Is(err, hook.ErrInterrupt) {
			m.logger.Info("combat start vetoed by hook")
			return
		}
	}

	m.roster = m.roster[:0]
	for _, o := range mp.Occupants() {
		if c, ok := o.(Combatant); ok {
			m.roster = append(m.roster, c)
		}
	}
	m.inProgress = true
	m.queue = m.queue[:0]
	m.current = nil
	m.autoEnd = 0

	m.occupied.Clear()
	for _, c := range m.roster {
		m.fixPosition(mp, c)
	}
	m.occupied.Clear()

	for _, c := range m.roster {
		c.OnCombatStart()
		c.OnTurnStart()
	}

	evt := CombatStarted{Combatants: refsOf(m.roster)}
	if sel := m.selectLeader(); sel != nil {
		ref := refOf(sel)
		evt.Selected = &ref
	} else {
		m.logger.Warn("combat started without a player character to select")
	}
	m.side = SidePlayer

	span.SetAttributes(attribute.Int("combat.roster", len(m.roster)))
	m.logger.Info("combat started", zap.Int("combatants", len(m.roster)))
	m.emit(evt)
	m.trigger(ctx, hook.OnCombatStart, evt)
}

func (m *Manager) selectLeader() Combatant {
	g := m.state.PlayerGroup()
	if g == nil {
		return nil
	}
	sel := g.Leader()
	if sel == nil {
		if members := g.Members(); len(members) > 0 {
			sel = members[0]
		}
	}
	if sel != nil {
		g.SelectOnly(sel)
	}
	return sel
}

// fixPosition moves c off blocked or already claimed tiles. Claimed
// tiles are tracked in m.occupied so no two combatants end up together.
func (m *Manager) fixPosition(mp Map, c Combatant) {
	t := c.Tile()
	if m.free(mp, c, t) {
		m.occupied.AddTile(t)
		return
	}

	dst, ok := geom.Tile{}, false
	if prev, has := c.PrevTile(); has && m.free(mp, c, prev) {
		dst, ok = prev, true
	}
	if !ok {
		dst, ok = mp.UnblockedTile(t.X, t.Y, m.cfg.PlacementRadius, c, false, m.occupied)
	}
	if !ok {
		w, h := mp.Size()
		dst, ok = mp.UnblockedTile(t.X, t.Y, max(w, h), c, false, m.occupied)
	}
	if !ok {
		m.logger.Warn("no free tile for combatant", zap.String("id", c.ID()))
		return
	}
	m.occupied.AddTile(dst)
	mp.MoveOccupant(c, dst.X, dst.Y, m.cfg.PlacementTween)
}

func (m *Manager) free(mp Map, c Combatant, t geom.Tile) bool {
	return !mp.Blocked(c, t.X, t.Y, false, false) && !m.occupied.ContainsTile(t)
}

// Update advances the computer side by at most one actor step.
func (m *Manager) Update(ctx context.Context, dt float64) {
	if !m.inProgress || m.side != SideComputer {
		return
	}
	if m.current == nil {
		if len(m.queue) == 0 {
			m.SwitchToNextSide(ctx)
			return
		}
		m.current = m.queue[0]
		m.queue = m.queue[1:]
		m.current.ResetHighlight()
		evt := ActorActivated{Actor: refOf(m.current)}
		m.emit(evt)
		m.trigger(ctx, hook.OnActorActivated, evt)
	}

	c := m.current
	if !c.Active() {
		m.current = nil
		return
	}
	b := c.Brain()
	if b == nil {
		m.current = nil
		return
	}
	b.UpdateCombatAction(dt)
	if b.FinishedTurn() {
		c.OnTurnEnd()
		m.current = nil
	}
}

// EndPlayerTurn hands the turn to the computer side.
func (m *Manager) EndPlayerTurn(ctx context.Context) {
	if m.IsPlayersTurn() {
		m.SwitchToNextSide(ctx)
	}
}

// SwitchToNextSide passes the turn to the other side.
func (m *Manager) SwitchToNextSide(ctx context.Context) {
	if !m.inProgress {
		return
	}
	ctx, span := m.tracer.Start(ctx, "combat.side_switch")
	defer span.End()

	var members []Combatant
	g := m.state.PlayerGroup()
	if g != nil {
		members = g.Members()
	}
	if m.side == SidePlayer {
		for _, c := range members {
			c.OnTurnEnd()
		}
	}

	m.side = m.side.Other()
	m.state.AdvanceGameTime(m.cfg.TurnDuration)
	hours := float64(m.cfg.TurnDuration) / 3600
	for _, c := range members {
		c.UpdateSurvival(hours)
	}

	m.queue = m.queue[:0]
	m.current = nil

	if m.side == SideComputer {
		for _, c := range m.roster {
			if c.Active() && !c.BelongsToPlayerFaction() {
				c.OnTurnStart()
				m.queue = append(m.queue, c)
			}
		}
		// Lowest max AP acts first.
		sort.SliceStable(m.queue, func(i, j int) bool {
			return m.queue[i].MaxAP() < m.queue[j].MaxAP()
		})
	} else {
		if g != nil && g.SelectedCount() == 0 && len(members) > 0 {
			g.SelectOnly(members[0])
		}
		for _, c := range members {
			c.BroadcastPositionToEnemiesInSight()
		}
		if m.canEndCombat(true) {
			m.autoEnd++
		} else {
			m.autoEnd = 0
		}
		if m.autoEnd >= m.cfg.AutoEndTurns {
			m.autoEnd = 0
			m.EndCombat(ctx)
			return
		}
		for _, c := range members {
			c.OnTurnStart()
		}
	}

	span.SetAttributes(
		attribute.String("combat.side", m.side.String()),
		attribute.Int("combat.queue", len(m.queue)))
	evt := TurnStarted{Side: m.side, Queue: refsOf(m.queue), AutoEndCounter: m.autoEnd}
	if m.side == SidePlayer {
		m.logger.Info("player turn", zap.Int("auto_end", m.autoEnd))
	}
	m.emit(evt)
	m.trigger(ctx, hook.OnSideSwitch, evt)
}

// CanPlayerEndCombat reports whether the player may leave combat by choice.
func (m *Manager) CanPlayerEndCombat() bool {
	return m.inProgress && m.autoEnd > 0 && m.canEndCombat(true)
}

// canEndCombat holds when no party member sees an enemy outside a combat
// map, or when no hostile is left standing. With ignoreSleeping set,
// sleeping hostiles do not count as standing.
func (m *Manager) canEndCombat(ignoreSleeping bool) bool {
	mp := m.state.CurrentMap()
	g := m.state.PlayerGroup()
	if mp == nil || g == nil {
		return true
	}
	if !g.CanSeeEnemy() && !mp.IsCombatMap() {
		return true
	}
	for _, c := range m.roster {
		if !c.Active() || !c.HostileTowardsPlayer() {
			continue
		}
		if ignoreSleeping && c.Asleep() {
			continue
		}
		return false
	}
	return true
}

// EndCombat finishes the fight and shares out experience.
func (m *Manager) EndCombat(ctx context.Context) {
	if !m.inProgress {
		return
	}
	ctx, span := m.tracer.Start(ctx, "combat.end")
	defer span.End()

	evt := CombatEnded{}
	g := m.state.PlayerGroup()
	if g != nil {
		avg := g.AverageLevel(false)
		for _, c := range m.roster {
			if c.Active() {
				continue
			}
			k := c.Killer()
			if k == nil || !g.Contains(k) {
				continue
			}
			gain := ExperienceGain(c.ExperienceValue(), c.Level(), avg)
			if gain <= 0 {
				continue
			}
			evt.ExpPool += gain
			evt.Kills = append(evt.Kills, Kill{Victim: refOf(c), Killer: refOf(k), Level: c.Level(), Exp: gain})
		}

		var recipients []Combatant
		for _, c := range g.Members() {
			if c.Active() {
				recipients = append(recipients, c)
			}
		}
		if len(recipients) > 0 {
			evt.Award = evt.ExpPool / len(recipients)
		}
		evt.Recipients = refsOf(recipients)
		if evt.Award > 0 {
			for _, c := range recipients {
				c.GiveExperience(evt.Award)
			}
		}
	}

	for _, c := range m.roster {
		c.OnCombatEnd()
	}
	m.cfg.Music.Stop()

	m.inProgress = false
	m.side = SidePlayer
	m.queue = m.queue[:0]
	m.current = nil
	m.autoEnd = 0

	span.SetAttributes(
		attribute.Int("combat.exp_pool", evt.ExpPool),
		attribute.Int("combat.award", evt.Award))
	m.logger.Info("combat finished",
		zap.Int("exp_pool", evt.ExpPool),
		zap.Int("award", evt.Award),
		zap.Int("kills", len(evt.Kills)))
	m.emit(evt)
	m.trigger(ctx, hook.OnCombatEnd, evt)
}

func (m *Manager) emit(evt Event) {
	select {
	case m.events <- evt:
	default:
		m.logger.Warn("combat event dropped", zap.String("type", evt.EventType()))
	}
}

func (m *Manager) trigger(ctx context.Context, event string, data Event) {
	if m.cfg.Hooks == nil {
		return
	}
	if _, err := m.cfg.Hooks.Trigger(ctx, event, data); err != nil {
		m.logger.Debug("hook chain stopped", zap.String("event", event), zap.Error(err))
	}
}

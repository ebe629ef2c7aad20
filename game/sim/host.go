// Package sim runs the board. A Host owns the map, the cast and the combat
// manager; everything from outside reaches them as commands applied on
// the tick goroutine between updates.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/config"
	"github.com/kasuganosora/tilecombat/game/character"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/world"
	"github.com/kasuganosora/tilecombat/plugin/hook"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Journal records combat events for later inspection.
type Journal interface {
	Record(session uuid.UUID, evt combat.Event)
}

// Config configures a Host.
type Config struct {
	Combat   config.CombatConfig
	Scenario config.ScenarioConfig

	SnapshotTTL   time.Duration // 0 = 60s
	EventLogSize  int64         // events kept in the cache log; 0 = 100
	CommandBuffer int           // 0 = 64

	// Cache and PubSub are optional; without them snapshots and events
	// stay in process.
	Cache   cache.Cache
	PubSub  cache.PubSub
	Journal Journal
	Music   combat.Music
	Hooks   *hook.HookCenter
	Tracer  trace.Tracer
	Logger  *zap.Logger
}

// Envelope wraps an event for publishing.
type Envelope struct {
	Type    string       `json:"type"`
	Session string       `json:"session"`
	Tick    uint64       `json:"tick"`
	Data    combat.Event `json:"data"`
}

// Host is the simulation. Tick must be called from a single goroutine;
// Submit and the read accessors are safe from any goroutine.
type Host struct {
	cfg    Config
	logger *zap.Logger
	opts   character.Options

	maps   *world.Registry
	mp     *world.GameMap
	clock  *world.GameState
	group  *character.Group
	cast   []*character.Character
	byID   map[string]*character.Character
	mgr    *combat.Manager
	finder *combat.MapPathfinder

	cmds     chan *Command
	done     chan struct{}
	stopOnce sync.Once

	ticks     uint64
	idle      float64
	session   uuid.UUID
	lastSnap  string
	lastWrite time.Time

	mu     sync.RWMutex
	latest Snapshot
}

// New builds the scenario and its combat manager.
func New(cfg Config) (*Host, error) {
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = time.Minute
	}
	if cfg.EventLogSize <= 0 {
		cfg.EventLogSize = 100
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.Scenario.Layout) == 0 {
		def := DefaultScenario()
		def.Isometric = cfg.Scenario.Isometric
		def.StartSeconds = cfg.Scenario.StartSeconds
		cfg.Scenario = def
	}
	if cfg.Scenario.MapID == "" {
		cfg.Scenario.MapID = "scenario"
	}

	h := &Host{
		cfg:    cfg,
		logger: cfg.Logger.Named("sim"),
		opts:   characterOptions(cfg.Combat),
		clock:  world.NewGameState(cfg.Scenario.StartSeconds),
		byID:   make(map[string]*character.Character),
		cmds:   make(chan *Command, cfg.CommandBuffer),
		done:   make(chan struct{}),
	}
	h.opts.Logger = h.logger
	sc := cfg.Scenario
	h.maps = world.NewRegistry(func(id string) (*world.GameMap, error) {
		if id != sc.MapID {
			return nil, fmt.Errorf("sim: no scenario for map %q", id)
		}
		return loadMap(sc)
	}, h.logger)

	mp, err := h.maps.GetOrLoad(sc.MapID)
	if err != nil {
		return nil, err
	}
	h.mp = mp
	h.cast, err = buildCast(mp, sc.Characters, h.opts)
	if err != nil {
		return nil, err
	}
	h.group = character.NewGroup()
	for _, c := range h.cast {
		h.byID[c.ID()] = c
		if c.BelongsToPlayerFaction() {
			h.group.Add(c)
		}
	}
	if l, ok := h.byID[sc.Leader]; ok {
		h.group.SetLeader(l)
	}

	h.finder = &combat.MapPathfinder{
		Map: mp,
		Hostile: func(mover combat.Mover, o world.Occupant) bool {
			a, ok1 := mover.(*character.Character)
			b, ok2 := o.(*character.Character)
			return ok1 && ok2 && a.IsEnemy(b)
		},
		Reach: func(mover combat.Mover) int {
			if c, ok := mover.(*character.Character); ok {
				return c.AttackRange()
			}
			return 1
		},
	}
	h.mgr = combat.NewManager(h, combat.Config{
		TurnDuration:    cfg.Combat.TurnDurationS,
		AutoEndTurns:    cfg.Combat.AutoEndTurns,
		PlacementRadius: cfg.Combat.PlacementRadius,
		PlacementTween:  cfg.Combat.PlacementTweenS,
		Music:           cfg.Music,
		Hooks:           cfg.Hooks,
		Tracer:          cfg.Tracer,
		Logger:          h.logger,
	})
	h.latest = h.snapshot()
	h.logger.Info("scenario loaded",
		zap.String("map_id", mp.ID()),
		zap.Int("characters", len(h.cast)),
		zap.Int("party", len(h.group.Members())))
	return h, nil
}

// combat.State

func (h *Host) CurrentMap() combat.Map          { return h.mp }
func (h *Host) PlayerGroup() combat.PlayerGroup { return h.group }
func (h *Host) AdvanceGameTime(seconds int)     { h.clock.AdvanceGameTime(seconds) }

// Manager exposes the combat manager to the tick goroutine's callers.
func (h *Host) Manager() *combat.Manager { return h.mgr }

// Clock is the in-game clock.
func (h *Host) Clock() *world.GameState { return h.clock }

// Latest returns the snapshot taken after the last tick.
func (h *Host) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Submit queues cmd for the next tick and waits for its result.
func (h *Host) Submit(ctx context.Context, cmd Command) (Result, error) {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	cmd.reply = make(chan Result, 1)
	select {
	case <-h.done:
		return Result{ID: cmd.ID}, ErrHostStopped
	default:
	}
	select {
	case h.cmds <- &cmd:
	case <-h.done:
		return Result{ID: cmd.ID}, ErrHostStopped
	case <-ctx.Done():
		return Result{ID: cmd.ID}, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r, r.Err
	case <-h.done:
		return Result{ID: cmd.ID}, ErrHostStopped
	case <-ctx.Done():
		return Result{ID: cmd.ID}, ctx.Err()
	}
}

// Stop rejects further commands and fails the queued ones.
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		for {
			select {
			case cmd := <-h.cmds:
				cmd.reply <- Result{ID: cmd.ID, Err: ErrHostStopped}
			default:
				return
			}
		}
	})
}

// Tick applies pending commands, advances animations and combat by dt,
// and publishes what happened.
func (h *Host) Tick(ctx context.Context, dt time.Duration) {
	select {
	case <-h.done:
		return
	default:
	}
	h.ticks++
	h.drain(ctx)

	secs := dt.Seconds()
	h.mp.Update(secs)
	if h.mgr.InProgress() {
		h.mgr.Update(ctx, secs)
	} else {
		h.idle += secs
		whole := int(h.idle)
		h.idle -= float64(whole)
		h.clock.AdvanceGameTime(whole)
	}

	h.flushEvents(ctx)
	h.publishSnapshot(ctx)
}

func (h *Host) drain(ctx context.Context) {
	for {
		select {
		case cmd := <-h.cmds:
			data, err := h.apply(ctx, cmd)
			cmd.reply <- Result{ID: cmd.ID, Err: err, Data: data}
			if err != nil {
				h.logger.Debug("command rejected",
					zap.String("id", cmd.ID),
					zap.String("kind", string(cmd.Kind)),
					zap.Error(err))
			}
		default:
			return
		}
	}
}

func (h *Host) flushEvents(ctx context.Context) {
	for {
		select {
		case evt := <-h.mgr.Events():
			h.publishEvent(ctx, evt)
		default:
			return
		}
	}
}

func (h *Host) publishEvent(ctx context.Context, evt combat.Event) {
	if _, ok := evt.(combat.CombatStarted); ok {
		h.session = uuid.New()
	}
	if h.cfg.Journal != nil {
		h.cfg.Journal.Record(h.session, evt)
	}
	b, err := json.Marshal(Envelope{
		Type:    evt.EventType(),
		Session: h.session.String(),
		Tick:    h.ticks,
		Data:    evt,
	})
	if err != nil {
		h.logger.Error("marshal combat event", zap.String("type", evt.EventType()), zap.Error(err))
		return
	}
	payload := string(b)
	if h.cfg.PubSub != nil {
		if err := h.cfg.PubSub.Publish(ctx, cache.EventsChannel, payload); err != nil {
			h.logger.Warn("publish combat event", zap.Error(err))
		}
	}
	if h.cfg.Cache != nil {
		if err := cache.PushCapped(ctx, h.cfg.Cache, cache.EventLogKey, payload, h.cfg.EventLogSize); err != nil {
			h.logger.Warn("append combat log", zap.Error(err))
		}
	}
}

func (h *Host) publishSnapshot(ctx context.Context) {
	snap := h.snapshot()
	h.mu.Lock()
	h.latest = snap
	h.mu.Unlock()
	if h.cfg.Cache == nil {
		return
	}

	tick := snap.Tick
	snap.Tick = 0
	b, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	// The tick counter changes every time; compare without it.
	key := string(b)
	now := time.Now()
	if key == h.lastSnap && now.Sub(h.lastWrite) < h.cfg.SnapshotTTL/2 {
		return
	}
	snap.Tick = tick
	if b, err = json.Marshal(snap); err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	if err := h.cfg.Cache.Set(ctx, cache.SnapshotKey, string(b), h.cfg.SnapshotTTL); err != nil {
		h.logger.Warn("store snapshot", zap.Error(err))
		return
	}
	h.lastSnap, h.lastWrite = key, now
}

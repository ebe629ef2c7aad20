// Package character holds the people on the board: their stats, their
// line of sight and, for computer-controlled ones, their brain.
package character

import (
	"math"

	"github.com/kasuganosora/tilecombat/game/ai"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/los"
	"github.com/kasuganosora/tilecombat/game/world"
	"go.uber.org/zap"
)

var (
	_ combat.Combatant = (*Character)(nil)
	_ ai.Actor         = (*Character)(nil)
)

// Options carries the tunables shared by every character.
type Options struct {
	SightRadiusLocal int
	SightRadiusWorld int
	RaysPC           int
	RaysNPC          int
	// ConeAngle gives computer characters a view cone of ±ConeAngle
	// degrees instead of all-round sight. Zero disables cones.
	ConeAngle    float64
	APCostMove   int
	APCostAttack int
	StepTween    float64 // seconds per animated step
	AIStep       float64 // seconds between AI actions
	Logger       *zap.Logger
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		SightRadiusLocal: 10,
		SightRadiusWorld: 5,
		RaysPC:           360,
		RaysNPC:          100,
		APCostMove:       2,
		APCostAttack:     4,
		StepTween:        0.2,
	}
}

// Character is a person on a map.
type Character struct {
	id      string
	name    string
	faction Faction
	stats   Stats
	opts    Options
	logger  *zap.Logger

	mp      *world.GameMap
	tile    geom.Tile
	prev    geom.Tile
	hasPrev bool
	pos     geom.Vec2

	active      bool
	asleep      bool
	invisible   bool
	highlighted bool
	killer      *Character
	survival    Survival

	sight *los.LineOfSight
	cone  *los.LineOfSight
	brain *ai.Brain

	lastKnown    geom.Tile
	hasLastKnown bool
}

// New creates a living character that is not on any map yet.
func New(id, name string, faction Faction, stats Stats, opts Options) *Character {
	stats.normalize()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Character{
		id:      id,
		name:    name,
		faction: faction,
		stats:   stats,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("character", id)),
		active:  true,
	}
}

// Place puts the character on mp at t, replacing any previous map.
func (c *Character) Place(mp *world.GameMap, t geom.Tile) {
	if c.mp != nil && c.mp != mp {
		c.mp.RemoveOccupant(c)
	}
	c.mp = mp
	c.tile = t
	c.hasPrev = false
	c.pos = t.Vec()
	mp.AddOccupant(c)

	eye := c.eye()
	radius := c.opts.SightRadiusLocal
	if mp.IsWorldMap() {
		radius = c.opts.SightRadiusWorld
	}
	rays := c.opts.RaysNPC
	if c.faction == FactionPlayer {
		rays = c.opts.RaysPC
	}
	c.sight = los.NewCircular(mp, rays, radius, eye.X, eye.Y)
	c.cone = nil
	if c.opts.ConeAngle > 0 && c.faction != FactionPlayer {
		c.cone = los.NewCone(mp, rays, radius, 0, c.opts.ConeAngle, eye.X, eye.Y)
	}

	c.brain = nil
	if c.faction != FactionPlayer {
		c.brain = ai.NewBrain(c, ai.PassFunc(func(_, to geom.Tile) bool {
			return !c.mp.Blocked(c, to.X, to.Y, false, true)
		}), ai.BrainConfig{
			APCostMove:   c.opts.APCostMove,
			APCostAttack: c.opts.APCostAttack,
			StepInterval: c.opts.AIStep,
			Logger:       c.logger,
		})
	}
}

// eye is the camera position the character looks from.
func (c *Character) eye() geom.Vec2 { return c.mp.ProjectFromTiles(c.tile.Center()) }

func (c *Character) ID() string              { return c.id }
func (c *Character) Name() string            { return c.name }
func (c *Character) Faction() Faction        { return c.faction }
func (c *Character) Stats() Stats            { return c.stats }
func (c *Character) Survival() Survival      { return c.survival }
func (c *Character) Map() *world.GameMap     { return c.mp }
func (c *Character) Tile() geom.Tile         { return c.tile }
func (c *Character) Position() geom.Vec2     { return c.pos }
func (c *Character) SetPosition(v geom.Vec2) { c.pos = v }
func (c *Character) Active() bool            { return c.active }
func (c *Character) Asleep() bool            { return c.asleep }
func (c *Character) SetAsleep(v bool)        { c.asleep = v }
func (c *Character) Invisible() bool         { return c.invisible }
func (c *Character) SetInvisible(v bool)     { c.invisible = v }
func (c *Character) Highlighted() bool       { return c.highlighted }
func (c *Character) SetHighlighted(v bool)   { c.highlighted = v }
func (c *Character) ResetHighlight()         { c.highlighted = false }
func (c *Character) MaxAP() int              { return c.stats.MaxAP }
func (c *Character) AP() int                 { return c.stats.AP }
func (c *Character) Level() int              { return c.stats.Level }
func (c *Character) ExperienceValue() int    { return c.stats.ExperienceValue }
func (c *Character) AttackRange() int        { return c.stats.AttackRange }

func (c *Character) BelongsToPlayerFaction() bool { return c.faction == FactionPlayer }
func (c *Character) HostileTowardsPlayer() bool   { return c.faction == FactionHostile }

// SetTile moves the character's logical position and recomputes what it
// sees. The old tile is remembered as the previous tile.
func (c *Character) SetTile(t geom.Tile) {
	if t == c.tile {
		return
	}
	old := c.tile
	c.prev, c.hasPrev = old, true
	c.tile = t
	if c.mp == nil {
		return
	}
	if c.cone != nil {
		from := c.mp.ProjectFromTiles(old.Center())
		to := c.mp.ProjectFromTiles(t.Center())
		c.cone.SetDirection(math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi)
	}
	c.RefreshSight()
}

func (c *Character) PrevTile() (geom.Tile, bool) { return c.prev, c.hasPrev }

// RefreshSight recomputes the visible tiles, e.g. after the map changed.
func (c *Character) RefreshSight() {
	if c.sight == nil {
		return
	}
	eye := c.eye()
	c.sight.SetPosition(eye.X, eye.Y)
	if c.cone != nil {
		c.cone.SetPosition(eye.X, eye.Y)
	}
}

// Sight returns the sight the character uses to spot others: the view
// cone when it has one, else its all-round line of sight.
func (c *Character) Sight() *los.LineOfSight {
	if c.cone != nil {
		return c.cone
	}
	return c.sight
}

// VisibleTiles returns the distinct tiles the character sees.
func (c *Character) VisibleTiles() []geom.Tile {
	if s := c.Sight(); s != nil {
		return s.VisibleTiles().Unique()
	}
	return nil
}

func (c *Character) CanSeeTile(x, y int) bool {
	s := c.Sight()
	return s != nil && s.IsVisible(x, y)
}

// CanSee reports whether other is in view. Invisible characters are never
// seen, and the dead see nothing.
func (c *Character) CanSee(other combat.Combatant) bool {
	if !c.active || other.Invisible() {
		return false
	}
	t := other.Tile()
	return c.CanSeeTile(t.X, t.Y)
}

// CanSeeGeometry reports whether the tile lies within sight range and
// inside a freestanding shape the rays touched.
func (c *Character) CanSeeGeometry(x, y int) bool {
	s := c.Sight()
	if s == nil {
		return false
	}
	p := c.mp.ProjectFromTiles(geom.T(x, y).Center())
	return s.ContainsInRadius(p.X, p.Y) && s.IsContainedInVisibleShapePolygon(x, y)
}

// IsEnemy reports whether c and other fight each other.
func (c *Character) IsEnemy(other *Character) bool {
	return (c.faction == FactionPlayer && other.faction == FactionHostile) ||
		(c.faction == FactionHostile && other.faction == FactionPlayer)
}

func (c *Character) others() []*Character {
	if c.mp == nil {
		return nil
	}
	var out []*Character
	for _, o := range c.mp.Occupants() {
		if oc, ok := o.(*Character); ok && oc != c {
			out = append(out, oc)
		}
	}
	return out
}

// EnemiesInSight lists the living enemies c can see.
func (c *Character) EnemiesInSight() []*Character {
	var out []*Character
	for _, o := range c.others() {
		if o.active && c.IsEnemy(o) && c.CanSee(o) {
			out = append(out, o)
		}
	}
	return out
}

func (c *Character) HasEnemiesInSight() bool { return len(c.EnemiesInSight()) > 0 }

// BroadcastPositionToEnemiesInSight lets every enemy that can see c
// remember where it stands.
func (c *Character) BroadcastPositionToEnemiesInSight() {
	for _, o := range c.others() {
		if o.active && o.IsEnemy(c) && o.CanSee(c) {
			o.SetLastKnownEnemyPosition(c.tile)
		}
	}
}

func (c *Character) SetLastKnownEnemyPosition(t geom.Tile) {
	c.lastKnown, c.hasLastKnown = t, true
}

func (c *Character) LastKnownEnemyPosition() (geom.Tile, bool) {
	return c.lastKnown, c.hasLastKnown
}

func (c *Character) ClearLastKnownEnemyPosition() { c.hasLastKnown = false }

// NearestEnemyInSight returns the closest visible enemy and remembers its
// tile.
func (c *Character) NearestEnemyInSight() (ai.Target, bool) {
	var best *Character
	bestD := math.MaxFloat64
	for _, e := range c.EnemiesInSight() {
		if d := c.tile.Dst(e.tile); d < bestD {
			best, bestD = e, d
		}
	}
	if best == nil {
		return nil, false
	}
	c.SetLastKnownEnemyPosition(best.tile)
	return best, true
}

func (c *Character) SpendAP(n int) bool {
	if c.stats.AP < n {
		return false
	}
	c.stats.AP -= n
	return true
}

// StepTo walks onto an adjacent tile.
func (c *Character) StepTo(t geom.Tile) {
	c.mp.MoveOccupant(c, t.X, t.Y, c.opts.StepTween)
}

// Attack hits t with the character's attack value.
func (c *Character) Attack(t ai.Target) {
	if other, ok := t.(*Character); ok {
		other.TakeDamage(c.stats.Attack, c)
	}
}

// TakeDamage lowers HP. At zero HP the character dies and from is
// recorded as the killer.
func (c *Character) TakeDamage(amount int, from *Character) {
	if !c.active || amount <= 0 {
		return
	}
	c.stats.HP -= amount
	if c.stats.HP > 0 {
		return
	}
	c.stats.HP = 0
	c.active = false
	c.killer = from
	f := []zap.Field{}
	if from != nil {
		f = append(f, zap.String("killer", from.id))
	}
	c.logger.Info("character died", f...)
}

func (c *Character) Killer() combat.Combatant {
	if c.killer == nil {
		return nil
	}
	return c.killer
}

func (c *Character) Brain() combat.Brain {
	if c.brain == nil {
		return nil
	}
	return c.brain
}

func (c *Character) GiveExperience(exp int) { c.stats.Experience += exp }

// UpdateSurvival adds elapsed in-game hours to hunger and fatigue.
func (c *Character) UpdateSurvival(hours float64) {
	c.survival.Hunger += hours
	c.survival.Fatigue += hours
}

func (c *Character) OnCombatStart() {
	c.stats.AP = c.stats.MaxAP
}

// OnTurnStart refills AP and readies the brain.
func (c *Character) OnTurnStart() {
	c.stats.AP = c.stats.MaxAP
	if c.brain != nil {
		c.brain.StartTurn()
	}
}

func (c *Character) OnTurnEnd() { c.highlighted = false }

// OnCombatEnd forgets enemies and refills AP.
func (c *Character) OnCombatEnd() {
	c.hasLastKnown = false
	c.stats.AP = c.stats.MaxAP
}

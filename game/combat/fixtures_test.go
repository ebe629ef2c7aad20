package combat

import (
	"math"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
)

// countingBrain finishes after a fixed number of updates and logs the
// owner's id on every call.
type countingBrain struct {
	owner string
	left  int
	calls *[]string
}

func (b *countingBrain) UpdateCombatAction(float64) {
	b.left--
	if b.calls != nil {
		*b.calls = append(*b.calls, b.owner)
	}
}
func (b *countingBrain) FinishedTurn() bool { return b.left <= 0 }

type fighter struct {
	id       string
	tile     geom.Tile
	pos      geom.Vec2
	prev     *geom.Tile
	active   bool
	player   bool
	hostile  bool
	asleep   bool
	maxAP    int
	level    int
	expValue int
	killer   Combatant
	brain    *countingBrain
	turnLen  int

	exp        int
	starts     int
	turns      int
	turnEnds   int
	ends       int
	highlights int
	broadcasts int
	survival   float64
}

func newEnemy(id string, maxAP int, calls *[]string) *fighter {
	f := &fighter{id: id, active: true, hostile: true, maxAP: maxAP, level: 1, turnLen: 1}
	f.brain = &countingBrain{owner: id, calls: calls}
	return f
}

func newHero(id string, level int) *fighter {
	return &fighter{id: id, active: true, player: true, maxAP: 8, level: level}
}

func (f *fighter) at(x, y int) *fighter {
	f.tile = geom.T(x, y)
	f.pos = f.tile.Vec()
	return f
}

func (f *fighter) Tile() geom.Tile                    { return f.tile }
func (f *fighter) SetTile(t geom.Tile)                { f.tile = t }
func (f *fighter) Position() geom.Vec2                { return f.pos }
func (f *fighter) SetPosition(v geom.Vec2)            { f.pos = v }
func (f *fighter) ID() string                         { return f.id }
func (f *fighter) Name() string                       { return f.id }
func (f *fighter) Active() bool                       { return f.active }
func (f *fighter) BelongsToPlayerFaction() bool       { return f.player }
func (f *fighter) HostileTowardsPlayer() bool         { return f.hostile }
func (f *fighter) Asleep() bool                       { return f.asleep }
func (f *fighter) Invisible() bool                    { return false }
func (f *fighter) MaxAP() int                         { return f.maxAP }
func (f *fighter) Level() int                         { return f.level }
func (f *fighter) ExperienceValue() int               { return f.expValue }
func (f *fighter) Killer() Combatant                  { return f.killer }
func (f *fighter) OnCombatStart()                     { f.starts++ }
func (f *fighter) OnTurnEnd()                         { f.turnEnds++ }
func (f *fighter) OnCombatEnd()                       { f.ends++ }
func (f *fighter) ResetHighlight()                    { f.highlights++ }
func (f *fighter) UpdateSurvival(hours float64)       { f.survival += hours }
func (f *fighter) BroadcastPositionToEnemiesInSight() { f.broadcasts++ }
func (f *fighter) GiveExperience(exp int)             { f.exp += exp }
func (f *fighter) CanSee(Combatant) bool              { return false }

func (f *fighter) PrevTile() (geom.Tile, bool) {
	if f.prev == nil {
		return geom.Tile{}, false
	}
	return *f.prev, true
}

func (f *fighter) OnTurnStart() {
	f.turns++
	if f.brain != nil {
		f.brain.left = f.turnLen
	}
}

func (f *fighter) Brain() Brain {
	if f.brain == nil {
		return nil
	}
	return f.brain
}

type party struct {
	members  []Combatant
	leader   Combatant
	selected []Combatant
	sees     bool
}

func (p *party) Members() []Combatant   { return p.members }
func (p *party) Leader() Combatant      { return p.leader }
func (p *party) SelectOnly(c Combatant) { p.selected = []Combatant{c} }
func (p *party) SelectedCount() int     { return len(p.selected) }
func (p *party) CanSeeEnemy() bool      { return p.sees }
func (p *party) Contains(c Combatant) bool {
	for _, m := range p.members {
		if m == c {
			return true
		}
	}
	return false
}

func (p *party) AverageLevel(includeInactive bool) int {
	total, n := 0, 0
	for _, m := range p.members {
		if includeInactive || m.Active() {
			total += m.Level()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

type gameState struct {
	mp      *world.GameMap
	group   *party
	seconds int
}

func (s *gameState) CurrentMap() Map {
	if s.mp == nil {
		return nil
	}
	return s.mp
}
func (s *gameState) PlayerGroup() PlayerGroup {
	if s.group == nil {
		return nil
	}
	return s.group
}
func (s *gameState) AdvanceGameTime(sec int) { s.seconds += sec }

// newState builds an open 10x10 map holding fs; heroes join the party.
func newState(fs ...*fighter) *gameState {
	mp := world.NewGameMap("arena", 10, 10, world.MapOptions{})
	st := &gameState{mp: mp, group: &party{}}
	for _, f := range fs {
		mp.AddOccupant(f)
		if f.player {
			st.group.members = append(st.group.members, f)
		}
	}
	return st
}

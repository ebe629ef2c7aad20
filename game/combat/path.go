package combat

import (
	"slices"

	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
)

// Action is what clicking a tile would make the mover do.
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionAttack
	ActionTalk
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionTalk:
		return "talk"
	default:
		return "none"
	}
}

// Mover is a combatant that can walk a Path.
type Mover interface {
	world.Occupant
	MaxAP() int
}

// Pathfinder resolves actions and routes for a Path.
type Pathfinder interface {
	ActionFor(mover Mover, x, y int) Action
	// FindPath returns the route from from to to, both included, or nil.
	FindPath(mover Mover, from, to geom.Tile) []geom.Tile
	IsRangedAttack(mover Mover, x, y int) bool
}

// Path is the route a mover would take to reach a tile, and the tiles
// highlighted along it.
type Path struct {
	finder     Pathfinder
	apCostMove int

	action  Action
	target  geom.Tile
	steps   []geom.Tile
	markers []geom.Tile
}

// NewPath creates an empty path. apCostMove is the AP one step costs.
func NewPath(finder Pathfinder, apCostMove int) *Path {
	if apCostMove < 1 {
		apCostMove = 1
	}
	return &Path{finder: finder, apCostMove: apCostMove}
}

// Compute routes mover to (x, y) and reports whether a usable path was
// found. Plain moves further than one and a half times what the mover
// could ever afford are refused without searching.
func (p *Path) Compute(mover Mover, x, y int) bool {
	p.Clear()
	p.target = geom.T(x, y)
	p.action = p.finder.ActionFor(mover, x, y)
	if p.action == ActionNone {
		return false
	}
	from := mover.Tile()
	if p.action == ActionMove && from.Dst(p.target) > float64(mover.MaxAP())*1.5/float64(p.apCostMove) {
		p.action = ActionNone
		return false
	}

	route := p.finder.FindPath(mover, from, p.target)
	if len(route) == 0 {
		return false
	}
	switch {
	case p.action == ActionAttack && p.finder.IsRangedAttack(mover, x, y):
		route = route[len(route)-1:]
	case route[0] == from:
		route = route[1:]
	}
	p.steps = route
	p.markers = slices.Clone(route)
	return len(p.steps) > 0
}

func (p *Path) Action() Action       { return p.action }
func (p *Path) Target() geom.Tile    { return p.target }
func (p *Path) Len() int             { return len(p.steps) }
func (p *Path) Step(i int) geom.Tile { return p.steps[i] }

// LastStep returns the final tile of the path.
func (p *Path) LastStep() (geom.Tile, bool) {
	if len(p.steps) == 0 {
		return geom.Tile{}, false
	}
	return p.steps[len(p.steps)-1], true
}

func (p *Path) Contains(x, y int) bool {
	return slices.Contains(p.steps, geom.T(x, y))
}

// Steps returns a copy of the route.
func (p *Path) Steps() []geom.Tile { return slices.Clone(p.steps) }

// Markers returns the highlighted tiles.
func (p *Path) Markers() []geom.Tile { return slices.Clone(p.markers) }

// Clear forgets the route and its highlights.
func (p *Path) Clear() {
	p.action = ActionNone
	p.steps = p.steps[:0]
	p.markers = nil
}

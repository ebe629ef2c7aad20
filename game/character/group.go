package character

import (
	"math"
	"slices"

	"github.com/kasuganosora/tilecombat/game/combat"
)

var _ combat.PlayerGroup = (*Group)(nil)

// Group is the player's party.
type Group struct {
	members  []*Character
	leader   *Character
	selected []*Character
}

func NewGroup(members ...*Character) *Group {
	g := &Group{}
	for _, m := range members {
		g.Add(m)
	}
	return g
}

// Add appends c to the party. Adding twice is a no-op.
func (g *Group) Add(c *Character) {
	if !slices.Contains(g.members, c) {
		g.members = append(g.members, c)
	}
}

// Characters returns the members as characters.
func (g *Group) Characters() []*Character { return slices.Clone(g.members) }

func (g *Group) Members() []combat.Combatant {
	out := make([]combat.Combatant, len(g.members))
	for i, m := range g.members {
		out[i] = m
	}
	return out
}

func (g *Group) Leader() combat.Combatant {
	if g.leader == nil {
		return nil
	}
	return g.leader
}

// SetLeader makes c the leader. c must be a member; nil clears it.
func (g *Group) SetLeader(c *Character) {
	if c == nil || slices.Contains(g.members, c) {
		g.leader = c
	}
}

func (g *Group) member(c combat.Combatant) (*Character, bool) {
	ch, ok := c.(*Character)
	if !ok || !slices.Contains(g.members, ch) {
		return nil, false
	}
	return ch, true
}

func (g *Group) Contains(c combat.Combatant) bool {
	_, ok := g.member(c)
	return ok
}

// SelectOnly makes c the only selected member. Non-members are ignored.
func (g *Group) SelectOnly(c combat.Combatant) {
	if ch, ok := g.member(c); ok {
		g.selected = []*Character{ch}
	}
}

// Select adds c to the selection.
func (g *Group) Select(c combat.Combatant) {
	if ch, ok := g.member(c); ok && !slices.Contains(g.selected, ch) {
		g.selected = append(g.selected, ch)
	}
}

func (g *Group) Selected() []*Character { return slices.Clone(g.selected) }
func (g *Group) SelectedCount() int     { return len(g.selected) }

// AverageLevel is the rounded mean level of the members, counting the
// fallen only with includeInactive. An empty party averages zero.
func (g *Group) AverageLevel(includeInactive bool) int {
	total, n := 0, 0
	for _, m := range g.members {
		if includeInactive || m.active {
			total += m.stats.Level
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

// CanSeeEnemy reports whether any visible member has an enemy in sight.
func (g *Group) CanSeeEnemy() bool {
	for _, m := range g.members {
		if m.active && !m.invisible && m.HasEnemiesInSight() {
			return true
		}
	}
	return false
}

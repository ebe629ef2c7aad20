package sim

import (
	"fmt"

	"github.com/kasuganosora/tilecombat/config"
	"github.com/kasuganosora/tilecombat/game/character"
	"github.com/kasuganosora/tilecombat/game/geom"
	"github.com/kasuganosora/tilecombat/game/world"
)

// DefaultScenario is the arena used when no layout is configured: two
// heroes in the west room, a pillar hall, and three orcs to the east,
// one of them asleep.
func DefaultScenario() config.ScenarioConfig {
	return config.ScenarioConfig{
		MapID: "arena",
		Layout: []string{
			"################",
			"#......#.......#",
			"#......#.......#",
			"#..............#",
			"#......#...#...#",
			"#......#.......#",
			"#......#...#...#",
			"#..............#",
			"#......#.......#",
			"################",
		},
		Leader: "hero",
		Characters: []config.CharacterSpec{
			{ID: "hero", Name: "Hero", Faction: "player", X: 2, Y: 3, Level: 3, MaxAP: 10, MaxHP: 30, Attack: 6},
			{ID: "archer", Name: "Archer", Faction: "player", X: 2, Y: 6, Level: 2, MaxAP: 8, MaxHP: 20, Attack: 4, AttackRange: 6},
			{ID: "orc-1", Name: "Orc", Faction: "hostile", X: 13, Y: 2, Level: 2, ExperienceValue: 60, MaxAP: 8, MaxHP: 12, Attack: 4},
			{ID: "orc-2", Name: "Orc", Faction: "hostile", X: 13, Y: 7, Level: 2, ExperienceValue: 60, MaxAP: 6, MaxHP: 12, Attack: 4},
			{ID: "orc-chief", Name: "Orc Chief", Faction: "hostile", X: 9, Y: 5, Level: 4, ExperienceValue: 150, MaxAP: 10, MaxHP: 25, Attack: 7, Asleep: true},
		},
	}
}

// loadMap builds the scenario map.
func loadMap(sc config.ScenarioConfig) (*world.GameMap, error) {
	return world.ParseLayout(sc.MapID, sc.Layout, world.MapOptions{
		Isometric: sc.Isometric,
		CombatMap: sc.CombatMap,
		WorldMap:  sc.WorldMap,
	})
}

// buildCast creates and places every configured character on mp.
func buildCast(mp *world.GameMap, specs []config.CharacterSpec, opts character.Options) ([]*character.Character, error) {
	w, h := mp.Size()
	seen := make(map[string]bool, len(specs))
	cast := make([]*character.Character, 0, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("sim: character without id")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("sim: duplicate character %q", s.ID)
		}
		seen[s.ID] = true

		faction, err := character.ParseFaction(s.Faction)
		if err != nil {
			return nil, fmt.Errorf("sim: character %q: %w", s.ID, err)
		}
		if s.X < 0 || s.Y < 0 || s.X >= w || s.Y >= h {
			return nil, fmt.Errorf("sim: character %q at (%d,%d) is off the %dx%d map", s.ID, s.X, s.Y, w, h)
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		c := character.New(s.ID, name, faction, character.Stats{
			Level:           s.Level,
			ExperienceValue: s.ExperienceValue,
			MaxAP:           s.MaxAP,
			MaxHP:           s.MaxHP,
			Attack:          s.Attack,
			AttackRange:     s.AttackRange,
		}, opts)
		c.SetAsleep(s.Asleep)
		c.SetInvisible(s.Invisible)
		c.Place(mp, geom.T(s.X, s.Y))
		cast = append(cast, c)
	}
	return cast, nil
}

// characterOptions maps the combat tunables onto character options.
func characterOptions(cc config.CombatConfig) character.Options {
	o := character.DefaultOptions()
	if cc.SightRadiusLocal > 0 {
		o.SightRadiusLocal = cc.SightRadiusLocal
	}
	if cc.SightRadiusWorld > 0 {
		o.SightRadiusWorld = cc.SightRadiusWorld
	}
	if cc.RaysPC > 0 {
		o.RaysPC = cc.RaysPC
	}
	if cc.RaysNPC > 0 {
		o.RaysNPC = cc.RaysNPC
	}
	if cc.APCostMove > 0 {
		o.APCostMove = cc.APCostMove
	}
	if cc.APCostAttack > 0 {
		o.APCostAttack = cc.APCostAttack
	}
	if cc.StepTweenS > 0 {
		o.StepTween = cc.StepTweenS
	}
	o.ConeAngle = cc.ConeAngle
	o.AIStep = cc.AIStepS
	return o
}

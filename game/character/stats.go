package character

import "fmt"

// Faction decides who fights whom.
type Faction int

const (
	FactionPlayer Faction = iota
	FactionHostile
	FactionNeutral
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionHostile:
		return "hostile"
	case FactionNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("faction(%d)", int(f))
	}
}

// ParseFaction is the inverse of Faction.String.
func ParseFaction(s string) (Faction, error) {
	switch s {
	case "player":
		return FactionPlayer, nil
	case "hostile":
		return FactionHostile, nil
	case "neutral":
		return FactionNeutral, nil
	}
	return 0, fmt.Errorf("character: unknown faction %q", s)
}

func (f Faction) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Faction) UnmarshalText(b []byte) error {
	v, err := ParseFaction(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Stats are the numbers combat reads and changes.
type Stats struct {
	Level           int `json:"level" mapstructure:"level"`
	Experience      int `json:"experience" mapstructure:"experience"`
	ExperienceValue int `json:"experience_value" mapstructure:"experience_value"` // base exp for killing this character
	MaxAP           int `json:"max_ap" mapstructure:"max_ap"`
	AP              int `json:"ap" mapstructure:"ap"`
	MaxHP           int `json:"max_hp" mapstructure:"max_hp"`
	HP              int `json:"hp" mapstructure:"hp"`
	Attack          int `json:"attack" mapstructure:"attack"`
	AttackRange     int `json:"attack_range" mapstructure:"attack_range"`
}

func (s *Stats) normalize() {
	if s.Level < 1 {
		s.Level = 1
	}
	if s.MaxAP < 1 {
		s.MaxAP = 1
	}
	if s.AP <= 0 || s.AP > s.MaxAP {
		s.AP = s.MaxAP
	}
	if s.MaxHP < 1 {
		s.MaxHP = 1
	}
	if s.HP <= 0 || s.HP > s.MaxHP {
		s.HP = s.MaxHP
	}
	if s.AttackRange < 1 {
		s.AttackRange = 1
	}
}

// Survival tracks hours since the character last ate and slept.
type Survival struct {
	Hunger  float64 `json:"hunger"`
	Fatigue float64 `json:"fatigue"`
}

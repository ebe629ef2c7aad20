package combat

import "fmt"

// Side is one half of a fight.
type Side int

const (
	SidePlayer Side = iota
	SideComputer
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideComputer:
		return "computer"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideComputer
	}
	return SidePlayer
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*s = SidePlayer
	case "computer":
		*s = SideComputer
	default:
		return fmt.Errorf("combat: unknown side %q", b)
	}
	return nil
}

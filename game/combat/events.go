package combat

// Event is emitted by the Manager for the transport layer to consume.
type Event interface {
	EventType() string
}

const (
	EventCombatStarted  = "combat_started"
	EventTurnStarted    = "turn_started"
	EventActorActivated = "actor_activated"
	EventCombatEnded    = "combat_ended"
)

// CombatantRef identifies a combatant in event payloads.
type CombatantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func refOf(c Combatant) CombatantRef { return CombatantRef{ID: c.ID(), Name: c.Name()} }

func refsOf(cs []Combatant) []CombatantRef {
	out := make([]CombatantRef, len(cs))
	for i, c := range cs {
		out[i] = refOf(c)
	}
	return out
}

type CombatStarted struct {
	Combatants []CombatantRef `json:"combatants"`
	Selected   *CombatantRef  `json:"selected,omitempty"`
}

type TurnStarted struct {
	Side           Side           `json:"side"`
	Queue          []CombatantRef `json:"queue,omitempty"`
	AutoEndCounter int            `json:"auto_end_counter"`
}

type ActorActivated struct {
	Actor CombatantRef `json:"actor"`
}

// Kill is one entry of the experience pool.
type Kill struct {
	Victim CombatantRef `json:"victim"`
	Killer CombatantRef `json:"killer"`
	Level  int          `json:"level"`
	Exp    int          `json:"exp"`
}

type CombatEnded struct {
	ExpPool    int            `json:"exp_pool"`
	Award      int            `json:"award"`
	Recipients []CombatantRef `json:"recipients"`
	Kills      []Kill         `json:"kills,omitempty"`
}

func (CombatStarted) EventType() string  { return EventCombatStarted }
func (TurnStarted) EventType() string    { return EventTurnStarted }
func (ActorActivated) EventType() string { return EventActorActivated }
func (CombatEnded) EventType() string    { return EventCombatEnded }

package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/tilecombat/game/sim"
)

type commandPayload struct {
	Character string `json:"character"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// RegisterCommands wires every simulation command plus "snapshot" into r.
func RegisterCommands(r *Router, host Commander) {
	r.On("snapshot", func(_ context.Context, _ *Session, _ json.RawMessage) (any, error) {
		return host.Latest(), nil
	})
	for _, kind := range []sim.Kind{
		sim.CmdStartCombat,
		sim.CmdEndCombat,
		sim.CmdEndTurn,
		sim.CmdMove,
		sim.CmdSelect,
		sim.CmdVisible,
	} {
		r.On(string(kind), func(ctx context.Context, s *Session, payload json.RawMessage) (any, error) {
			var p commandPayload
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &p); err != nil {
					return nil, fmt.Errorf("bad payload: %w", err)
				}
			}
			res, err := host.Submit(ctx, sim.Command{
				ID:        TraceIDFromCtx(ctx),
				Kind:      kind,
				Character: p.Character,
				X:         p.X,
				Y:         p.Y,
			})
			return res.Data, err
		})
	}
}

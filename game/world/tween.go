package world

import (
	"math"

	"github.com/kasuganosora/tilecombat/game/geom"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseOutQuint decelerates sharply towards the end.
func EaseOutQuint(t float64) float64 { return math.Pow(t-1, 5) + 1 }

type tween struct {
	target   Occupant
	from, to geom.Vec2
	elapsed  float64
	duration float64
	ease     Ease
}

// Tweener animates occupant positions. One tween per occupant; starting a
// new one replaces the old from the occupant's current position.
type Tweener struct {
	active []*tween
}

func NewTweener() *Tweener { return &Tweener{} }

// Start animates target to "to" over duration seconds. A non-positive
// duration jumps there immediately.
func (tw *Tweener) Start(target Occupant, to geom.Vec2, duration float64, ease Ease) {
	tw.Cancel(target)
	if duration <= 0 {
		target.SetPosition(to)
		return
	}
	if ease == nil {
		ease = Linear
	}
	tw.active = append(tw.active, &tween{
		target:   target,
		from:     target.Position(),
		to:       to,
		duration: duration,
		ease:     ease,
	})
}

// Cancel drops any running tween of target, leaving it where it is.
func (tw *Tweener) Cancel(target Occupant) {
	n := 0
	for _, t := range tw.active {
		if t.target != target {
			tw.active[n] = t
			n++
		}
	}
	tw.active = tw.active[:n]
}

// Update advances every tween by dt seconds and drops finished ones.
func (tw *Tweener) Update(dt float64) {
	n := 0
	for _, t := range tw.active {
		t.elapsed += dt
		p := t.elapsed / t.duration
		if p >= 1 {
			t.target.SetPosition(t.to)
			continue
		}
		t.target.SetPosition(t.from.Lerp(t.to, t.ease(p)))
		tw.active[n] = t
		n++
	}
	tw.active = tw.active[:n]
}

// Running reports how many tweens are in flight.
func (tw *Tweener) Running() int { return len(tw.active) }

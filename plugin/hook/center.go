// Package hook lets plugins observe and veto combat lifecycle points.
package hook

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInterrupt signals that a handler wants to stop further processing.
// For BeforeCombatStart it also keeps the fight from starting.
var ErrInterrupt = errors.New("hook interrupted")

// Combat lifecycle events.
const (
	// BeforeCombatStart may return ErrInterrupt to keep combat from starting.
	BeforeCombatStart = "before_combat_start"
	OnCombatStart     = "on_combat_start"
	OnSideSwitch      = "on_side_switch"
	OnActorActivated  = "on_actor_activated"
	OnCombatEnd       = "on_combat_end"
)

// HookFn handles one event. It returns the (possibly replaced) data.
type HookFn func(ctx context.Context, event string, data any) (any, error)

type hookEntry struct {
	priority int
	fn       HookFn
	name     string
}

// HookCenter manages event hook registrations. Handlers run on the
// goroutine that triggers the event.
type HookCenter struct {
	mu    sync.RWMutex
	hooks map[string][]*hookEntry
}

// NewHookCenter creates an empty HookCenter.
func NewHookCenter() *HookCenter {
	return &HookCenter{hooks: make(map[string][]*hookEntry)}
}

// Register adds fn for event. Lower priorities run first; equal
// priorities run in registration order. name is used for Unregister.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := append(hc.hooks[event], &hookEntry{priority: priority, fn: fn, name: name})
	slices.SortStableFunc(entries, func(a, b *hookEntry) int { return a.priority - b.priority })
	hc.hooks[event] = entries
}

// Unregister removes all hooks with the given name for the given event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.drop(event, name)
}

// UnregisterAll removes the named hooks from every event.
func (hc *HookCenter) UnregisterAll(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	for event := range hc.hooks {
		hc.drop(event, name)
	}
}

func (hc *HookCenter) drop(event, name string) {
	entries := slices.DeleteFunc(hc.hooks[event], func(e *hookEntry) bool { return e.name == name })
	if len(entries) == 0 {
		delete(hc.hooks, event)
		return
	}
	hc.hooks[event] = entries
}

// Names lists the handlers for event in the order they run.
func (hc *HookCenter) Names(event string) []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	out := make([]string, 0, len(hc.hooks[event]))
	for _, e := range hc.hooks[event] {
		out = append(out, e.name)
	}
	return out
}

// Trigger runs the handlers for event in priority order, passing data
// through each. ErrInterrupt stops the chain and is returned as is.
// Other errors, including recovered panics, do not stop the chain; they
// are joined and returned once every handler has run.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data any) (any, error) {
	hc.mu.RLock()
	entries := slices.Clone(hc.hooks[event])
	hc.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		out, err := call(ctx, e, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("hook %s/%s: %w", event, e.name, err))
			continue
		}
		data = out
	}
	return data, errors.Join(errs...)
}

func call(ctx context.Context, e *hookEntry, event string, data any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = data, fmt.Errorf("panic: %v", r)
		}
	}()
	return e.fn(ctx, event, data)
}

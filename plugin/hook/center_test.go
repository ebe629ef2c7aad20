package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pass() HookFn {
	return func(_ context.Context, _ string, data any) (any, error) { return data, nil }
}

func TestTrigger_NoHandlers(t *testing.T) {
	hc := NewHookCenter()
	out, err := hc.Trigger(context.Background(), OnCombatStart, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestTrigger_DataPassThrough(t *testing.T) {
	hc := NewHookCenter()
	hc.Register("ev", 0, "double", func(_ context.Context, _ string, data any) (any, error) {
		return data.(int) * 2, nil
	})
	hc.Register("ev", 1, "addTen", func(_ context.Context, _ string, data any) (any, error) {
		return data.(int) + 10, nil
	})
	out, err := hc.Trigger(context.Background(), "ev", 5)
	require.NoError(t, err)
	assert.Equal(t, 20, out)
}

func TestTrigger_PriorityThenRegistrationOrder(t *testing.T) {
	hc := NewHookCenter()
	var order []string
	add := func(prio int, name string) {
		hc.Register("ev", prio, name, func(_ context.Context, _ string, d any) (any, error) {
			order = append(order, name)
			return d, nil
		})
	}
	add(10, "late")
	add(1, "a")
	add(5, "mid")
	add(1, "b")
	_, err := hc.Trigger(context.Background(), "ev", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "mid", "late"}, order)
	assert.Equal(t, []string{"a", "b", "mid", "late"}, hc.Names("ev"))
}

func TestTrigger_InterruptStopsChain(t *testing.T) {
	hc := NewHookCenter()
	var secondCalled bool
	hc.Register(BeforeCombatStart, 0, "peace", func(_ context.Context, _ string, d any) (any, error) {
		return d, ErrInterrupt
	})
	hc.Register(BeforeCombatStart, 1, "never", func(_ context.Context, _ string, d any) (any, error) {
		secondCalled = true
		return d, nil
	})
	_, err := hc.Trigger(context.Background(), BeforeCombatStart, nil)
	assert.ErrorIs(t, err, ErrInterrupt)
	assert.False(t, secondCalled)
}

func TestTrigger_ErrorsAreJoinedAndChainContinues(t *testing.T) {
	hc := NewHookCenter()
	boom := errors.New("boom")
	var lastSaw any
	hc.Register("ev", 0, "fails", func(_ context.Context, _ string, d any) (any, error) {
		return "discarded", boom
	})
	hc.Register("ev", 1, "panics", func(_ context.Context, _ string, d any) (any, error) {
		panic("plugin bug")
	})
	hc.Register("ev", 2, "last", func(_ context.Context, _ string, d any) (any, error) {
		lastSaw = d
		return d, nil
	})
	out, err := hc.Trigger(context.Background(), "ev", "in")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "hook ev/panics: panic: plugin bug")
	assert.NotErrorIs(t, err, ErrInterrupt)
	assert.Equal(t, "in", lastSaw)
	assert.Equal(t, "in", out)
}

func TestUnregister(t *testing.T) {
	hc := NewHookCenter()
	hc.Register("ev", 0, "h1", pass())
	hc.Register("ev", 1, "h2", pass())
	hc.Unregister("ev", "h1")
	assert.Equal(t, []string{"h2"}, hc.Names("ev"))
	hc.Unregister("ev", "h2")
	assert.Empty(t, hc.Names("ev"))
	hc.Unregister("missing", "h1")
}

func TestUnregisterAll(t *testing.T) {
	hc := NewHookCenter()
	hc.Register(OnCombatStart, 0, "plugin", pass())
	hc.Register(OnCombatEnd, 0, "plugin", pass())
	hc.Register(OnCombatEnd, 1, "other", pass())
	hc.UnregisterAll("plugin")
	assert.Empty(t, hc.Names(OnCombatStart))
	assert.Equal(t, []string{"other"}, hc.Names(OnCombatEnd))
}

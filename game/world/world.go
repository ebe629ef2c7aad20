package world

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Loader builds a map by ID.
type Loader func(id string) (*GameMap, error)

// Registry keeps loaded maps by ID.
type Registry struct {
	mu     sync.RWMutex
	maps   map[string]*GameMap
	load   Loader
	logger *zap.Logger
}

// NewRegistry creates a Registry that loads missing maps with load.
func NewRegistry(load Loader, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		maps:   make(map[string]*GameMap),
		load:   load,
		logger: logger,
	}
}

// GetOrLoad returns the map for id, loading it on first use.
func (r *Registry) GetOrLoad(id string) (*GameMap, error) {
	r.mu.RLock()
	m, ok := r.maps[id]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok = r.maps[id]; ok {
		return m, nil
	}
	if r.load == nil {
		return nil, fmt.Errorf("world: no loader for map %q", id)
	}
	m, err := r.load(id)
	if err != nil {
		return nil, fmt.Errorf("world: load map %q: %w", id, err)
	}
	r.maps[id] = m
	w, h := m.Size()
	r.logger.Info("map loaded", zap.String("map_id", id), zap.Int("width", w), zap.Int("height", h))
	return m, nil
}

// Put registers an already built map, replacing any previous one.
func (r *Registry) Put(m *GameMap) {
	r.mu.Lock()
	old := r.maps[m.ID()]
	r.maps[m.ID()] = m
	r.mu.Unlock()
	if old != nil && old != m {
		old.Dispose()
	}
}

// Get returns the map for id, or nil if it is not loaded.
func (r *Registry) Get(id string) *GameMap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maps[id]
}

// Destroy disposes and forgets the map.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	m, ok := r.maps[id]
	delete(r.maps, id)
	r.mu.Unlock()
	if ok {
		m.Dispose()
		r.logger.Info("map disposed", zap.String("map_id", id))
	}
}

// IDs lists the loaded maps, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.maps))
	for id := range r.maps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

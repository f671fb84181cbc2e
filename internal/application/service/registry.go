package service

import (
	"sort"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ output.ActionRegistry = (*ActionRegistryImpl)(nil)

type ActionRegistryImpl struct {
	mu       sync.RWMutex
	handlers map[entity.ActionKey]output.ActionHandler
}

func NewActionRegistry() *ActionRegistryImpl {
	return &ActionRegistryImpl{
		handlers: make(map[entity.ActionKey]output.ActionHandler),
	}
}

// Register adds a handler, replacing any previous one for the same pair.
func (r *ActionRegistryImpl) Register(handler output.ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Key()] = handler
}

func (r *ActionRegistryImpl) Get(key entity.ActionKey) (output.ActionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[key]
	return handler, ok
}

// All returns the handlers ordered by kind, then action.
func (r *ActionRegistryImpl) All() []output.ActionHandler {
	r.mu.RLock()
	result := make([]output.ActionHandler, 0, len(r.handlers))
	for _, handler := range r.handlers {
		result = append(result, handler)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key().String() < result[j].Key().String()
	})
	return result
}

func (r *ActionRegistryImpl) Definitions() []entity.ActionDefinition {
	handlers := r.All()
	result := make([]entity.ActionDefinition, 0, len(handlers))
	for _, handler := range handlers {
		key := handler.Key()
		result = append(result, entity.ActionDefinition{
			Kind:        key.Kind,
			Action:      key.Action,
			Description: handler.Description(),
			Parameters:  handler.Parameters(),
		})
	}
	return result
}

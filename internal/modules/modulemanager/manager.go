// Package modulemanager wires the editor's modules together: each module
// migrates its schema, initializes, and optionally registers HTTP routes.
// Load order is deterministic because later modules depend on earlier ones
// (timeline state feeds playback and export).
package modulemanager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/framecut/framecut/internal/logger"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string
	Name() string
	Core() bool
	Migrate(db *gorm.DB) error
	Init() error
}

// RouteRegistrar is an optional interface for modules that register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// Registry manages module registration and initialization
type Registry struct {
	mu          sync.Mutex
	order       []string
	modules     map[string]Module
	initialized bool
}

var defaultRegistry = &Registry{modules: make(map[string]Module)}

// Register adds a module to the default registry in call order.
func Register(m Module) {
	defaultRegistry.Register(m)
}

// LoadAll initializes all registered modules against db.
func LoadAll(db *gorm.DB) error {
	return defaultRegistry.LoadAll(db)
}

// RegisterRoutes asks every route-registering module to attach its routes.
func RegisterRoutes(router *gin.Engine) {
	defaultRegistry.RegisterRoutes(router)
}

// ListModules returns the registered modules in load order.
func ListModules() []Module {
	return defaultRegistry.ListModules()
}

// Reset clears the default registry. Intended for tests.
func Reset() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.order = nil
	defaultRegistry.modules = make(map[string]Module)
	defaultRegistry.initialized = false
}

// Register adds a module to the registry
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module registered after initialization", "module", m.ID())
	}
	if _, exists := r.modules[m.ID()]; !exists {
		r.order = append(r.order, m.ID())
	}
	r.modules[m.ID()] = m
	logger.Debug("module registered", "name", m.Name(), "id", m.ID())
}

// LoadAll migrates and initializes every registered module in order.
func (r *Registry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module system already initialized")
		return nil
	}

	logger.Info("loading modules", "count", len(r.order))
	for _, id := range r.order {
		m := r.modules[id]
		if err := m.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.Name(), err)
		}
		if err := m.Init(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", m.Name(), err)
		}
		logger.Info("module loaded", "name", m.Name())
	}

	r.initialized = true
	return nil
}

// RegisterRoutes attaches routes for modules implementing RouteRegistrar.
func (r *Registry) RegisterRoutes(router *gin.Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if reg, ok := r.modules[id].(RouteRegistrar); ok {
			reg.RegisterRoutes(router)
		}
	}
}

// ListModules returns modules in registration order.
func (r *Registry) ListModules() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Module, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id])
	}
	return out
}

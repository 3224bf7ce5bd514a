// Package timelinemodule holds the editing model: tracks, clips, and the
// mutation engine that all timeline edits flow through.
package timelinemodule

import (
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/logger"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const (
	ModuleID   = "timeline"
	ModuleName = "Timeline Module"
)

// Module owns the timeline state and exposes the mutation engine.
type Module struct {
	state    *State
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewModule creates the timeline module. The resolver supplies source media
// durations for clip placement and trim bounds; it may be nil in tests.
func NewModule(eventBus events.EventBus, resolver MediaResolver) *Module {
	log := logger.Named("timeline")
	return &Module{
		state:    NewState(resolver, log),
		eventBus: eventBus,
		logger:   log,
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate is a no-op; timeline state is in-memory and project persistence
// goes through the project save/load endpoints.
func (m *Module) Migrate(db *gorm.DB) error { return nil }

func (m *Module) Init() error {
	m.logger.Info("timeline module initialized")
	return nil
}

// State exposes the timeline state for other modules (playback, export).
func (m *Module) State() *State { return m.state }

func (m *Module) publish(eventType events.EventType, title string, data map[string]interface{}) {
	if m.eventBus == nil {
		return
	}
	evt := events.NewEvent(eventType, data)
	evt.Title = title
	m.eventBus.PublishAsync(evt)
}

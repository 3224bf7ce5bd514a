package playbackmodule

import (
	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const (
	ModuleID   = "playback"
	ModuleName = "Playback Module"
)

// Module wires the synchronizer to the timeline and the HTTP surface.
type Module struct {
	synchronizer *Synchronizer
	logger       hclog.Logger
}

// NewModule creates the playback module over the shared timeline state.
func NewModule(timeline *timelinemodule.State, eventBus events.EventBus) *Module {
	log := logger.Named("playback")
	return &Module{
		synchronizer: NewSynchronizer(timeline, eventBus, config.Get().Playback, log),
		logger:       log,
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate is a no-op; playback holds no persistent state.
func (m *Module) Migrate(db *gorm.DB) error { return nil }

func (m *Module) Init() error {
	m.logger.Info("playback module initialized")
	return nil
}

// Synchronizer exposes the synchronizer for handle registration.
func (m *Module) Synchronizer() *Synchronizer { return m.synchronizer }

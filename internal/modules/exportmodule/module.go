package exportmodule

import (
	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const (
	ModuleID   = "export"
	ModuleName = "Export Module"
)

// Module wires the planner and executor to the timeline and media library.
type Module struct {
	timeline  *timelinemodule.State
	inventory MediaInventory
	executor  *Executor
	cfg       config.ExportConfig
	logger    hclog.Logger
}

// NewModule creates the export module over the shared timeline state and
// media inventory.
func NewModule(timeline *timelinemodule.State, inventory MediaInventory, eventBus events.EventBus) *Module {
	log := logger.Named("export")
	cfg := config.Get().Export
	return &Module{
		timeline:  timeline,
		inventory: inventory,
		executor:  NewExecutor(ffmpeg.NewExecRunner(), cfg.FFmpegPath, eventBus, log),
		cfg:       cfg,
		logger:    log,
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate is a no-op; export jobs are not persisted, a retry is a new job.
func (m *Module) Migrate(db *gorm.DB) error { return nil }

func (m *Module) Init() error {
	m.logger.Info("export module initialized", "ffmpeg", m.cfg.FFmpegPath)
	return nil
}

// Executor exposes the executor, mainly for tests.
func (m *Module) Executor() *Executor { return m.executor }

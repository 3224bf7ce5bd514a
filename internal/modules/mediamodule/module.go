package mediamodule

import (
	"fmt"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/database"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/utils"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const (
	ModuleID   = "media"
	ModuleName = "Media Module"
)

// Module owns the media inventory and the recordings watch folder.
type Module struct {
	db       *gorm.DB
	manager  *Manager
	watcher  *RecordingsWatcher
	cfg      config.MediaConfig
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewModule creates the media module.
func NewModule(db *gorm.DB, eventBus events.EventBus) *Module {
	log := logger.Named("media")
	cfg := config.Get().Media
	exportCfg := config.Get().Export

	prober := NewProber(
		ffmpeg.NewExecRunner(),
		exportCfg.FFmpegPath,
		exportCfg.FFprobePath,
		cfg.ProbeTimeout,
		cfg.ThumbnailTimeout,
		log.Named("probe"),
	)

	return &Module{
		db:       db,
		manager:  NewManager(db, prober, cfg, eventBus, log),
		cfg:      cfg,
		eventBus: eventBus,
		logger:   log,
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates the media inventory schema.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.MediaFile{}); err != nil {
		return fmt.Errorf("migrate media files: %w", err)
	}
	return nil
}

// Init starts the recordings watch folder when enabled.
func (m *Module) Init() error {
	if !m.cfg.WatchRecordings {
		m.logger.Info("media module initialized, recordings watch disabled")
		return nil
	}

	if err := utils.EnsureDir(m.cfg.RecordingsDir); err != nil {
		return fmt.Errorf("recordings dir: %w", err)
	}
	watcher, err := NewRecordingsWatcher(m.manager, m.cfg.RecordingsDir, m.logger.Named("watcher"))
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	m.watcher = watcher

	m.logger.Info("media module initialized", "recordingsDir", m.cfg.RecordingsDir)
	return nil
}

// Shutdown stops the watch folder.
func (m *Module) Shutdown() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Manager exposes the inventory for the timeline resolver and export
// planner.
func (m *Module) Manager() *Manager { return m.manager }

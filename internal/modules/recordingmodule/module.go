package recordingmodule

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/database"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/utils"
)

const (
	ModuleID   = "recording"
	ModuleName = "Recording Module"
)

// MediaImporter receives finished recordings for the media inventory.
type MediaImporter interface {
	Import(ctx context.Context, path string) (*database.MediaFile, error)
}

// Module tracks the active capture session and turns finished captures into
// imported media.
type Module struct {
	db        *gorm.DB
	cfg       config.RecordingConfig
	session   *Session
	processor *Processor
	importer  MediaImporter
	eventBus  events.EventBus
	logger    hclog.Logger
}

// NewModule creates the recording module. The importer may be nil, in which
// case processed recordings are left on disk without a library entry.
func NewModule(db *gorm.DB, eventBus events.EventBus, importer MediaImporter) *Module {
	log := logger.Named("recording")
	return &Module{
		db:        db,
		cfg:       config.Get().Recording,
		session:   NewSession(),
		processor: NewProcessor(ffmpeg.NewExecRunner(), config.Get().Export.FFmpegPath, log.Named("processor")),
		importer:  importer,
		eventBus:  eventBus,
		logger:    log,
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return false }

// Migrate creates the recordings schema.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.Recording{}); err != nil {
		return fmt.Errorf("migrate recordings: %w", err)
	}
	return nil
}

// Init ensures the recordings directory exists.
func (m *Module) Init() error {
	if err := utils.EnsureDir(m.cfg.OutputDir); err != nil {
		return fmt.Errorf("recordings output dir: %w", err)
	}
	m.logger.Info("recording module initialized", "outputDir", m.cfg.OutputDir)
	return nil
}

// Session returns the active capture session.
func (m *Module) Session() *Session { return m.session }

// SaveRecording writes captured bytes into the recordings directory and
// records them as a finished session output.
func (m *Module) SaveRecording(data []byte) (*database.Recording, error) {
	path, err := SaveCapture(m.cfg.OutputDir, data)
	if err != nil {
		return nil, err
	}
	rec := &database.Recording{
		ID:   m.session.ID,
		Path: path,
		Size: int64(len(data)),
	}
	if err := m.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("saving recording row: %w", err)
	}
	m.session.mu.Lock()
	m.session.Path = path
	m.session.Size = rec.Size
	m.session.mu.Unlock()
	return rec, nil
}

// ProcessRecording remuxes a saved capture to MP4 and hands the result to
// the media library.
func (m *Module) ProcessRecording(ctx context.Context, recordingID string) (*database.Recording, error) {
	var rec database.Recording
	if err := m.db.First(&rec, "id = ?", recordingID).Error; err != nil {
		return nil, err
	}

	if err := m.session.Transition(StatusProcessing); err != nil {
		return nil, err
	}
	m.publishStatus()

	outputPath, err := m.processor.Convert(ctx, rec.Path, func(percent float64) {
		m.publish(events.EventRecordingStatus, "Processing recording", map[string]interface{}{
			"recordingId": rec.ID,
			"status":      string(StatusProcessing),
			"percent":     percent,
		})
	})
	if err != nil {
		m.session.Transition(StatusIdle)
		m.publishStatus()
		return nil, err
	}

	rec.Path = outputPath
	if m.importer != nil {
		media, importErr := m.importer.Import(ctx, outputPath)
		if importErr != nil {
			m.logger.Warn("processed recording could not be imported", "path", outputPath, "error", importErr)
		} else {
			rec.MediaID = media.ID
			rec.Duration = media.Duration
		}
	}
	if err := m.db.Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("updating recording row: %w", err)
	}

	if err := m.session.Transition(StatusIdle); err != nil {
		return nil, err
	}
	m.session = NewSession()
	m.publishStatus()
	return &rec, nil
}

func (m *Module) publishStatus() {
	m.publish(events.EventRecordingStatus, "Recording status changed", map[string]interface{}{
		"session": m.session.View(),
	})
}

func (m *Module) publish(eventType events.EventType, title string, data map[string]interface{}) {
	if m.eventBus == nil {
		return
	}
	evt := events.NewEvent(eventType, data)
	evt.Title = title
	m.eventBus.PublishAsync(evt)
}

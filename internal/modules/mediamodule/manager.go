// Package mediamodule owns the media inventory: importing source files,
// probing their metadata, generating thumbnails, and serving lookups to the
// timeline and export planner.
package mediamodule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/database"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/modules/exportmodule"
	"github.com/framecut/framecut/internal/utils"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true, ".ogg": true,
}

// Manager is the media inventory backed by the database.
type Manager struct {
	db       *gorm.DB
	prober   *Prober
	cfg      config.MediaConfig
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewManager creates the inventory manager.
func NewManager(db *gorm.DB, prober *Prober, cfg config.MediaConfig, eventBus events.EventBus, logger hclog.Logger) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{db: db, prober: prober, cfg: cfg, eventBus: eventBus, logger: logger}
}

// Import brings a source file into the inventory. A file already present
// (same name-size-mtime hash) returns the existing record. A failed
// metadata probe degrades the import instead of rejecting it; a missing
// thumbnail never fails an import.
func (m *Manager) Import(ctx context.Context, path string) (*database.MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("import %s: not a regular file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mediaType := ""
	switch {
	case videoExtensions[ext]:
		mediaType = "video"
	case audioExtensions[ext]:
		mediaType = "audio"
	default:
		return nil, fmt.Errorf("import %s: unsupported file type %q", path, ext)
	}

	hash, err := utils.GenerateFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	var existing database.MediaFile
	if err := m.db.Where("hash = ?", hash).First(&existing).Error; err == nil {
		m.logger.Debug("media already imported", "path", path, "id", existing.ID)
		return &existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	media := &database.MediaFile{
		ID:   uuid.NewString(),
		Path: path,
		Name: filepath.Base(path),
		Type: mediaType,
		Size: info.Size(),
		Hash: hash,
	}

	if probed, err := m.prober.Probe(ctx, path); err != nil {
		// Import proceeds with fallback metadata rather than failing.
		m.logger.Warn("metadata probe failed, importing degraded", "path", path, "error", err)
		media.Degraded = true
	} else {
		media.Duration = probed.Duration
		media.Width = probed.Width
		media.Height = probed.Height
		media.FPS = probed.FPS
		media.Codec = probed.Codec
	}

	if mediaType == "audio" {
		m.readTags(media)
	}

	if mediaType == "video" && !media.Degraded {
		if thumb, err := m.prober.Thumbnail(ctx, path, m.cfg.ThumbnailDir, media.ID); err != nil {
			m.logger.Warn("thumbnail generation failed", "path", path, "error", err)
		} else {
			media.ThumbnailPath = thumb
		}
	}

	if err := m.db.Create(media).Error; err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	m.logger.Info("media imported", "id", media.ID, "path", path, "type", mediaType, "duration", media.Duration)
	m.publish(events.EventMediaImported, map[string]interface{}{
		"media_id": media.ID,
		"path":     path,
		"degraded": media.Degraded,
	})
	return media, nil
}

// readTags pulls title and artist from an audio file's metadata. Absent or
// unreadable tags are fine.
func (m *Manager) readTags(media *database.MediaFile) {
	f, err := os.Open(media.Path)
	if err != nil {
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		m.logger.Debug("no readable tags", "path", media.Path, "error", err)
		return
	}
	media.Title = meta.Title()
	media.Artist = meta.Artist()
}

// Remove deletes a media record and its thumbnail. The source file itself
// is never touched.
func (m *Manager) Remove(id string) error {
	var media database.MediaFile
	if err := m.db.First(&media, "id = ?", id).Error; err != nil {
		return err
	}
	if err := m.db.Delete(&database.MediaFile{}, "id = ?", id).Error; err != nil {
		return err
	}
	if media.ThumbnailPath != "" {
		if err := os.Remove(media.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("thumbnail removal failed", "path", media.ThumbnailPath, "error", err)
		}
	}
	m.publish(events.EventMediaRemoved, map[string]interface{}{"media_id": id})
	return nil
}

// Get returns one media record.
func (m *Manager) Get(id string) (*database.MediaFile, error) {
	var media database.MediaFile
	if err := m.db.First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// List returns the inventory newest first.
func (m *Manager) List() ([]database.MediaFile, error) {
	var media []database.MediaFile
	if err := m.db.Order("created_at DESC").Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// MediaDuration implements the timeline's media resolver.
func (m *Manager) MediaDuration(mediaID string) (float64, bool) {
	media, err := m.Get(mediaID)
	if err != nil || media.Duration <= 0 {
		return 0, false
	}
	return media.Duration, true
}

// Lookup implements the export planner's inventory interface.
func (m *Manager) Lookup(mediaID string) (exportmodule.MediaRef, bool) {
	media, err := m.Get(mediaID)
	if err != nil {
		return exportmodule.MediaRef{}, false
	}
	return exportmodule.MediaRef{ID: media.ID, Path: media.Path, Duration: media.Duration}, true
}

func (m *Manager) publish(eventType events.EventType, data map[string]interface{}) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.PublishAsync(events.NewEvent(eventType, data))
}

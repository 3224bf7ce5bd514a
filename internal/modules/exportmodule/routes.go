package exportmodule

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/framecut/framecut/internal/api"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes registers HTTP routes for the export module.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/export")
	{
		group.POST("/start", m.handleStart)
		group.POST("/cancel", m.handleCancel)
		group.GET("/status", m.handleStatus)
		group.POST("/estimate", m.handleEstimate)
	}
}

func (m *Module) applyDefaults(settings *Settings) {
	if settings.Filename == "" {
		settings.Filename = fmt.Sprintf("export-%s.mp4", time.Now().Format("2006-01-02-15-04-05"))
	}
	if settings.OutputDir == "" {
		settings.OutputDir = m.cfg.DefaultOutputDir
	}
	if settings.Resolution == "" {
		settings.Resolution = Resolution1080p
	}
	if settings.Quality == "" {
		settings.Quality = QualityMedium
	}
	if settings.FPS == "" {
		settings.FPS = FPSMatchSource
	}
}

func (m *Module) handleStart(c *gin.Context) {
	var settings Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		api.NewValidationError("invalid export settings", []string{err.Error()}).ToGinResponse(c)
		return
	}
	m.applyDefaults(&settings)

	duration := m.timeline.ContentDuration()
	estimate := int64(0)
	if m.cfg.CheckDiskSpace {
		estimate = EstimateSize(duration, settings)
	}

	// All validation happens before any temp directory or process exists.
	if problems := ValidateSettings(settings, estimate); len(problems) > 0 {
		api.NewValidationError("export settings rejected", problems).ToGinResponse(c)
		return
	}

	_, clips, _ := m.timeline.Snapshot()
	if len(clips) == 0 {
		api.NewValidationError("timeline is empty", nil).ToGinResponse(c)
		return
	}

	tempDir := filepath.Join(m.cfg.TempRoot, "framecut-export", uuid.NewString())
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		api.NewInternalError("could not create temp directory", err).ToGinResponse(c)
		return
	}

	segments, err := BuildExportPlan(clips, m.inventory, tempDir, m.logger)
	if err != nil {
		os.RemoveAll(tempDir)
		api.NewValidationError(err.Error(), nil).ToGinResponse(c)
		return
	}

	if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
		os.RemoveAll(tempDir)
		api.NewInternalError("could not create output directory", err).ToGinResponse(c)
		return
	}
	outputPath := filepath.Join(settings.OutputDir, settings.Filename)

	commands := BuildCommandSequence(segments, settings, outputPath)
	job, err := m.executor.Start(commands, tempDir, outputPath)
	if err != nil {
		os.RemoveAll(tempDir)
		api.NewConflictError(err.Error()).ToGinResponse(c)
		return
	}

	c.JSON(http.StatusAccepted, job.View())
}

func (m *Module) handleCancel(c *gin.Context) {
	if !m.executor.Cancel() {
		api.NewConflictError("no export is running").ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (m *Module) handleStatus(c *gin.Context) {
	job := m.executor.CurrentJob()
	if job == nil {
		api.NewNotFoundError("export job", "current").ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, job.View())
}

type estimateRequest struct {
	Settings Settings `json:"settings"`
}

func (m *Module) handleEstimate(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid estimate payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	m.applyDefaults(&req.Settings)
	duration := m.timeline.ContentDuration()
	c.JSON(http.StatusOK, gin.H{
		"duration_seconds": duration,
		"estimated_bytes":  EstimateSize(duration, req.Settings),
		"problems":         ValidateSettings(req.Settings, 0),
	})
}

package recordingmodule

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/framecut/framecut/internal/api"
)

// RegisterRoutes registers HTTP routes for the recording module.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/recording")
	{
		group.GET("/status", m.handleStatus)
		group.POST("/start", m.handleStart)
		group.POST("/pause", m.handlePause)
		group.POST("/resume", m.handleResume)
		group.POST("/stop", m.handleStop)
		group.POST("/save", m.handleSave)
		group.POST("/:id/process", m.handleProcess)
	}
}

func (m *Module) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, m.session.View())
}

func (m *Module) transitionHandler(c *gin.Context, to SessionStatus) {
	if m.session.CurrentStatus() == StatusIdle && to == StatusRecording {
		// A new capture always gets a fresh session.
		m.session = NewSession()
	}
	if err := m.session.Transition(to); err != nil {
		api.NewValidationError(err.Error(), nil).ToGinResponse(c)
		return
	}
	m.publishStatus()
	c.JSON(http.StatusOK, m.session.View())
}

func (m *Module) handleStart(c *gin.Context) {
	m.transitionHandler(c, StatusRecording)
}

func (m *Module) handlePause(c *gin.Context) {
	m.transitionHandler(c, StatusPaused)
}

func (m *Module) handleResume(c *gin.Context) {
	m.transitionHandler(c, StatusRecording)
}

func (m *Module) handleStop(c *gin.Context) {
	m.transitionHandler(c, StatusStopped)
}

// handleSave accepts the raw captured stream as the request body and writes
// it into the recordings directory.
func (m *Module) handleSave(c *gin.Context) {
	if m.session.CurrentStatus() != StatusStopped {
		api.NewValidationError("no stopped recording to save", nil).ToGinResponse(c)
		return
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		api.NewValidationError("could not read recording body", []string{err.Error()}).ToGinResponse(c)
		return
	}
	if len(data) == 0 {
		api.NewValidationError("recording body is empty", nil).ToGinResponse(c)
		return
	}
	rec, err := m.SaveRecording(data)
	if err != nil {
		api.NewInternalError("could not save recording", err).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (m *Module) handleProcess(c *gin.Context) {
	rec, err := m.ProcessRecording(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.NewNotFoundError("recording", c.Param("id")).ToGinResponse(c)
			return
		}
		api.NewInternalError("could not process recording", err).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, rec)
}

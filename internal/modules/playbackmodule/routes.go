package playbackmodule

import (
	"net/http"

	"github.com/framecut/framecut/internal/api"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers HTTP routes for the playback module. The UI's
// preview surfaces report their progress through the timeupdate endpoint;
// everything else is transport control.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/playback")
	{
		group.GET("/status", m.handleStatus)
		group.POST("/play", m.handlePlay)
		group.POST("/pause", m.handlePause)
		group.POST("/seek", m.handleSeek)
		group.POST("/resync", m.handleResync)
		group.POST("/timeupdate", m.handleTimeUpdate)
	}
}

func (m *Module) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"playing": m.synchronizer.Playing()})
}

func (m *Module) handlePlay(c *gin.Context) {
	m.synchronizer.Play(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"playing": true})
}

func (m *Module) handlePause(c *gin.Context) {
	m.synchronizer.Pause(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"playing": false})
}

type seekRequest struct {
	Time float64 `json:"time"`
}

func (m *Module) handleSeek(c *gin.Context) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid seek payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	m.synchronizer.Seek(c.Request.Context(), req.Time)
	c.JSON(http.StatusOK, gin.H{"time": req.Time})
}

func (m *Module) handleResync(c *gin.Context) {
	m.synchronizer.Resync(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type timeUpdateRequest struct {
	TrackID   string  `json:"track_id" binding:"required"`
	VideoTime float64 `json:"video_time"`
}

func (m *Module) handleTimeUpdate(c *gin.Context) {
	var req timeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid timeupdate payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	m.synchronizer.HandleTimeUpdate(c.Request.Context(), req.TrackID, req.VideoTime)
	c.Status(http.StatusNoContent)
}

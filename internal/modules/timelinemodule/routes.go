package timelinemodule

import (
	"net/http"

	"github.com/framecut/framecut/internal/api"
	"github.com/framecut/framecut/internal/events"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers HTTP routes for the timeline module.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/timeline")
	{
		group.GET("/", m.handleGetTimeline)
		group.GET("/clips", m.handleListClips)
		group.GET("/clips/:id", m.handleGetClip)
		group.POST("/clips", m.handleAddClip)
		group.PUT("/clips/:id/move", m.handleMoveClip)
		group.PUT("/clips/:id/trim", m.handleTrimClip)
		group.POST("/clips/:id/split", m.handleSplitClip)
		group.DELETE("/clips/:id", m.handleDeleteClip)
		group.PUT("/clips/:id/select", m.handleSelectClip)
		group.PUT("/playhead", m.handleSetPlayhead)
		group.PUT("/zoom", m.handleSetZoom)
		group.PUT("/snap", m.handleSetSnap)
	}
}

func (m *Module) handleGetTimeline(c *gin.Context) {
	tracks, clips, timeline := m.state.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"timeline":         timeline,
		"tracks":           tracks,
		"clips":            clips,
		"selected_clip_id": m.state.SelectedClipID(),
		"content_duration": m.state.ContentDuration(),
	})
}

func (m *Module) handleListClips(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clips": m.state.Clips()})
}

func (m *Module) handleGetClip(c *gin.Context) {
	clip, ok := m.state.Clip(c.Param("id"))
	if !ok {
		api.NewNotFoundError("clip", c.Param("id")).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, clip)
}

type addClipRequest struct {
	MediaID  string  `json:"media_id" binding:"required"`
	TrackID  string  `json:"track_id"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Offset   float64 `json:"offset"`
}

func (m *Module) handleAddClip(c *gin.Context) {
	var req addClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid clip payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	if req.TrackID == "" {
		req.TrackID = PrimaryTrackID
	}
	clip := m.state.AddClip(req.MediaID, req.TrackID, req.Start, req.Duration, req.Offset)
	if clip == nil {
		api.NewValidationError("clip could not be placed", nil).ToGinResponse(c)
		return
	}
	m.publish(events.EventClipAdded, "Clip added", map[string]interface{}{
		"clip_id":  clip.ID,
		"media_id": clip.MediaID,
		"track_id": clip.TrackID,
	})
	c.JSON(http.StatusCreated, clip)
}

type moveClipRequest struct {
	Start   float64 `json:"start"`
	TrackID string  `json:"track_id"`
}

func (m *Module) handleMoveClip(c *gin.Context) {
	var req moveClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid move payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	clip := m.state.MoveClip(c.Param("id"), req.Start, req.TrackID)
	if clip == nil {
		api.NewNotFoundError("clip", c.Param("id")).ToGinResponse(c)
		return
	}
	m.publish(events.EventClipMoved, "Clip moved", map[string]interface{}{
		"clip_id":  clip.ID,
		"track_id": clip.TrackID,
		"start":    clip.Start,
	})
	c.JSON(http.StatusOK, clip)
}

type trimClipRequest struct {
	Edge  string  `json:"edge" binding:"required"`
	Value float64 `json:"value"`
}

func (m *Module) handleTrimClip(c *gin.Context) {
	var req trimClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid trim payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	var edge TrimEdge
	switch req.Edge {
	case "start":
		edge = TrimStart
	case "end":
		edge = TrimEnd
	default:
		api.NewValidationError("edge must be start or end", nil).ToGinResponse(c)
		return
	}
	clip := m.state.TrimClip(c.Param("id"), edge, req.Value)
	if clip == nil {
		api.NewNotFoundError("clip", c.Param("id")).ToGinResponse(c)
		return
	}
	m.publish(events.EventClipTrimmed, "Clip trimmed", map[string]interface{}{
		"clip_id": clip.ID,
		"edge":    req.Edge,
	})
	c.JSON(http.StatusOK, clip)
}

type splitClipRequest struct {
	Time float64 `json:"time"`
}

func (m *Module) handleSplitClip(c *gin.Context) {
	var req splitClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid split payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	first, second := m.state.SplitClip(c.Param("id"), req.Time)
	if first == nil || second == nil {
		api.NewValidationError("split point must fall inside the clip", nil).ToGinResponse(c)
		return
	}
	m.publish(events.EventClipSplit, "Clip split", map[string]interface{}{
		"clip_id":     first.ID,
		"new_clip_id": second.ID,
		"time":        req.Time,
	})
	c.JSON(http.StatusOK, gin.H{"first": first, "second": second})
}

func (m *Module) handleDeleteClip(c *gin.Context) {
	if !m.state.DeleteClip(c.Param("id")) {
		api.NewNotFoundError("clip", c.Param("id")).ToGinResponse(c)
		return
	}
	m.publish(events.EventClipDeleted, "Clip deleted", map[string]interface{}{
		"clip_id": c.Param("id"),
	})
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (m *Module) handleSelectClip(c *gin.Context) {
	id := c.Param("id")
	if id == "none" {
		m.state.SelectClip("")
		c.JSON(http.StatusOK, gin.H{"selected_clip_id": ""})
		return
	}
	if _, ok := m.state.Clip(id); !ok {
		api.NewNotFoundError("clip", id).ToGinResponse(c)
		return
	}
	m.state.SelectClip(id)
	c.JSON(http.StatusOK, gin.H{"selected_clip_id": id})
}

type playheadRequest struct {
	Time float64 `json:"time"`
}

func (m *Module) handleSetPlayhead(c *gin.Context) {
	var req playheadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid playhead payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	t := m.state.SetPlayhead(req.Time)
	m.publish(events.EventPlayheadUpdated, "Playhead moved", map[string]interface{}{"time": t})
	c.JSON(http.StatusOK, gin.H{"time": t})
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

func (m *Module) handleSetZoom(c *gin.Context) {
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid zoom payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zoom": m.state.SetZoom(req.Zoom)})
}

type snapRequest struct {
	Enabled   *bool    `json:"enabled"`
	Threshold *float64 `json:"threshold"`
}

func (m *Module) handleSetSnap(c *gin.Context) {
	var req snapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid snap payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	if req.Enabled != nil {
		m.state.SetSnap(*req.Enabled)
	}
	if req.Threshold != nil {
		m.state.SetSnapThreshold(*req.Threshold)
	}
	timeline := m.state.Timeline()
	c.JSON(http.StatusOK, gin.H{"snap": timeline.Snap, "threshold": timeline.SnapThreshold})
}

package mediamodule

import (
	"errors"
	"net/http"

	"github.com/framecut/framecut/internal/api"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers HTTP routes for the media module.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/media")
	{
		group.GET("/", m.handleList)
		group.GET("/:id", m.handleGet)
		group.POST("/import", m.handleImport)
		group.DELETE("/:id", m.handleRemove)
		group.GET("/:id/thumbnail", m.handleThumbnail)
	}
}

func (m *Module) handleList(c *gin.Context) {
	media, err := m.manager.List()
	if err != nil {
		api.NewInternalError("could not list media", err).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": media, "count": len(media)})
}

func (m *Module) handleGet(c *gin.Context) {
	media, err := m.manager.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.NewNotFoundError("media", c.Param("id")).ToGinResponse(c)
			return
		}
		api.NewInternalError("could not load media", err).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, media)
}

type importRequest struct {
	Path string `json:"path" binding:"required"`
}

func (m *Module) handleImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.NewValidationError("invalid import payload", []string{err.Error()}).ToGinResponse(c)
		return
	}
	media, err := m.manager.Import(c.Request.Context(), req.Path)
	if err != nil {
		api.NewValidationError(err.Error(), nil).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusCreated, media)
}

func (m *Module) handleRemove(c *gin.Context) {
	if err := m.manager.Remove(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.NewNotFoundError("media", c.Param("id")).ToGinResponse(c)
			return
		}
		api.NewInternalError("could not remove media", err).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (m *Module) handleThumbnail(c *gin.Context) {
	media, err := m.manager.Get(c.Param("id"))
	if err != nil {
		api.NewNotFoundError("media", c.Param("id")).ToGinResponse(c)
		return
	}
	if media.ThumbnailPath == "" {
		api.NewNotFoundError("thumbnail", c.Param("id")).ToGinResponse(c)
		return
	}
	c.File(media.ThumbnailPath)
}

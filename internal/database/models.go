package database

import (
	"time"
)

// MediaFile is an imported source file in the inventory. The editor core
// treats rows as read-only after import; only Duration and Path are load
// bearing for trimming and export.
type MediaFile struct {
	ID            string  `gorm:"primaryKey" json:"id"`
	Path          string  `gorm:"not null;index" json:"path"`
	Name          string  `gorm:"not null" json:"name"`
	Type          string  `gorm:"not null" json:"type"` // video or audio
	Duration      float64 `json:"duration"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	FPS           float64 `json:"fps"`
	Size          int64   `json:"size"`
	Codec         string  `json:"codec,omitempty"`
	Hash          string  `gorm:"index" json:"hash"`
	ThumbnailPath string  `json:"thumbnailPath,omitempty"`
	// Degraded marks imports whose metadata probe timed out; duration and
	// dimensions are fallback values until re-probed.
	Degraded  bool      `json:"degraded,omitempty"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Recording is a finished capture session's output file.
type Recording struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"not null" json:"path"`
	Duration  float64   `json:"duration"`
	Size      int64     `json:"size"`
	MediaID   string    `gorm:"index" json:"mediaId,omitempty"` // set once imported
	CreatedAt time.Time `json:"createdAt"`
}

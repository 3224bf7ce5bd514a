// Package config holds the complete application configuration, loaded from
// an optional yaml file with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Media     MediaConfig     `yaml:"media" json:"media"`
	Export    ExportConfig    `yaml:"export" json:"export"`
	Playback  PlaybackConfig  `yaml:"playback" json:"playback"`
	Recording RecordingConfig `yaml:"recording" json:"recording"`
}

// ServerConfig holds the local API server settings
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host"`
	Port         int           `yaml:"port" json:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors"`
	LogLevel     string        `yaml:"log_level" json:"log_level"`
}

// DatabaseConfig selects the inventory database backend
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type"` // sqlite or postgres
	DatabasePath string `yaml:"database_path" json:"database_path"`
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	Database     string `yaml:"database" json:"database"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries"`
}

// MediaConfig holds media import and inventory settings
type MediaConfig struct {
	DataDir          string        `yaml:"data_dir" json:"data_dir"`
	ThumbnailDir     string        `yaml:"thumbnail_dir" json:"thumbnail_dir"`
	RecordingsDir    string        `yaml:"recordings_dir" json:"recordings_dir"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
	ThumbnailTimeout time.Duration `yaml:"thumbnail_timeout" json:"thumbnail_timeout"`
	WatchRecordings  bool          `yaml:"watch_recordings" json:"watch_recordings"`
}

// ExportConfig holds transcoder paths and export defaults
type ExportConfig struct {
	FFmpegPath       string `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath      string `yaml:"ffprobe_path" json:"ffprobe_path"`
	TempRoot         string `yaml:"temp_root" json:"temp_root"`
	DefaultOutputDir string `yaml:"default_output_dir" json:"default_output_dir"`
	CheckDiskSpace   bool   `yaml:"check_disk_space" json:"check_disk_space"`
}

// PlaybackConfig exposes the synchronizer tuning knobs. The defaults are the
// documented thresholds; they exist as configuration so the UI shell can be
// tuned without a rebuild.
type PlaybackConfig struct {
	SeekJumpThreshold   float64       `yaml:"seek_jump_threshold" json:"seek_jump_threshold"`     // seconds
	NaturalUpdateWindow time.Duration `yaml:"natural_update_window" json:"natural_update_window"` // staleness window
	DriftTolerance      float64       `yaml:"drift_tolerance" json:"drift_tolerance"`             // seconds
	GapTickInterval     time.Duration `yaml:"gap_tick_interval" json:"gap_tick_interval"`
}

// RecordingConfig holds capture session settings
type RecordingConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

var (
	mu  sync.RWMutex
	cfg *Config
)

// Default returns a configuration populated with defaults.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".framecut")

	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8799,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
			LogLevel:     "info",
		},
		Database: DatabaseConfig{
			Type:         "sqlite",
			DatabasePath: filepath.Join(dataDir, "framecut.db"),
			Host:         "localhost",
			Port:         5432,
			Database:     "framecut",
		},
		Media: MediaConfig{
			DataDir:          dataDir,
			ThumbnailDir:     filepath.Join(dataDir, "thumbnails"),
			RecordingsDir:    filepath.Join(home, "Videos", "Framecut", "recordings"),
			ProbeTimeout:     15 * time.Second,
			ThumbnailTimeout: 60 * time.Second,
			WatchRecordings:  true,
		},
		Export: ExportConfig{
			FFmpegPath:       "ffmpeg",
			FFprobePath:      "ffprobe",
			TempRoot:         os.TempDir(),
			DefaultOutputDir: filepath.Join(home, "Videos", "Framecut"),
			CheckDiskSpace:   true,
		},
		Playback: PlaybackConfig{
			SeekJumpThreshold:   0.5,
			NaturalUpdateWindow: 200 * time.Millisecond,
			DriftTolerance:      1.0,
			GapTickInterval:     50 * time.Millisecond,
		},
		Recording: RecordingConfig{
			OutputDir: filepath.Join(home, "Videos", "Framecut", "recordings"),
		},
	}
}

// Load reads configuration from the given yaml file (path may be empty),
// applies environment overrides, and installs the result globally.
func Load(path string) error {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(c)

	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// Get returns the current configuration, loading defaults if Load was
// never called.
func Get() *Config {
	mu.RLock()
	if cfg != nil {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		c := Default()
		applyEnvOverrides(c)
		cfg = c
	}
	return cfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("FRAMECUT_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("FRAMECUT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("FRAMECUT_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DATABASE_TYPE"); v != "" {
		c.Database.Type = v
	}
	if v := os.Getenv("FRAMECUT_DATABASE_PATH"); v != "" {
		c.Database.DatabasePath = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		c.Database.Username = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		c.Database.Database = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.Export.FFmpegPath = v
	}
	if v := os.Getenv("FFPROBE_PATH"); v != "" {
		c.Export.FFprobePath = v
	}
	if v := os.Getenv("FRAMECUT_TEMP_ROOT"); v != "" {
		c.Export.TempRoot = v
	}
	if v := os.Getenv("FRAMECUT_OUTPUT_DIR"); v != "" {
		c.Export.DefaultOutputDir = v
	}
	if v := os.Getenv("FRAMECUT_RECORDINGS_DIR"); v != "" {
		c.Media.RecordingsDir = v
		c.Recording.OutputDir = v
	}
}

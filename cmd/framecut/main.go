// Command framecut runs the editor backend: the timeline engine, playback
// synchronizer, media library, exporter, and recording pipeline behind a
// local HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/database"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/modules/exportmodule"
	"github.com/framecut/framecut/internal/modules/mediamodule"
	"github.com/framecut/framecut/internal/modules/modulemanager"
	"github.com/framecut/framecut/internal/modules/playbackmodule"
	"github.com/framecut/framecut/internal/modules/recordingmodule"
	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/framecut/framecut/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "framecut:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		return err
	}
	cfg := config.Get()

	logger.Initialize("framecut", cfg.Server.LogLevel)
	log := logger.Root()

	dbm, err := database.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	db := dbm.DB()

	bus := events.NewBus(log.Named("events"))
	events.SetGlobalBus(bus)

	// Construction order follows the dependency chain: the media library
	// resolves durations for the timeline and source files for the
	// exporter, and the recorder hands finished captures back to it.
	mediaModule := mediamodule.NewModule(db, bus)
	timelineModule := timelinemodule.NewModule(bus, mediaModule.Manager())
	playbackModule := playbackmodule.NewModule(timelineModule.State(), bus)
	exportModule := exportmodule.NewModule(timelineModule.State(), mediaModule.Manager(), bus)
	recordingModule := recordingmodule.NewModule(db, bus, mediaModule.Manager())

	modulemanager.Register(mediaModule)
	modulemanager.Register(timelineModule)
	modulemanager.Register(playbackModule)
	modulemanager.Register(exportModule)
	modulemanager.Register(recordingModule)

	if err := modulemanager.LoadAll(db); err != nil {
		return fmt.Errorf("modules: %w", err)
	}

	srv := server.New(bus)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	bus.PublishAsync(events.NewSystemEvent(events.EventSystemStarted, "Editor backend started", ""))
	log.Info("framecut started", "addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	playbackModule.Synchronizer().Pause(shutdownCtx)
	mediaModule.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", "error", err)
	}
	return nil
}

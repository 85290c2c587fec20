package cmd

import (
	"context"
	"fmt"

	"github.com/jsphweid/fingerbot/actuator"
	"github.com/jsphweid/fingerbot/actuator/midiout"
	"github.com/jsphweid/fingerbot/config"
	"github.com/jsphweid/fingerbot/ingest"
	"github.com/jsphweid/fingerbot/playback"
	"github.com/jsphweid/fingerbot/score"
	"github.com/jsphweid/fingerbot/service"
	"github.com/jsphweid/fingerbot/storage"
	"github.com/spf13/afero"
)

// App is everything a transport needs, wired from one config.
type App struct {
	Library    *storage.Library
	Scheduler  *playback.Scheduler
	Controller *playback.Controller
	Ingest     *ingest.Manager
	Hub        *service.Hub

	driver actuator.Driver
}

// NewApp builds the app on the real filesystem. The storage watch runs
// until ctx is done.
func NewApp(ctx context.Context, c config.Config) (*App, error) {
	return newApp(ctx, c, afero.NewOsFs(), true)
}

func newApp(ctx context.Context, c config.Config, fs afero.Fs, watch bool) (*App, error) {
	lib, err := storage.NewLibrary(fs, c.StorageDir)
	if err != nil {
		return nil, err
	}
	if watch {
		if err := lib.Watch(ctx); err != nil {
			// listing still works, it just won't see outside changes
			log.Warnw("storage watch disabled", "err", err)
		}
	}

	resolver, err := actuator.NewResolver(c.Motors)
	if err != nil {
		return nil, fmt.Errorf("motor mapping: %w", err)
	}
	driver, err := openDriver(c.Driver)
	if err != nil {
		return nil, err
	}

	scheduler := playback.NewScheduler(score.NewDecoder(fs), resolver, driver)
	hub := service.NewHub()
	scheduler.OnChange(hub.Publish)

	log.Infow("ready", "storage", lib.Root(), "driver", c.Driver.Kind, "motors", len(c.Motors))
	return &App{
		Library:    lib,
		Scheduler:  scheduler,
		Controller: playback.NewController(lib, scheduler),
		Ingest:     ingest.NewManager(lib),
		Hub:        hub,
		driver:     driver,
	}, nil
}

func openDriver(c config.DriverConfig) (actuator.Driver, error) {
	switch c.Kind {
	case "serial":
		return actuator.OpenSerial(c.SerialPort, c.Baud)
	case "midi":
		return midiout.Open(c.MidiPort)
	}
	return actuator.LogDriver{}, nil
}

// Close stops playback and releases the motor driver.
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.driver.Close()
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tsawler/go-curvefit/engine"
	"github.com/tsawler/go-curvefit/render"
	"github.com/tsawler/go-curvefit/session"
	"github.com/tsawler/go-curvefit/training"
)

// appConfig is the optional JSON configuration file. Flags override it.
type appConfig struct {
	Session  session.Config                 `json:"session"`
	Loop     render.LoopConfig              `json:"loop"`
	Plotting training.PlottingServiceConfig `json:"plotting"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		Session:  session.DefaultConfig(),
		Loop:     render.DefaultLoopConfig(),
		Plotting: training.DefaultPlottingServiceConfig(),
	}
}

func loadConfig(path string) (appConfig, error) {
	config := defaultAppConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	fps := flag.Int("fps", 0, "frames per second (default 30)")
	seed := flag.Int64("seed", 0, "model initialization seed (default 20060221)")
	script := flag.String("script", "-", "event script file, - for stdin")
	framesOut := flag.String("frames-out", "", "write size-delimited protobuf frames to this file, - for stdout")
	sidecar := flag.String("sidecar", "", "plotting sidecar base URL, empty to disable")
	sidecarInterval := flag.Duration("sidecar-interval", time.Second, "minimum time between sidecar updates")
	flag.Parse()

	logger := log.New(os.Stderr, "[curvefit] ", log.LstdFlags)

	config, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if *fps > 0 {
		config.Loop.FPS = *fps
	}
	if *seed != 0 {
		config.Session.Seed = *seed
	}
	if *sidecar != "" {
		config.Plotting.BaseURL = *sidecar
	}

	logger.Printf("device: %s", engine.GetDeviceInfo())

	if err := run(config, *script, *framesOut, *sidecar != "", *sidecarInterval, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(config appConfig, script, framesOut string, useSidecar bool, sidecarInterval time.Duration, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(config.Session)

	var in io.Reader = os.Stdin
	if script != "-" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}
	source := render.NewScriptSource(in)

	var presenters render.MultiPresenter

	if framesOut != "" {
		var out io.Writer = os.Stdout
		if framesOut != "-" {
			f, err := os.Create(framesOut)
			if err != nil {
				return fmt.Errorf("failed to create frames output: %w", err)
			}
			defer f.Close()
			out = f
		}
		buffered := bufio.NewWriter(out)
		defer buffered.Flush()
		presenters = append(presenters, render.NewStreamPresenter(buffered))
	}

	var sidecar *render.SidecarPresenter
	if useSidecar {
		service := training.NewPlottingService(config.Plotting)
		service.Enable()
		if err := service.CheckHealth(); err != nil {
			logger.Printf("warning: plotting sidecar unavailable: %v", err)
		}
		sidecar = render.NewSidecarPresenter(service, sess.Collector(), sidecarInterval)
		presenters = append(presenters, sidecar)
	}

	loop, err := render.NewLoop(config.Loop, sess, source, presenters)
	if err != nil {
		return err
	}

	runErr := loop.Run(ctx)
	if err := source.Err(); err != nil {
		logger.Printf("script stopped: %v", err)
	}
	if sidecar != nil {
		if err := sidecar.Flush(); err != nil {
			logger.Printf("plotting sidecar: %v", err)
		}
	}
	if sess.IsTraining() {
		logger.Printf("exiting while a fit is still running")
	}
	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}

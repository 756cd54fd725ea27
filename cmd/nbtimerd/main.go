package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"nbtimer/internal/config"
	"nbtimer/internal/display"
	"nbtimer/internal/exposure"
	"nbtimer/internal/fstop"
	"nbtimer/internal/input"
	appLog "nbtimer/internal/log"
	"nbtimer/internal/relay"
	"nbtimer/internal/transport"
	"nbtimer/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
}

func main() {
	appLog.Info("nbtimerd starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"transport", conf.Display.Transport,
		"frame_rate", conf.Display.FrameRate,
		"base_ms", conf.Exposure.BaseMS,
		"resolution", conf.Exposure.StopResolution,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, conf, flags.configPath); err != nil {
		appLog.Error("fatal", err)
		os.Exit(1)
	}

	// Let in-flight panel traffic drain before the process exits.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("nbtimerd exiting")
}

func run(ctx context.Context, conf *config.Config, cfgPath string) error {
	tr, err := openTransport(conf)
	if err != nil {
		return err
	}

	panel, err := display.New(tr, display.Opts{
		Contrast:   conf.Display.Contrast,
		Flip:       conf.Display.Flip,
		ChargePump: conf.Display.ChargePump,
		FrameRate:  conf.Display.FrameRate,
	})
	if err != nil {
		tr.Close()
		return fmt.Errorf("display init: %w", err)
	}
	defer panel.Close()

	lamp, err := relay.Open(conf.Relay.Pin, conf.Relay.ActiveLow)
	if err != nil {
		return err
	}
	defer lamp.Close()

	session := exposure.New(lamp, conf.Exposure.BaseMS, parseResolution(conf.Exposure.StopResolution))
	defer session.Close()

	watcher, err := openInputs(conf)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		panel.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		uiLoop(ctx, panel, session, watcher.Events(), conf.Exposure.TestStripSteps)
	}()

	if conf.Display.SleepCron != "" && conf.Display.WakeCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(conf.Display.SleepCron, func() {
			appLog.Info("power save: panel off")
			if err := panel.Power(false); err != nil {
				appLog.Error("panel off failed", err)
			}
		}); err != nil {
			return fmt.Errorf("sleep schedule %q: %w", conf.Display.SleepCron, err)
		}
		if _, err := c.AddFunc(conf.Display.WakeCron, func() {
			appLog.Info("power save: panel on")
			if err := panel.Power(true); err != nil {
				appLog.Error("panel on failed", err)
			}
		}); err != nil {
			return fmt.Errorf("wake schedule %q: %w", conf.Display.WakeCron, err)
		}
		c.Start()
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, cfgPath, panel, session).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	wg.Wait()
	return nil
}

func openTransport(conf *config.Config) (transport.Transport, error) {
	switch conf.Display.Transport {
	case "spi":
		return transport.NewSPI(conf.Display.Bus, conf.Display.DCPin, conf.Display.ResetPin)
	default:
		return transport.NewI2C(conf.Display.Bus, conf.Display.Addr)
	}
}

func openInputs(conf *config.Config) (*input.Watcher, error) {
	names := []struct {
		event input.Event
		name  string
	}{
		{input.Run, conf.Input.RunPin},
		{input.Focus, conf.Input.FocusPin},
		{input.Up, conf.Input.UpPin},
		{input.Down, conf.Input.DownPin},
		{input.Cancel, conf.Input.CancelPin},
		{input.Run, conf.Input.Footswitch},
	}

	var bindings []input.Binding
	for _, n := range names {
		if n.name == "" {
			continue
		}
		pin, err := input.Resolve(n.name)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, input.Binding{Event: n.event, Pin: pin})
	}
	return input.New(bindings)
}

func parseResolution(s string) fstop.Resolution {
	switch s {
	case "full":
		return fstop.Full
	case "half":
		return fstop.Half
	case "sixth":
		return fstop.Sixth
	default:
		return fstop.Third
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/nbtimer/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")

	flag.Parse()

	return cfg
}

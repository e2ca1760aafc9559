package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/control"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/metrics"
	"codeberg.org/mutker/ryzenctl/internal/pid"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/ryzen"
	"codeberg.org/mutker/ryzenctl/internal/status"
	"codeberg.org/mutker/ryzenctl/internal/system"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

type app struct {
	cfg      *config.Config
	instance string

	metrics metrics.Collector
	status  *status.Server
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Monitor mode is only useful when its decisions are visible.
	logger.Init(cfg.Debug, cfg.Verbose || cfg.Monitor, logger.IsService())
	instance := uuid.NewString()
	logger.With("instance", instance)
	logger.Debug().Str("policy", cfg.ConfigFile).Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to write PID file")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	a := &app{cfg: cfg, instance: instance}
	err = a.run(ctx)
	cancel()
	a.cleanup()

	if err != nil {
		logger.ErrorWithCode(err).
			Bool("hardware", ryzen.IsHardwareError(err)).
			Msg("Control loop stopped")
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context) error {
	errFactory := errors.New()

	bundle, err := policy.Load(a.cfg.ConfigFile)
	if err != nil {
		return errFactory.Wrap(errors.ErrLoadPolicy, err)
	}

	hw, err := ryzen.Open(ctx,
		ryzen.WithBinary(a.cfg.Ryzenadj),
		ryzen.WithTimeout(a.cfg.HardwareTimeoutDuration()),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrOpenHandle, err)
	}

	acPath := a.cfg.ACPath
	if acPath == "" {
		acPath = system.DiscoverACPath("")
	}
	logger.Debug().
		Str("profile", a.cfg.ProfilePath).
		Str("ac", acPath).
		Msg("Status sources resolved")

	a.metrics, err = metrics.NewService(metrics.Config{
		Enabled: a.cfg.StatusAddr != "",
		History: metrics.DefaultConfig().History,
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	if a.cfg.StatusAddr != "" {
		a.status = status.NewServer(a.metrics, a.instance)
		go func() {
			if err := a.status.Start(a.cfg.StatusAddr); err != nil {
				logger.ErrorWithCode(err).Msg("Status server stopped")
			}
		}()
	}

	if a.cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Limits will not be written")
	}

	loop := control.New(
		control.Config{
			Interval:    a.cfg.IntervalDuration(),
			ReadRetries: a.cfg.ReadRetries,
			Monitor:     a.cfg.Monitor,
		},
		system.NewReader(system.FileSource(a.cfg.ProfilePath), system.FileSource(acPath)),
		bundle,
		hw,
		control.WithMetrics(a.metrics),
		control.WithThermal(system.NewThermal()),
	)

	return loop.Run(ctx)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func (a *app) cleanup() {
	if a.status != nil {
		if err := a.status.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down status server")
		}
	}
	if a.metrics != nil {
		if err := a.metrics.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close metrics")
		}
	}
	if err := pid.Remove(); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}

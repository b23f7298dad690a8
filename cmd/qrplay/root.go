package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"qrplay/config"
	"qrplay/internal/application"
	"qrplay/internal/domain"
	"qrplay/internal/infra/led"
	"qrplay/internal/infra/pushover"
	"qrplay/internal/infra/scanner"
	"qrplay/internal/infra/sonos"
	"qrplay/internal/infra/statefile"
)

type options struct {
	configPath    string
	defaultVolume int
	defaultDevice string
	hostname      string
	debugFile     string
	speakWelcome  bool
	skipLoad      bool
	source        string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "qrplay",
		Short: "Translates QR codes detected by a camera into speaker commands",
		Long: `qrplay reads QR codes from a scanner and turns them into playback
commands for a node-sonos-http-api server: transport control, room
switching, speech, streaming services, library search, favorites,
playlists and TuneIn radio.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file")
	flags.IntVar(&opts.defaultVolume, "default-volume", 25, "the volume of your default device")
	flags.StringVar(&opts.defaultDevice, "default-device", "", "the name of your default device/room (overrides the last used room)")
	flags.StringVar(&opts.hostname, "hostname", "0.0.0.0", "the hostname or IP address of the machine running node-sonos-http-api")
	flags.StringVar(&opts.debugFile, "debug-file", "", "read codes from a file instead of launching the scanner")
	flags.BoolVar(&opts.speakWelcome, "speak-welcome", false, "speak welcome messages on startup")
	flags.BoolVar(&opts.skipLoad, "skip-load", true, "skip indexing the music library on startup")
	flags.StringVar(&opts.source, "source", "", "scan source: process, replay, http or watch")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newClassifyCmd())

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	roomOverride := applyFlags(cmd, cfg, opts)

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	timeout, err := config.Duration(cfg.Speaker.Timeout, 15*time.Second)
	if err != nil {
		logger.Warn("invalid speaker timeout, using default", "error", err)
	}
	speaker := sonos.NewClient(cfg.Speaker.Host, cfg.Speaker.Port, timeout)

	store := statefile.NewStore(cfg.State.Dir)
	state := store.Restore(roomOverride, cfg.Speaker.DefaultRoom, logger)

	source, err := createScanSource(cfg.Scanner, logger)
	if err != nil {
		return err
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, "qrplay")
	} else {
		notifier = &application.NoopNotifier{}
	}

	dispatcher := application.NewDispatcher(application.DispatcherOptions{
		DefaultVolume: cfg.Speaker.DefaultVolume,
		Language:      cfg.Speaker.Language,
	})

	player := application.NewPlayer(
		source,
		dispatcher,
		speaker,
		store,
		createIndicator(cfg.Indicator, logger),
		notifier,
		application.StartupOptions{
			SpeakWelcome: cfg.Startup.SpeakWelcome,
			LoadLibrary:  !*cfg.Startup.SkipLoad,
			Phrases: application.StartupPhrases{
				Welcome:  cfg.Startup.Welcome,
				Indexing: cfg.Startup.Indexing,
				Ready:    cfg.Startup.Ready,
				Prompt:   cfg.Startup.Prompt,
			},
		},
		logger,
	)

	logger.Info("starting qrplay",
		"speaker", speaker.BaseURL(),
		"source", source.Name(),
		"room", state.CurrentRoom,
		"queue_mode", state.QueueMode,
	)

	final, err := player.Run(ctx, state)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("player error", "error", err)
		return err
	}

	logger.Info("closed", "room", final.CurrentRoom, "queue_mode", final.QueueMode)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over the config and returns the
// room override, empty unless --default-device was given.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) string {
	flags := cmd.Flags()

	if flags.Changed("default-volume") {
		cfg.Speaker.DefaultVolume = opts.defaultVolume
	}
	if flags.Changed("hostname") {
		cfg.Speaker.Host = opts.hostname
	}
	if flags.Changed("speak-welcome") {
		cfg.Startup.SpeakWelcome = opts.speakWelcome
	}
	if flags.Changed("skip-load") {
		skip := opts.skipLoad
		cfg.Startup.SkipLoad = &skip
	}
	if flags.Changed("source") {
		cfg.Scanner.Source = opts.source
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.debugFile != "" {
		cfg.Scanner.Source = "replay"
		cfg.Scanner.ReplayFile = opts.debugFile
	}

	if flags.Changed("default-device") {
		cfg.Speaker.DefaultRoom = opts.defaultDevice
		return opts.defaultDevice
	}
	return ""
}

func createScanSource(cfg config.ScannerConfig, logger *slog.Logger) (application.ScanSource, error) {
	switch cfg.Source {
	case "process":
		return scanner.NewProcessSource(cfg.Command, *cfg.Offset, *cfg.RepairSJIS, logger), nil
	case "replay":
		if cfg.ReplayFile == "" {
			return nil, errors.New("replay source needs scanner.replay_file or --debug-file")
		}
		delay, err := config.Duration(cfg.ReplayDelay, scanner.DefaultReplayDelay)
		if err != nil {
			logger.Warn("invalid replay delay, using default", "error", err)
		}
		return scanner.NewReplaySource(cfg.ReplayFile, delay), nil
	case "http":
		return scanner.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger), nil
	case "watch":
		return scanner.NewWatchSource(cfg.WatchDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown scan source %q", cfg.Source)
	}
}

func createIndicator(cfg config.IndicatorConfig, logger *slog.Logger) application.Indicator {
	switch cfg.Kind {
	case "process":
		duration, err := config.Duration(cfg.Duration, led.DefaultDuration)
		if err != nil {
			logger.Warn("invalid indicator duration, using default", "error", err)
		}
		animations := make(map[domain.IndicatorKind][]string, len(cfg.Animations))
		for kind, argv := range cfg.Animations {
			animations[domain.IndicatorKind(kind)] = argv
		}
		return led.NewProcessIndicator(animations, cfg.Clear, duration, logger)
	case "log":
		return led.NewLogIndicator(logger)
	case "none":
		return application.NoopIndicator{}
	default:
		logger.Warn("unknown indicator kind, using log", "kind", cfg.Kind)
		return led.NewLogIndicator(logger)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

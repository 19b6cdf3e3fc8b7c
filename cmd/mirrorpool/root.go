package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/mirrorpool/pkg/artifact"
	"github.com/walteh/mirrorpool/pkg/config"
	"github.com/walteh/mirrorpool/pkg/log"
	"github.com/walteh/mirrorpool/pkg/mirror"
	"github.com/walteh/mirrorpool/pkg/status"
	"github.com/walteh/mirrorpool/pkg/verify"
	"github.com/walteh/mirrorpool/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	workers    int
	delay      time.Duration
	receiver   string
	debug      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrorpool [source] [destination]",
		Short: "replicate a directory tree through a pool of concurrent workers",
		Long: `mirrorpool walks a source directory tree and recreates its structure
under a fresh destination, writing a 1024-byte placeholder file at every
leaf. Directory creation is done synchronously by the host; file
creation is distributed across a worker pool and verified afterwards.

Source and destination are taken from the positional arguments, falling
back to the config file for whichever is missing.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cmd.Context(), args, cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml or .hcl)")
	cmd.Flags().IntVarP(&workers, "workers", "n", 0, "number of workers")
	cmd.Flags().DurationVar(&delay, "delay", 0, "artificial per-task delay (latency injection hook)")
	cmd.Flags().StringVar(&receiver, "receiver", "", `receiver execution-unit kind ("task" or "process")`)
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newReceiveCmd())
	return cmd
}

// 🧩 loadConfig reads the optional config file and overlays CLI values.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(ctx, configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	// Flags override file values.
	if cmd.Flags().Changed("workers") || cfg.Workers == 0 {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("delay") {
		cfg.TaskDelay = delay.String()
	}
	if cmd.Flags().Changed("receiver") || cfg.Receiver == "" {
		cfg.Receiver = receiver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 🧭 resolvePaths takes source and destination from the positional
// arguments, falling back to the config file for whichever is missing.
func resolvePaths(cfg *config.Config, args []string) (string, string, error) {
	source, destination := cfg.Source, cfg.Destination
	if len(args) >= 1 {
		source = args[0]
	}
	if len(args) == 2 {
		destination = args[1]
	}
	if source == "" || destination == "" {
		return "", "", errors.Errorf("source and destination must be given as arguments or in the config file")
	}
	return source, destination, nil
}

// 🎚️ pickLevel returns the effective log level: the debug flag wins
// over the config file's log_level.
func pickLevel(cfg *config.Config, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return cfg.Level()
}

// 🏃 runMirror wires the collaborators into the host and runs it.
func runMirror(ctx context.Context, args []string, cmd *cobra.Command) error {
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	level := pickLevel(cfg, debug)
	logger := setupLogging(level)
	ctx = logger.WithContext(ctx)
	ulog := log.New(os.Stdout, level)
	ctx = log.NewContext(ctx, ulog)

	source, destination, err := resolvePaths(cfg, args)
	if err != nil {
		return err
	}

	absSource, err := filepath.Abs(source)
	if err != nil {
		return errors.Errorf("resolving source path: %w", err)
	}
	absDestination, err := filepath.Abs(destination)
	if err != nil {
		return errors.Errorf("resolving destination path: %w", err)
	}

	src := walker.New(absSource, cfg.IgnorePatterns)
	host, err := mirror.NewHost(mirror.Options{
		Source:      absSource,
		Destination: absDestination,
		PoolSize:    cfg.Workers,
		Delay:       cfg.Delay(),
		Receiver:    mirror.ReceiverKind(cfg.Receiver),
		Walk: func(ctx context.Context, onDir, onFile func(string) error) error {
			return src.Walk(ctx, onDir, onFile)
		},
		Write: artifact.Write,
		Verify: func(ctx context.Context, results []string) error {
			return verify.Tree(ctx, absSource, absDestination, cfg.IgnorePatterns, results)
		},
		Sink: logger,
	})
	if err != nil {
		return err
	}

	poolSize := cfg.Workers
	if poolSize == 0 {
		poolSize = mirror.DefaultPoolSize
	}
	ulog.Header("replicating directory tree")
	reporter := status.NewReporter(ctx)
	reporter.StartRun(absSource, absDestination, poolSize)

	report, err := host.Run(ctx)
	if err != nil {
		var cancelled *mirror.CancellationError
		if errors.As(err, &cancelled) {
			reporter.ReportAbort(err)
		}
		return err
	}

	if severe := reporter.ReportRun(report); severe != nil {
		return severe
	}
	ulog.Success("All operations completed successfully")
	return nil
}

// setupLogging configures zerolog at the requested level
func setupLogging(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()
}

// Command termstatus scans directory trees, hashing every regular file,
// while rendering a single-line terminal status: elapsed time, progress,
// and the file currently being worked on. It exists to exercise the
// statusline coordinator from many goroutines at once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"termstatus/buildinfo"
	"termstatus/config"
	"termstatus/cron"
	"termstatus/logging"
	"termstatus/metrics"
	"termstatus/statusline"
)

type Args struct {
	ConfigPath  string
	ShowVersion bool
	Every       string
	Workers     int
	Roots       []string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ShowVersion {
		showVersion()
		return nil
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	recorder, err := metrics.NewStatusRecorder(cfg.Monitoring.MetricsPrefix)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	status := statusline.New(
		statusline.WithOutput(cfg.Status.Writer()),
		statusline.WithLogger(logger.Logger),
		statusline.WithRecorder(recorder),
		statusline.WithMaxLabelWidth(cfg.Status.MaxLabelWidth),
		statusline.WithNotificationDuration(cfg.Status.NotificationDuration),
		statusline.WithDrainTimeout(cfg.Status.DrainTimeout),
		statusline.WithCancelTimeout(cfg.Status.CancelTimeout),
	)

	// Ordinary slog output from here on is routed through the status line
	// so log lines scroll above the overwritten row.
	bridged := slog.New(logging.NewStatusHandler(logger.Handler(), status))

	props := buildinfo.Get()
	bridged.Info("termstatus started",
		"version", props.Version,
		"git_commit", props.GitCommit,
		"roots", args.Roots,
		"workers", args.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := &Scanner{
		Status:  status,
		Logger:  bridged,
		Workers: args.Workers,
		Roots:   args.Roots,
	}

	runErr := scanner.Run(ctx)

	if args.Every != "" && runErr == nil {
		trigger, err := cron.NewTrigger(args.Every, scanner, bridged)
		if err != nil {
			status.Close()
			return fmt.Errorf("invalid -every spec: %w", err)
		}
		bridged.Info("scheduling repeated scans",
			"spec", args.Every,
			"next_run", trigger.NextRun(),
		)
		trigger.Start(ctx)
		<-ctx.Done()
	}

	if err := status.Close(); err != nil {
		logger.Warn("status line shutdown incomplete", "error", err)
	}

	if cfg.Monitoring.PushURL != "" {
		if err := pushMetrics(cfg, recorder); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	return runErr
}

func pushMetrics(cfg *config.Config, recorder *metrics.StatusRecorder) error {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("getting hostname: %w", err)
	}

	families, err := recorder.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	client := metrics.NewClient(cfg.Monitoring.PushURL, map[string]string{
		"instance": hostname,
	})
	return client.Push(context.Background(), families)
}

func parseArgs() Args {
	var args Args

	flag.StringVar(&args.ConfigPath, "c", "", "path to config file")
	flag.StringVar(&args.ConfigPath, "config", "", "path to config file")
	flag.BoolVar(&args.ShowVersion, "version", false, "show version information")
	flag.StringVar(&args.Every, "every", "", "cron spec for repeated scans (e.g. \"*/5 * * * *\")")
	flag.IntVar(&args.Workers, "workers", 4, "concurrent hashing workers")
	flag.Parse()

	args.Roots = flag.Args()
	if len(args.Roots) == 0 {
		args.Roots = []string{"."}
	}
	return args
}

func showVersion() {
	props := buildinfo.Get()
	fmt.Printf("termstatus %s\n", props.Version)
	fmt.Printf("  build time: %s\n", props.BuildTime)
	fmt.Printf("  git commit: %s\n", props.GitCommit)
}

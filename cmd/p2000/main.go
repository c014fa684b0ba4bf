// p2000 listens to the Dutch P2000 pager network through an RTL-SDR dongle,
// piping rtl_fm into multimon-ng and printing every decoded FLEX message
// that survives the configured blacklist.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MalumAtire832/p2000/internal/config"
	"github.com/MalumAtire832/p2000/internal/pager"
	"github.com/MalumAtire832/p2000/internal/sdr"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "check-config":
			runCheckConfig(os.Args[2:])
			return
		case "version":
			fmt.Println("p2000", version)
			return
		}
	}

	// Default: run the pipeline.
	runDaemon(os.Args[1:])
}

func runDaemon(args []string) {
	fs := flag.NewFlagSet("p2000", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("p2000", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	slog.Info("p2000 starting",
		"version", version,
		"encoding", cfg.RTLSDR.Encoding,
		"blacklisted_messages", len(cfg.RTLSDR.Blacklist.Messages),
		"blacklisted_monitorcodes", len(cfg.RTLSDR.Blacklist.MonitorCodes),
	)

	if err := run(cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals: cancelling the context kills the subprocess
	// pair, which ends the stream and lets the read loop detach and return.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	var reader *sdr.Reader
	handler := sdr.HandlerFunc(func(line []byte) error {
		rec, err := reader.NewRecord(line, true, true)
		if err != nil {
			var malformed *pager.MalformedLineError
			if errors.As(err, &malformed) {
				slog.Debug("skipping malformed line", "tokens", malformed.Tokens)
				return nil
			}
			return err
		}

		if reader.IsRecordBlacklisted(rec) {
			slog.Debug("record blacklisted",
				"monitorcode", rec.MonitorCode,
				"timestamp", rec.Timestamp,
			)
			return nil
		}

		fmt.Println(rec)
		return nil
	})

	reader, err := sdr.NewReader(cfg, handler)
	if err != nil {
		return fmt.Errorf("creating reader: %w", err)
	}

	slog.Info("pipeline started, listening for pager messages")

	if err := reader.Attach(ctx, sdr.NewConnection()); err != nil {
		if ctx.Err() != nil {
			return nil // shut down on signal
		}
		return err
	}
	return nil
}

// --- check-config subcommand ---

func runCheckConfig(args []string) {
	fs := flag.NewFlagSet("check-config", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Encoding:                 %s\n", cfg.RTLSDR.Encoding)
	fmt.Printf("Log level:                %s\n", cfg.Log.Level)
	fmt.Printf("Blacklisted messages:     %d\n", len(cfg.RTLSDR.Blacklist.Messages))
	fmt.Printf("Blacklisted monitorcodes: %d\n", len(cfg.RTLSDR.Blacklist.MonitorCodes))
}

// --- utilities ---

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

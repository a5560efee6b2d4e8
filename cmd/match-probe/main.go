package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/woke/internal/probe"
	"github.com/okian/woke/pkg/logger"
)

func main() {
	cfg := &probe.Config{}
	var showHelp bool

	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	flag.IntVar(&cfg.Sessions, "sessions", probe.DefaultSessions, "Number of sessions to run")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent sessions")
	flag.DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "HTTP request timeout")
	flag.Float64Var(&cfg.JitterKm, "jitter", probe.DefaultJitterKm, "Max distance in km from the demo location")
	flag.StringVar(&cfg.OutputFile, "output", "", "Optional JSON report of every session")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log every session")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.Parse()

	if showHelp {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(cfg.Verbose); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, _, err := probe.Run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		os.Exit(1)
	}
	logger.Get().Info(ctx, "probe completed",
		logger.String("totalTime", time.Since(start).String()),
		logger.Int("failed", stats.Failed))
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

package probe

import (
	"fmt"
	"os"

	"github.com/okian/woke/pkg/logger"
)

// SetupLogging initializes the logger, at debug level when verbose.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}
	return nil
}

// ShowHelp prints usage information for the match probe.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Woke Match Probe
================

Walks free-text requests through classify, followups and match on a running
server and reports per-step latency.

Usage:
  go run cmd/match-probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -sessions int
        Number of sessions to run (default 50)
  -workers int
        Number of concurrent sessions (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 35s)
  -jitter float
        Max distance in km of a session from the demo location (default 5)
  -output string
        Optional JSON report of every session
  -verbose
        Log every session
  -help
        Show this help message

Examples:
  go run cmd/match-probe/main.go -sessions 200 -workers 16
  go run cmd/match-probe/main.go -verbose -output probe.json
`)
}

package dnbcore

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LogBootstrapFailure reports a construction-time failure before any
// processor (and therefore any log sink) exists. The C-ABI create
// function has nowhere else to put the "first violated rule" message
// it's contractually required to surface.
func LogBootstrapFailure(err error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "dnbcore"})
	logger.Error("failed to create signal processor", "err", err)
}

// newLogSink builds the structured logger every processor writes
// diagnostics to. Hosts embedding this library through the C-ABI surface
// share one sink per processor so traces from Go, C, and Python call
// sites interleave correctly.
func newLogSink(verbose, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	if !verbose && !debug {
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "dnbcore",
	})
	logger.SetLevel(level)
	return logger
}

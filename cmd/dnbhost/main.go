// Command dnbhost is a thin reference host for the closed-loop signal
// pipeline: it loads a YAML configuration, reads a raw sample stream
// (one f64 per line; lines that do not parse as a number are skipped),
// feeds it through a
// SignalProcessor in fixed-size chunks, and prints any trigger
// timestamps it observes. It exists to exercise the library end to end
// without a real acquisition/stimulation rig attached.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	dnbcore "github.com/bushlab-ucl/dnbcore/src"
)

func main() {
	var configPath = pflag.StringP("config-file", "c", "dnbcore.yaml", "Path to the YAML pipeline configuration.")
	var chunkSize = pflag.IntP("chunk-size", "n", 256, "Number of samples per run_chunk call.")
	var inputPath = pflag.StringP("input", "i", "-", "Raw sample file, one float per line. \"-\" reads stdin.")

	pflag.Parse()

	triggerTimeFormat, err := strftime.New("%Y-%m-%d %H:%M:%S")
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnbhost: %v\n", err)
		os.Exit(1)
	}

	sp, err := dnbcore.NewSignalProcessorFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnbhost: %v\n", err)
		os.Exit(1)
	}

	in := os.Stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dnbhost: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	sp.LogMessage("dnbhost starting")

	chunk := make([]float64, 0, *chunkSize)
	scanner := bufio.NewScanner(in)
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		if ts, fired := sp.RunChunk(chunk); fired {
			wallTime := time.Unix(0, int64(ts*1e9))
			fmt.Printf("trigger at %.6f (%s)\n", ts, triggerTimeFormat.FormatString(wallTime))
		}
		chunk = chunk[:0]
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		chunk = append(chunk, v)
		if len(chunk) == *chunkSize {
			flush()
		}
	}
	flush()
}

package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/upskillhq/portfolio-engine/internal/simevents"
)

// Default configuration constants.
const (
	defaultNumEvents  = 5000
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultSimTimeout = 10 * time.Minute
	defaultUserDiv    = 4 // events per user, roughly
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents  = flag.Int("events", defaultNumEvents, "Number of mission completions to submit")
		numUsers   = flag.Int("users", 0, "Distinct learners to spread the completions over (default events/4)")
		topN       = flag.Int("top", defaultTopN, "Number of ranking entries to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated events (default: generated_events_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for simulation output (default: sim_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simevents.ShowHelp()
		return
	}

	if err := simevents.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	users := *numUsers
	if users <= 0 {
		users = *numEvents / defaultUserDiv
		if users < 1 {
			users = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	config := &simevents.Config{
		BaseURL:    *baseURL,
		NumEvents:  *numEvents,
		NumUsers:   users,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := simevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}

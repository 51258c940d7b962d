// Package main is the entry point for the luadap debug adapter.
//
// The adapter speaks the Debug Adapter Protocol over stdin/stdout; an editor
// front-end launches it as a child process and drives the whole session, so
// the command line stays minimal.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/luadap/internal/session"
	"github.com/dshills/luadap/internal/tracelog"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	trace := tracelog.Discard()
	if opts.debug {
		t, err := tracelog.Open(opts.logPath)
		if err != nil {
			// stdout belongs to the protocol; complaints go to stderr.
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			trace = t
		}
	}
	defer trace.Close()

	logger := tracelog.NewLogger(trace, tracelog.ParseLogLevel(opts.logLevel))
	logger.Info("luadap %s (%s) starting", version, commit)

	sess := session.New(session.Options{
		In:    os.Stdin,
		Out:   os.Stdout,
		Trace: trace,
		Log:   logger,
	})

	if err := sess.Run(); err != nil {
		return 1
	}
	return 0
}

type options struct {
	debug    bool
	logPath  string
	logLevel string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.BoolVar(&opts.debug, "DEBUG", false, "Write a wire trace to the side log file")
	flag.StringVar(&opts.logPath, "log", defaultLogPath(), "Side log file path")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Diagnostic level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("luadap %s (%s)\n", version, commit)
		os.Exit(0)
	}

	return opts
}

// defaultLogPath places the trace beside the adapter binary, falling back to
// the working directory.
func defaultLogPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "luadap.log"
	}
	return filepath.Join(filepath.Dir(exe), "luadap.log")
}

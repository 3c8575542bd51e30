// Package main is the entry point for the looper hand-off demo.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/looper/internal/app"
	"github.com/dshills/looper/internal/backend"
	"github.com/dshills/looper/internal/config"
	"github.com/dshills/looper/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line. Zero values mean "not given" so they do
// not override the config file or the environment.
type options struct {
	ConfigPath  string
	Mode        string
	SleepMS     int
	Auto        bool
	Headless    bool
	LogLevel    string
	LogFile     string
	ShowVersion bool
	ShowHelp    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.ShowVersion {
		fmt.Printf("looperdemo %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()
	logging.SetDefault(logger)

	var display backend.Backend
	if opts.Headless {
		display = backend.NewNullBackendWithWriter(80, 24, os.Stdout)
	} else {
		term, err := backend.NewTerminal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
			return 1
		}
		display = term
	}

	application, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		Backend:    display,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case <-signals:
			application.Shutdown()
		case <-application.Done():
		}
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("looperdemo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (reloaded on change)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Mode, "mode", "", "Hand-off mode selected at start")
	fs.StringVar(&opts.Mode, "m", "", "Hand-off mode selected at start (shorthand)")
	fs.IntVar(&opts.SleepMS, "sleep", -1, "Worker sleep in milliseconds")
	fs.BoolVar(&opts.Auto, "auto", false, "Run every mode once, then quit")
	fs.BoolVar(&opts.Headless, "headless", false, "Print screen changes to stdout instead of using the terminal")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.ShowVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&opts.ShowHelp, "help", false, "Show help message")
	fs.BoolVar(&opts.ShowHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "looperdemo - hand work from goroutines back to a UI dispatcher\n\n")
		fmt.Fprintf(stderr, "Usage: looperdemo [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nModes:\n")
		for _, m := range app.Modes() {
			fmt.Fprintf(stderr, "  %c  %s\n", m.Key(), m)
		}
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  looperdemo                       Interactive demo\n")
		fmt.Fprintf(stderr, "  looperdemo -m view-post          Start with a mode selected\n")
		fmt.Fprintf(stderr, "  looperdemo -headless -auto       Run every mode without a terminal\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.ShowHelp {
		fs.Usage()
		return opts, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}
	return opts, nil
}

// loadConfig layers defaults, the config file, LOOPER_* variables and
// finally the command line.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if opts.Mode != "" {
		cfg.Demo.Mode = opts.Mode
	}
	if opts.SleepMS >= 0 {
		cfg.Demo.SleepMS = opts.SleepMS
	}
	if opts.Auto {
		cfg.Demo.AutoRun = nil
		for _, m := range app.Modes() {
			cfg.Demo.AutoRun = append(cfg.Demo.AutoRun, m.String())
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger. The terminal owns stderr in
// interactive mode, so logs go to -log-file or nowhere.
func newLogger(cfg *config.Config, opts options) (*logging.Logger, func(), error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel()

	switch {
	case opts.LogFile != "":
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = f
		return logging.New(lc), func() { _ = f.Close() }, nil
	case opts.Headless:
		lc.Output = os.Stderr
		return logging.New(lc), func() {}, nil
	default:
		l := logging.New(lc)
		l.Disable()
		return l, func() {}, nil
	}
}

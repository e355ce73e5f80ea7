package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pdxmph/todos-tui/internal/config"
	"github.com/pdxmph/todos-tui/internal/graphql"
	"github.com/pdxmph/todos-tui/internal/logging"
	"github.com/pdxmph/todos-tui/internal/todos"
	"github.com/pdxmph/todos-tui/internal/tui"
)

// options holds the parsed command line.
type options struct {
	configPath string
	endpoint   string
	logFile    string
	logLevel   string
	initConfig bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("todos-tui", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "Path to the config file (default ~/.config/todos-tui/config.toml).")
	fs.StringVar(&opts.endpoint, "endpoint", "", "GraphQL endpoint URL; overrides the config file and "+config.EndpointEnv+".")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file.")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: 'debug', 'info', 'warn' or 'error'.")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Write a config file with default values and exit.")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.endpoint != "" {
		cfg.Remote.Endpoint = opts.endpoint
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaultConfig(path string, out io.Writer) error {
	var err error
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote default config to %s\n", path)
	return nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args, out)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.initConfig {
		return writeDefaultConfig(opts.configPath, out)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.Open(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := graphql.New(cfg.Remote.Endpoint,
		graphql.WithTimeout(cfg.Remote.Timeout.Duration),
		graphql.WithHeaders(cfg.Remote.Headers),
		graphql.WithLogger(logger),
	)
	defer client.Close()

	logger.Info("starting", "endpoint", client.Endpoint())

	model := tui.New(ctx, todos.NewRemote(client), tui.Options{
		Logger:        logger,
		ResetOnSubmit: cfg.Form.ResetOnSubmit,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

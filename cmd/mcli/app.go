package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/akam1o/mcli/pkg/cli"
	"github.com/akam1o/mcli/pkg/commands"
	"github.com/akam1o/mcli/pkg/device"
	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/history"
	"github.com/akam1o/mcli/pkg/logger"
)

// sourceStdin names standard input in the command history.
const sourceStdin = "stdin"

// app is one shell wired to its device, documents and history.
type app struct {
	cfg   *device.Config
	log   *logger.Logger
	dev   *driver.Dev
	reg   *cli.Registry
	shell *cli.Shell
	hist  history.Store
}

// newApp loads the configuration named by f and assembles the shell.
func newApp(f *flags, stdout, stderr io.Writer) (*app, error) {
	level, ok := logger.ParseLevel(f.logLevel)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", f.logLevel)
	}
	if f.logFormat != logger.FormatText && f.logFormat != logger.FormatJSON {
		return nil, fmt.Errorf("invalid log format %q", f.logFormat)
	}
	log := logger.New("mcli", &logger.Config{Level: level, Output: stderr, Format: f.logFormat})

	cfg := device.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = device.LoadConfig(f.configPath, log); err != nil {
			return nil, err
		}
	}
	if f.family != "" {
		cfg.Device.Family = f.family
		cfg.Device.DeviceID = 0
		if err := device.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}

	info, err := cfg.Info()
	if err != nil {
		return nil, err
	}
	dev := driver.New(info, driver.NewSimBus(info.Family))

	helpStore, err := cfg.LoadHelp(log)
	if err != nil {
		return nil, err
	}
	apis, err := cfg.LoadAPIDoc(log)
	if err != nil {
		return nil, err
	}

	reg := cli.NewRegistry()
	if err := commands.Register(reg, Version); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, dev: dev, reg: reg}
	if cfg.History.Path != "" {
		a.hist, err = history.NewSQLiteStore(cfg.History.Path, log.WithField("store", "history"))
		if err != nil {
			log.ErrorWithCause("Failed to open command history", err,
				"The history database could not be opened or migrated",
				"Check history.path in the configuration or clear it to disable history")
			return nil, err
		}
		if days := cfg.History.RetainDays; days > 0 {
			cutoff := time.Now().AddDate(0, 0, -days)
			n, err := a.hist.Cleanup(context.Background(), cutoff)
			if err != nil {
				log.Warn("Failed to clean up history", slog.String("error", err.Error()))
			} else if n > 0 {
				log.Info("Dropped old history entries", slog.Int64("count", n))
			}
		}
	}

	session := cli.NewSession(dev, cfg.Prompt)
	a.shell = cli.NewShell(&cli.Config{
		Registry: reg,
		Session:  session,
		Help:     helpStore,
		APIDoc:   apis,
		History:  a.hist,
		Output:   stdout,
		Logger:   log.WithField("session", session.ID()),
		LogFile:  cfg.LogFile,
	})

	log.Info("Shell ready",
		slog.String("family", info.Family.Name),
		slog.String("bus", info.Bus.String()),
		slog.Int("commands", reg.Len()),
	)
	return a, nil
}

// Close releases the history store.
func (a *app) Close() {
	if a.hist == nil {
		return
	}
	if err := a.hist.Close(); err != nil {
		a.log.Warn("Failed to close history", slog.String("error", err.Error()))
	}
}

// runScript runs path, or standard input when path is "-".
func (a *app) runScript(ctx context.Context, path string, stdin io.Reader) driver.Status {
	if path != "-" {
		return a.shell.RunScript(ctx, path)
	}
	return a.shell.RunReader(ctx, sourceStdin, cli.NewScriptReader(stdin))
}

func succeeded(st driver.Status) bool {
	return st == driver.OK
}

// joinArgs rebuilds a command line from process arguments, quoting those
// the tokenizer would otherwise split.
func joinArgs(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\"';&|<>") {
			arg = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(arg) + `"`
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

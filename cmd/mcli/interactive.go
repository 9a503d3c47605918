package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"

	"github.com/akam1o/mcli/pkg/cli"
)

const historyFileName = ".mcli_history"

// interruptReader turns ^C into an empty line so the shell keeps running.
type interruptReader struct {
	rl *readline.Instance
}

func (r *interruptReader) Readline() (string, error) {
	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", nil
	}
	return line, err
}

// runInteractive runs the shell on stdin. A terminal gets line editing,
// history and completion; anything else is read as a script without echo.
func runInteractive(ctx context.Context, a *app, stdin io.Reader) error {
	f, ok := stdin.(*os.File)
	if !ok || !readline.IsTerminal(int(f.Fd())) {
		return a.shell.Run(ctx, cli.NewScriptReader(stdin))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            a.shell.Session().Prompt(),
		HistoryFile:       historyFile(),
		AutoComplete:      createCompleter(a.reg),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             f,
		Stdout:            a.shell.Output(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	out := a.shell.Output()
	fam := a.dev.Info().Family
	fmt.Fprintf(out, "MCLI %s on %s (%d ports)\n", Version, fam.Name, a.dev.Ports())
	fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to exit")

	return a.shell.Run(ctx, &interruptReader{rl: rl})
}

// historyFile is the readline history in the home directory, or none when
// the home directory is unknown.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// createCompleter completes direct commands and module subcommands.
func createCompleter(reg *cli.Registry) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range reg.Commands("") {
		items = append(items, readline.PcItem(c.Sub))
	}
	for _, m := range reg.Modules() {
		var subs []readline.PrefixCompleterInterface
		for _, c := range reg.Commands(m) {
			subs = append(subs, readline.PcItem(c.Sub))
		}
		items = append(items, readline.PcItem(m, subs...))
	}
	return readline.NewPrefixCompleter(items...)
}

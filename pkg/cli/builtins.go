package cli

import (
	"context"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/driver"
)

// SessionCommands returns the commands that act on the session itself:
// scripts, output logging and exit.
func SessionCommands() []*Command {
	return []*Command{
		NewBuiltin("", "file", 1, fileCommand,
			"file <script>|logOn [path]|logOff  Run a script or turn output logging on or off"),
		NewBuiltin("", "exit", 0, exitCommand, "exit  Leave the shell"),
		NewBuiltin("", "quit", 0, exitCommand, "quit  Leave the shell"),
	}
}

func fileCommand(ctx context.Context, sh *Shell, args []string) driver.Status {
	switch {
	case cmdkey.Equal(args[0], "logOn"):
		path := sh.logFile
		if len(args) > 1 {
			path = args[1]
		}
		if err := sh.session.StartLog(path); err != nil {
			sh.Reportf("Cannot open log file %s: %v", path, err)
			return driver.Fail
		}
		sh.Reportf("Logging output to %s", path)
		return driver.OK
	case cmdkey.Equal(args[0], "logOff"):
		sh.session.StopLog()
		return driver.OK
	default:
		return sh.RunScript(ctx, args[0])
	}
}

func exitCommand(_ context.Context, sh *Shell, _ []string) driver.Status {
	sh.session.RequestExit()
	return driver.OK
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitOperationError = 1
	ExitUsageError     = 2
)

type flags struct {
	configPath string
	logLevel   string
	logFormat  string
	family     string
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func operationError(err error) error {
	return &exitError{code: ExitOperationError, err: err}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	// Flag and argument errors from cobra
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintln(stderr, root.UsageString())
	return ExitUsageError
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "mcli",
		Short: "Command shell for the switch driver",
		Long: `mcli runs driver commands against a switch: interactively, one
command at a time, or from a script file.

Examples:
  mcli
  mcli exec port setMtu 3 1500
  mcli run setup.cli
  mcli --family Topaz exec help port`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(f, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return operationError(err)
			}
			defer a.Close()
			return runInteractive(cmd.Context(), a, cmd.InOrStdin())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to mcli.yaml (default: built-in simulator profile)")
	pf.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log record format: text or json")
	pf.StringVar(&f.family, "family", "", "Chip family, overrides device.family from the configuration")

	root.AddCommand(newExecCmd(f))
	root.AddCommand(newRunCmd(f))
	root.AddCommand(newVersionCmd())
	return root
}

func newExecCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Execute one command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(f, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return operationError(err)
			}
			defer a.Close()

			if st := a.shell.ExecuteLine(cmd.Context(), joinArgs(args)); !succeeded(st) {
				return &exitError{code: ExitOperationError}
			}
			return nil
		},
	}
	// Command arguments such as "-macAddr" are not mcli flags
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newRunCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Execute a script file; '-' reads standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(f, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return operationError(err)
			}
			defer a.Close()

			if st := a.runScript(cmd.Context(), args[0], cmd.InOrStdin()); !succeeded(st) {
				return &exitError{code: ExitOperationError}
			}
			return nil
		},
	}
}

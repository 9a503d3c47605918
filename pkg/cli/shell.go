package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/errors"
	"github.com/akam1o/mcli/pkg/help"
	"github.com/akam1o/mcli/pkg/history"
	"github.com/akam1o/mcli/pkg/logger"
)

// SourceTTY names interactive input in the command history.
const SourceTTY = "tty"

// LineReader yields input lines. It returns io.EOF at the end of input.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type scriptReader struct {
	sc *bufio.Scanner
}

// NewScriptReader reads lines from r.
func NewScriptReader(r io.Reader) LineReader {
	return &scriptReader{sc: bufio.NewScanner(r)}
}

func (r *scriptReader) Readline() (string, error) {
	if r.sc.Scan() {
		return strings.TrimRight(r.sc.Text(), "\r"), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Config holds everything a Shell runs with. Help, APIDoc and History are
// optional.
type Config struct {
	Registry *Registry
	Session  *Session
	Help     *help.Store
	APIDoc   *help.APIDoc
	History  history.Store
	Output   io.Writer
	Logger   *logger.Logger
	// LogFile is the target of "file logOn" without a path
	LogFile string
}

// Shell reads command lines, dispatches them through the registry and
// reports the results.
type Shell struct {
	reg     *Registry
	session *Session
	help    *help.Store
	apis    *help.APIDoc
	history history.Store
	out     io.Writer
	log     *logger.Logger
	logFile string
	source  string
}

// NewShell creates a shell from cfg
func NewShell(cfg *Config) *Shell {
	s := &Shell{
		reg:     cfg.Registry,
		session: cfg.Session,
		help:    cfg.Help,
		apis:    cfg.APIDoc,
		history: cfg.History,
		out:     cfg.Output,
		log:     cfg.Logger,
		logFile: cfg.LogFile,
		source:  SourceTTY,
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.log == nil {
		s.log = logger.Discard("shell")
	}
	if s.help == nil {
		s.help = help.Empty()
	}
	return s
}

// Registry, Session, Help, APIDoc, History, Logger and Output expose the
// shell's parts to builtins. Help is never nil; APIDoc and History are nil
// when not configured.
func (s *Shell) Registry() *Registry    { return s.reg }
func (s *Shell) Session() *Session      { return s.session }
func (s *Shell) Help() *help.Store      { return s.help }
func (s *Shell) APIDoc() *help.APIDoc   { return s.apis }
func (s *Shell) History() history.Store { return s.history }
func (s *Shell) Logger() *logger.Logger { return s.log }
func (s *Shell) Output() io.Writer      { return s.out }

// Report prints text one line at a time and copies each line to the
// session log when logging is on.
func (s *Shell) Report(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(s.out, line)
		if err := s.session.appendLog(line); err != nil {
			s.log.Warn("Failed to write log file, logging stopped",
				slog.String("path", s.session.LogPath()),
				slog.String("error", err.Error()),
			)
			s.session.StopLog()
		}
	}
}

// Reportf formats and reports.
func (s *Shell) Reportf(format string, args ...any) {
	s.Report(fmt.Sprintf(format, args...))
}

// Run reads and executes lines from r until EOF, exit or ctx is done.
func (s *Shell) Run(ctx context.Context, r LineReader) error {
	_, err := s.run(ctx, r, false)
	return err
}

// RunReader executes the lines of r without echo, recording them in the
// history under source. It fails when any line did not end in OK.
func (s *Shell) RunReader(ctx context.Context, source string, r LineReader) driver.Status {
	prev := s.source
	s.source = source
	defer func() { s.source = prev }()

	failed, err := s.run(ctx, r, false)
	if err != nil {
		s.Reportf("Error reading %s: %v", source, err)
		return driver.Fail
	}
	if failed > 0 {
		s.log.Warn("Input finished with failures",
			slog.String("source", source),
			slog.Int("failed", failed),
		)
		return driver.Fail
	}
	return driver.OK
}

// run is the read-eval loop shared by interactive input and scripts. It
// returns the number of lines that did not end in OK.
func (s *Shell) run(ctx context.Context, r LineReader, echo bool) (int, error) {
	failed := 0
	for !s.session.ExitRequested() {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		line, err := r.Readline()
		if err == io.EOF {
			return failed, nil
		}
		if err != nil {
			return failed, err
		}
		if IsBlank(line) || IsComment(line) {
			continue
		}
		if echo {
			fmt.Fprintf(s.out, "%s%s\n", s.session.Prompt(), line)
		}
		if st := s.ExecuteLine(ctx, line); st != driver.OK {
			failed++
		}
	}
	return failed, nil
}

// ExecuteLine tokenizes, resolves and executes one line. Blank and comment
// lines are OK and do nothing.
func (s *Shell) ExecuteLine(ctx context.Context, line string) driver.Status {
	if IsBlank(line) || IsComment(line) {
		return driver.OK
	}

	st := s.executeLine(ctx, line)
	s.record(ctx, line, st)
	return st
}

func (s *Shell) executeLine(ctx context.Context, line string) driver.Status {
	tokens, err := TokenizeCommand(line)
	if err != nil {
		s.Reportf("Syntax Error: %v", err)
		return driver.BadParam
	}

	cmd, args, ok := s.reg.Resolve(tokens)
	if !ok {
		if s.reg.IsModule(tokens[0]) {
			s.Reportf("Unknown subcommand for %s; type 'help %s' for the list", tokens[0], tokens[0])
		} else {
			s.Reportf("Unknown command: %s; type 'help' for the list", tokens[0])
		}
		return driver.BadParam
	}
	return s.Execute(ctx, cmd, args)
}

// Execute runs a resolved command and reports its outcome.
func (s *Shell) Execute(ctx context.Context, cmd *Command, args []string) driver.Status {
	s.log.Debug("Dispatch",
		slog.String("command", cmd.Name()),
		slog.Any("args", args),
	)

	if cmd.Builtin() {
		if len(args) < cmd.minArgs {
			s.syntaxError(cmd, fmt.Sprintf("needs %d arguments, got %d", cmd.minArgs, len(args)))
			return driver.BadParam
		}
		st := cmd.builtin(ctx, s, args)
		if st != driver.OK {
			for _, l := range FormatResult(cmd, Result{Status: st}) {
				s.Report(l)
			}
		}
		return st
	}

	res := Invoke(s.session.Dev(), cmd, args)
	if res.Syntax {
		s.syntaxError(cmd, res.Message)
		return res.Status
	}
	for _, l := range FormatResult(cmd, res) {
		s.Report(l)
	}
	return res.Status
}

func (s *Shell) syntaxError(cmd *Command, detail string) {
	s.log.Debug("Syntax error",
		slog.String("command", cmd.Name()),
		slog.String("detail", detail),
	)
	s.Report("Syntax Error, Using command as follows:")
	s.Report(s.Usage(cmd))
}

// Usage returns the help document usage of cmd, falling back to the help
// text compiled into the command table.
func (s *Shell) Usage(cmd *Command) string {
	if u, ok := s.help.Usage(cmd.Module, cmd.Sub); ok {
		return u
	}
	if cmd.Help != "" {
		return cmd.Help
	}
	if cmd.target != nil {
		return cmd.Name() + " " + cmd.target.shape.Usage()
	}
	return cmd.Name()
}

// RunScript executes the lines of path. A missing file or nesting deeper
// than maxScriptDepth fails without running anything. Failing lines are
// reported and the script continues.
func (s *Shell) RunScript(ctx context.Context, path string) driver.Status {
	if !s.session.enterScript() {
		s.Reportf("Script nesting exceeds %d levels: %s", maxScriptDepth, path)
		return driver.Fail
	}
	defer s.session.leaveScript()

	f, err := os.Open(path)
	if err != nil {
		e := errors.ScriptNotFound(path, err)
		s.log.Warn(e.Message, slog.String("error", err.Error()))
		s.Report(e.Message)
		return driver.Fail
	}
	defer f.Close()

	prev := s.source
	s.source = path
	defer func() { s.source = prev }()

	failed, err := s.run(ctx, NewScriptReader(f), true)
	if err != nil {
		s.Reportf("Error reading script %s: %v", path, err)
		return driver.Fail
	}
	if failed > 0 {
		s.log.Warn("Script finished with failures",
			slog.String("path", path),
			slog.Int("failed", failed),
		)
		return driver.Fail
	}
	return driver.OK
}

// record appends the line to the command history when one is configured.
func (s *Shell) record(ctx context.Context, line string, st driver.Status) {
	if s.history == nil {
		return
	}
	e := &history.Entry{
		SessionID: s.session.ID(),
		Source:    s.source,
		Line:      strings.TrimSpace(line),
		Status:    st.Code(),
	}
	if dev := s.session.Dev(); dev != nil {
		e.Family = dev.Info().Family.Name
	}
	if err := s.history.Record(ctx, e); err != nil {
		s.log.Warn("Failed to record history", slog.String("error", err.Error()))
	}
}

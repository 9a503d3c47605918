package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/akam1o/mcli/pkg/driver"
)

// maxScriptDepth bounds "file" recursion.
const maxScriptDepth = 8

// Session is the state of one shell: the device handle, the prompt, file
// logging and the exit flag. It is owned by the goroutine running the
// shell.
type Session struct {
	id        string
	dev       *driver.Dev
	prompt    string
	logging   bool
	logPath   string
	exit      bool
	depth     int
	createdAt time.Time
}

// NewSession creates a session on dev
func NewSession(dev *driver.Dev, prompt string) *Session {
	return &Session{
		id:        uuid.New().String(),
		dev:       dev,
		prompt:    prompt,
		createdAt: time.Now(),
	}
}

// Accessors for the session state. Dev is the device handle commands run
// against; ExitRequested and ScriptDepth are read by the shell loop.
func (s *Session) ID() string           { return s.id }
func (s *Session) Dev() *driver.Dev     { return s.dev }
func (s *Session) Prompt() string       { return s.prompt }
func (s *Session) Logging() bool        { return s.logging }
func (s *Session) LogPath() string      { return s.logPath }
func (s *Session) ExitRequested() bool  { return s.exit }
func (s *Session) ScriptDepth() int     { return s.depth }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// RequestExit makes the shell stop after the current line
func (s *Session) RequestExit() { s.exit = true }

// StartLog turns on logging of report output to path
func (s *Session) StartLog(path string) error {
	if path == "" {
		return fmt.Errorf("log file path is empty")
	}
	// Fail now rather than on the first reported line
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	f.Close()

	s.logPath = path
	s.logging = true
	return nil
}

// StopLog turns logging off
func (s *Session) StopLog() {
	s.logging = false
}

// appendLog writes "<prompt><line>" to the log file. The file is opened
// and closed per line so it can be inspected or rotated while the shell
// runs.
func (s *Session) appendLog(line string) error {
	if !s.logging {
		return nil
	}
	f, err := os.OpenFile(s.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s%s\n", s.prompt, line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Session) enterScript() bool {
	if s.depth >= maxScriptDepth {
		return false
	}
	s.depth++
	return true
}

func (s *Session) leaveScript() { s.depth-- }

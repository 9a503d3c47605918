package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/help"
	"github.com/akam1o/mcli/pkg/history"
)

// mockHistory implements history.Store in memory
type mockHistory struct {
	entries []*history.Entry
	err     error
}

func (m *mockHistory) Record(ctx context.Context, e *history.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockHistory) List(ctx context.Context, opts *history.ListOptions) ([]*history.Entry, error) {
	return m.entries, nil
}

func (m *mockHistory) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockHistory) Close() error {
	return nil
}

// sliceReader feeds fixed lines to the shell
type sliceReader struct {
	lines []string
}

func (r *sliceReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

type testShell struct {
	*Shell
	out  *bytes.Buffer
	dev  *driver.Dev
	hist *mockHistory
	help *help.Store
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	reg := newTestRegistry(t)
	reg.MustRegister(SessionCommands()...)

	store, err := help.LoadBuiltin("BonsaiZ1.json")
	if err != nil {
		t.Fatalf("LoadBuiltin failed: %v", err)
	}

	dev := newTestDev(t, "BonsaiZ1")
	out := &bytes.Buffer{}
	hist := &mockHistory{}
	sh := NewShell(&Config{
		Registry: reg,
		Session:  NewSession(dev, "MCLI> "),
		Help:     store,
		History:  hist,
		Output:   out,
		LogFile:  filepath.Join(t.TempDir(), "mcli.log"),
	})
	return &testShell{Shell: sh, out: out, dev: dev, hist: hist, help: store}
}

func writeScript(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestExecuteLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		status driver.Status
		output string
	}{
		{
			name:   "module and subcommand",
			line:   "port setMtu 3 1500",
			status: driver.OK,
		},
		{
			name:   "fused form",
			line:   "portsetMtu 3 1500",
			status: driver.OK,
		},
		{
			name:   "case insensitive",
			line:   "PORT GETMTU 3",
			status: driver.OK,
			output: "getMtu value: 0x5f2\n",
		},
		{
			name:   "blank",
			line:   "   ",
			status: driver.OK,
		},
		{
			name:   "comment",
			line:   "# nothing",
			status: driver.OK,
		},
		{
			name:   "driver error",
			line:   "port setMtu 3 0",
			status: driver.BadParam,
			output: "Error ret[-4: bad param]\n",
		},
		{
			name:   "unknown command",
			line:   "nosuch 1 2",
			status: driver.BadParam,
			output: "Unknown command: nosuch; type 'help' for the list\n",
		},
		{
			name:   "unknown subcommand",
			line:   "port frob 1",
			status: driver.BadParam,
			output: "Unknown subcommand for port; type 'help port' for the list\n",
		},
		{
			name:   "unmatched quote",
			line:   `rr "0x10 0`,
			status: driver.BadParam,
			output: "Syntax Error: unmatched quote in command\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newTestShell(t)
			if got := sh.ExecuteLine(context.Background(), tt.line); got != tt.status {
				t.Errorf("ExecuteLine(%q) = %v, want %v", tt.line, got, tt.status)
			}
			if diff := cmp.Diff(tt.output, sh.out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuteLine_SyntaxErrorShowsUsage(t *testing.T) {
	for _, line := range []string{"portsetMtu 3", "port setMtu 3 1500 9", "port setMtu x 1500"} {
		t.Run(line, func(t *testing.T) {
			sh := newTestShell(t)
			if got := sh.ExecuteLine(context.Background(), line); got != driver.BadParam {
				t.Errorf("ExecuteLine() = %v, want BadParam", got)
			}

			usage, ok := sh.help.Usage("port", "setMtu")
			if !ok {
				t.Fatal("no usage for port setMtu")
			}
			want := "Syntax Error, Using command as follows:\n" + usage
			if diff := cmp.Diff(want, sh.out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if mtu, _ := sh.dev.GetPortMTU(3); mtu != 1522 {
				t.Errorf("MTU changed to %d by a rejected line", mtu)
			}
		})
	}
}

func TestExecuteLine_BuiltinArity(t *testing.T) {
	sh := newTestShell(t)
	if got := sh.ExecuteLine(context.Background(), "file"); got != driver.BadParam {
		t.Errorf("ExecuteLine(file) = %v, want BadParam", got)
	}
	if !strings.HasPrefix(sh.out.String(), "Syntax Error, Using command as follows:\nfile ") {
		t.Errorf("output = %q", sh.out.String())
	}
}

func TestUsage_FallsBackToCommandHelp(t *testing.T) {
	sh := newTestShell(t)
	sh.Shell.help = help.Empty()

	c, _ := sh.Registry().Lookup("port", "setMtu")
	if got := sh.Usage(c); got != "port setMtu <port> <mtu>" {
		t.Errorf("Usage() = %q", got)
	}
	c.Help = ""
	if got := sh.Usage(c); got != "port setMtu <port> <mtu>" {
		t.Errorf("Usage() from shape = %q", got)
	}
}

func TestRun_ContinuesAfterMissingScript(t *testing.T) {
	sh := newTestShell(t)
	r := &sliceReader{lines: []string{
		"file nonexistent.cli",
		"port setMtu 3 2000",
		"port getMtu 3",
	}}
	if err := sh.Run(context.Background(), r); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "Cannot open script file: nonexistent.cli\n" +
		"Error ret[-1: operation failed]\n" +
		"getMtu value: 0x800\n"
	if diff := cmp.Diff(want, sh.out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReader(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    driver.Status
		wantOut string
	}{
		{
			name:    "all lines succeed",
			lines:   []string{"# comment", "port setMtu 3 2000", "port getMtu 3"},
			want:    driver.OK,
			wantOut: "getMtu value: 0x800\n",
		},
		{
			name:    "failing line",
			lines:   []string{"port setMtu 99 2000", "port getMtu 3"},
			want:    driver.Fail,
			wantOut: "Error ret[-4: bad param]\ngetMtu value: 0x5f2\n",
		},
		{
			name:    "unknown command",
			lines:   []string{"bogus"},
			want:    driver.Fail,
			wantOut: "Unknown command: bogus; type 'help' for the list\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newTestShell(t)
			got := sh.RunReader(context.Background(), "stdin", &sliceReader{lines: tt.lines})
			if got != tt.want {
				t.Errorf("RunReader() = %v, want %v", got, tt.want)
			}
			if diff := cmp.Diff(tt.wantOut, sh.out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			for _, e := range sh.hist.entries {
				if e.Source != "stdin" {
					t.Errorf("history source = %q, want stdin", e.Source)
				}
			}
			if sh.source != SourceTTY {
				t.Errorf("source not restored: %q", sh.source)
			}
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	sh := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sh.Run(ctx, &sliceReader{lines: []string{"port setMtu 3 2000"}})
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if mtu, _ := sh.dev.GetPortMTU(3); mtu != 1522 {
		t.Errorf("line ran after cancel, MTU = %d", mtu)
	}
}

func TestRunScript(t *testing.T) {
	sh := newTestShell(t)
	path := writeScript(t, t.TempDir(), "setup.cli",
		"# set up port 3",
		"",
		"port setMtu 3 2000",
		"bogus",
		"port getMtu 3",
	)

	if got := sh.RunScript(context.Background(), path); got != driver.Fail {
		t.Errorf("RunScript() = %v, want Fail after a failed line", got)
	}

	want := "MCLI> port setMtu 3 2000\n" +
		"MCLI> bogus\n" +
		"Unknown command: bogus; type 'help' for the list\n" +
		"MCLI> port getMtu 3\n" +
		"getMtu value: 0x800\n"
	if diff := cmp.Diff(want, sh.out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if sh.Session().ScriptDepth() != 0 {
		t.Errorf("ScriptDepth() = %d after script", sh.Session().ScriptDepth())
	}
}

func TestRunScript_Clean(t *testing.T) {
	sh := newTestShell(t)
	path := writeScript(t, t.TempDir(), "ok.cli", "port setMtu 1 10000", "port setMtu 2 2000")
	if got := sh.RunScript(context.Background(), path); got != driver.OK {
		t.Errorf("RunScript() = %v, want OK", got)
	}
	if mtu, _ := sh.dev.GetPortMTU(1); mtu != 10240 {
		t.Errorf("port 1 MTU = %d", mtu)
	}
}

func TestRunScript_NestingLimit(t *testing.T) {
	sh := newTestShell(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "self.cli")
	writeScript(t, dir, "self.cli", "file "+path)

	if got := sh.ExecuteLine(context.Background(), "file "+path); got != driver.Fail {
		t.Errorf("ExecuteLine() = %v, want Fail", got)
	}

	out := sh.out.String()
	if n := strings.Count(out, "MCLI> file "+path+"\n"); n != maxScriptDepth {
		t.Errorf("echoed %d nested lines, want %d", n, maxScriptDepth)
	}
	if !strings.Contains(out, fmt.Sprintf("Script nesting exceeds %d levels: %s\n", maxScriptDepth, path)) {
		t.Errorf("output lacks nesting error:\n%s", out)
	}
	if sh.Session().ScriptDepth() != 0 {
		t.Errorf("ScriptDepth() = %d after unwinding", sh.Session().ScriptDepth())
	}
}

func TestExit(t *testing.T) {
	t.Run("interactive", func(t *testing.T) {
		sh := newTestShell(t)
		r := &sliceReader{lines: []string{"exit", "port setMtu 3 2000"}}
		if err := sh.Run(context.Background(), r); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !sh.Session().ExitRequested() {
			t.Error("ExitRequested() = false")
		}
		if mtu, _ := sh.dev.GetPortMTU(3); mtu != 1522 {
			t.Errorf("line after exit ran, MTU = %d", mtu)
		}
	})

	t.Run("from script", func(t *testing.T) {
		sh := newTestShell(t)
		path := writeScript(t, t.TempDir(), "quit.cli", "QUIT", "port setMtu 3 2000")
		r := &sliceReader{lines: []string{"file " + path, "port setMtu 4 2000"}}
		if err := sh.Run(context.Background(), r); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		for _, p := range []driver.Port{3, 4} {
			if mtu, _ := sh.dev.GetPortMTU(p); mtu != 1522 {
				t.Errorf("port %d MTU = %d, want untouched", p, mtu)
			}
		}
	})
}

func TestFileLog(t *testing.T) {
	sh := newTestShell(t)
	logPath := filepath.Join(t.TempDir(), "session.log")
	ctx := context.Background()

	for _, line := range []string{
		"port getMtu 3",
		"file logOn " + logPath,
		"port getMtu 3",
		"port setMtu 3 0",
		"file logOff",
		"port getMtu 4",
	} {
		sh.ExecuteLine(ctx, line)
	}

	got, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "MCLI> Logging output to " + logPath + "\n" +
		"MCLI> getMtu value: 0x5f2\n" +
		"MCLI> Error ret[-4: bad param]\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if sh.Session().Logging() {
		t.Error("Logging() = true after logOff")
	}
}

func TestFileLog_DefaultPath(t *testing.T) {
	sh := newTestShell(t)
	if got := sh.ExecuteLine(context.Background(), "file logon"); got != driver.OK {
		t.Fatalf("file logon = %v", got)
	}
	if sh.Session().LogPath() != sh.logFile {
		t.Errorf("LogPath() = %q, want %q", sh.Session().LogPath(), sh.logFile)
	}

	bad := filepath.Join(t.TempDir(), "missing", "dir", "x.log")
	if got := sh.ExecuteLine(context.Background(), "file logOn "+bad); got != driver.Fail {
		t.Errorf("file logOn into a missing directory = %v, want Fail", got)
	}
}

func TestHistoryRecording(t *testing.T) {
	sh := newTestShell(t)
	ctx := context.Background()
	path := writeScript(t, t.TempDir(), "s.cli", "port getMtu 3")

	for _, line := range []string{"port setMtu 3 1500", "", "# note", "nosuch", "  file " + path + "  "} {
		sh.ExecuteLine(ctx, line)
	}

	type rec struct {
		Source string
		Line   string
		Status int
	}
	var got []rec
	for _, e := range sh.hist.entries {
		if e.SessionID != sh.Session().ID() || e.Family != "BonsaiZ1" {
			t.Errorf("entry %+v has wrong session or family", e)
		}
		got = append(got, rec{e.Source, e.Line, e.Status})
	}
	want := []rec{
		{SourceTTY, "port setMtu 3 1500", 0},
		{SourceTTY, "nosuch", -4},
		{path, "port getMtu 3", 0},
		{SourceTTY, "file " + path, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryFailureDoesNotFailLine(t *testing.T) {
	sh := newTestShell(t)
	sh.hist.err = fmt.Errorf("disk full")
	if got := sh.ExecuteLine(context.Background(), "port setMtu 3 1500"); got != driver.OK {
		t.Errorf("ExecuteLine() = %v, want OK", got)
	}
}

func TestNewScriptReader(t *testing.T) {
	r := NewScriptReader(strings.NewReader("a\r\nb\n\nc"))
	var got []string
	for {
		line, err := r.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Readline() error = %v", err)
		}
		got = append(got, line)
	}
	if diff := cmp.Diff([]string{"a", "b", "", "c"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

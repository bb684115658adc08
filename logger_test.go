package argus

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// newFileLogger builds a logger writing to a session file under a fresh
// temp directory, with console output silenced.
func newFileLogger(t *testing.T, cfg *Config) (*Logger, string) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Level == "" {
		cfg.Level = "debug"
	}
	dir := cfg.Directory
	if dir == "" {
		dir = t.TempDir()
	}
	cfg.Directory = ""

	l, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.DisableConsole()
	if err := l.SetDirectory(dir); err != nil {
		t.Fatal(err)
	}
	return l, dir
}

func TestLoggerWritesLeveledRecords(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.Debug("Debug message", "user_id", 123)
	l.Info("Info message", "action", "login")
	l.Warning("Warning message")
	l.Error("Error message")
	l.Critical("Critical message")

	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	// One extra info record announces file logging.
	if len(doc.Logs) != 6 {
		t.Fatalf("expected 6 logs, got %d", len(doc.Logs))
	}
	levels := []string{"INFO", "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}
	for i, want := range levels {
		if doc.Logs[i]["level"] != want {
			t.Errorf("logs[%d].level = %v, want %s", i, doc.Logs[i]["level"], want)
		}
	}
	if doc.Logs[1]["extra_data"].(map[string]any)["user_id"] != float64(123) {
		t.Errorf("extra_data = %v", doc.Logs[1]["extra_data"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	l, _ := newFileLogger(t, &Config{Level: "error"})
	l.Debug("dropped")
	l.Info("dropped")
	l.Warning("dropped")
	l.Error("kept")

	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	if len(doc.Logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(doc.Logs))
	}
	if doc.Logs[0]["message"] != "kept" {
		t.Errorf("message = %v", doc.Logs[0]["message"])
	}
}

func TestLoggerCallerAttribution(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.Info("attributed")

	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	entry := doc.Logs[len(doc.Logs)-1]
	if mod, _ := entry["caller_module"].(string); !strings.HasSuffix(mod, "logger_test.go") {
		t.Errorf("caller_module = %v", entry["caller_module"])
	}
	if entry["caller_func"] != "TestLoggerCallerAttribution" {
		t.Errorf("caller_func = %v", entry["caller_func"])
	}
	if line, _ := entry["caller_lineno"].(float64); line <= 0 {
		t.Errorf("caller_lineno = %v", entry["caller_lineno"])
	}
	if entry["logger"] != "argus" {
		t.Errorf("logger = %v", entry["logger"])
	}
}

func TestLoggerFileNaming(t *testing.T) {
	l, dir := newFileLogger(t, &Config{Prefix: "myapp"})
	defer l.Shutdown()

	base := filepath.Base(l.LogFile())
	pattern := regexp.MustCompile(`^myapp_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.log$`)
	if !pattern.MatchString(base) {
		t.Errorf("file name %q does not match the session naming scheme", base)
	}
	if filepath.Dir(l.LogFile()) != dir {
		t.Errorf("file created in %s, want %s", filepath.Dir(l.LogFile()), dir)
	}
}

func TestLoggerShutdownIdempotent(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.Info("only")
	path := l.LogFile()

	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Shutdown(); err != nil {
		t.Errorf("second shutdown: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second shutdown changed the file")
	}
}

func TestLoggerDropsRecordsAfterShutdown(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	before, _ := os.ReadFile(path)
	l.Info("late")
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("record written after shutdown")
	}
}

func TestLoggerShutdownRunsProbes(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.RegisterProbe(func() any {
		f := NewFields()
		f.Set("status", "active")
		return f
	})
	l.RegisterProbe(func() any { return "skipped" }, LevelCritical)

	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	if len(doc.State) != 1 {
		t.Fatalf("expected 1 state entry, got %d: %v", len(doc.State), doc.State)
	}
	if doc.State[0]["status"] != "active" {
		t.Errorf("state = %v", doc.State[0])
	}

	// The probe announcement is logged before the arrays close.
	found := false
	for _, entry := range doc.Logs {
		if entry["message"] == "Running registered exit logging functions..." {
			found = true
		}
	}
	if !found {
		t.Error("probe announcement record missing")
	}
}

func TestLoggerDiagnosticsSnapshot(t *testing.T) {
	l, dir := newFileLogger(t, &Config{Level: "warning"})
	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	diag := doc.Diagnostics
	if diag["log_directory"] != dir {
		t.Errorf("log_directory = %v, want %s", diag["log_directory"], dir)
	}
	if diag["max_logs"] != float64(-1) {
		t.Errorf("max_logs = %v, want -1", diag["max_logs"])
	}
	if diag["log_level"] != float64(LevelWarning) {
		t.Errorf("log_level = %v", diag["log_level"])
	}
	if diag["log_level_name"] != "WARNING" {
		t.Errorf("log_level_name = %v", diag["log_level_name"])
	}
	if diag["timestamp"] != l.Session() {
		t.Errorf("timestamp = %v, want %s", diag["timestamp"], l.Session())
	}
	if diag["diagnostics_version"] != Version {
		t.Errorf("diagnostics_version = %v", diag["diagnostics_version"])
	}
}

func TestLoggerDisableFileFinalizes(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.Info("before disable")
	path := l.LogFile()

	if err := l.DisableFile(); err != nil {
		t.Fatal(err)
	}
	if l.LogFile() != "" {
		t.Error("LogFile should be empty after disabling")
	}

	// The abandoned file is complete JSON.
	doc := readDoc(t, path)
	if len(doc.Logs) < 2 {
		t.Errorf("expected the pre-disable records, got %v", doc.Logs)
	}

	// Logging continues without a file.
	l.Info("console only")
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestLoggerSetMaxLogsRetention(t *testing.T) {
	dir := t.TempDir()
	writeRotated(t, dir,
		"2001-01-01_00-00-00.log",
		"2002-01-01_00-00-00.log",
		"2003-01-01_00-00-00.log",
	)
	l, _ := newFileLogger(t, &Config{Directory: dir})
	defer l.Shutdown()

	if err := l.SetMaxLogs(2); err != nil {
		t.Fatal(err)
	}
	if l.MaxLogs() != 2 {
		t.Errorf("MaxLogs = %d", l.MaxLogs())
	}

	remaining := listLogs(t, dir)
	if len(remaining) != 2 {
		t.Fatalf("remaining = %v", remaining)
	}
	// The session file is lexically newest and always survives.
	if remaining[1] != filepath.Base(l.LogFile()) {
		t.Errorf("current session file was deleted: %v", remaining)
	}
}

func TestLoggerSetMaxLogsNegativeDisables(t *testing.T) {
	dir := t.TempDir()
	writeRotated(t, dir, rotatedFixture...)
	l, _ := newFileLogger(t, &Config{Directory: dir})
	defer l.Shutdown()

	if err := l.SetMaxLogs(-1); err != nil {
		t.Fatal(err)
	}
	if l.MaxLogs() != -1 {
		t.Errorf("MaxLogs = %d, want -1", l.MaxLogs())
	}
	if got := len(listLogs(t, dir)); got != len(rotatedFixture)+1 {
		t.Errorf("expected all files kept, have %d", got)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	l, _ := newFileLogger(t, &Config{Level: "critical"})
	l.SetLevel(LevelDebug)
	if l.Level() != LevelDebug {
		t.Errorf("Level = %v", l.Level())
	}
	l.Debug("now visible")

	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}
	doc := readDoc(t, path)
	if len(doc.Logs) != 1 || doc.Logs[0]["message"] != "now visible" {
		t.Errorf("logs = %v", doc.Logs)
	}
}

func TestConsoleLineFormat(t *testing.T) {
	l, err := New(&Config{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	l.console = newConsoleHandler(&buf, true)

	l.Info("hello there", "k", "v", "n", 3)

	line := buf.String()
	pattern := regexp.MustCompile(
		`^\d{2}:\d{2}:\d{2} \[INFO\] .*logger_test\.go\.TestConsoleLineFormat:\d+ - hello there \[k=v, n=3\]\n$`)
	if !pattern.MatchString(line) {
		t.Errorf("console line = %q", line)
	}
}

func TestConsoleExtrasHidden(t *testing.T) {
	l, err := New(&Config{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	l.console = newConsoleHandler(&buf, false)

	l.Info("quiet", "k", "v")
	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("extras rendered while disabled: %q", buf.String())
	}
}

func TestLoggerSessionID(t *testing.T) {
	l, err := New(&Config{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	l.DisableConsole()
	defer l.Shutdown()

	if len(l.SessionID()) != 36 {
		t.Errorf("SessionID = %q, want a UUID", l.SessionID())
	}
	l2, _ := New(&Config{Level: "debug"})
	l2.DisableConsole()
	defer l2.Shutdown()
	if l.SessionID() == l2.SessionID() {
		t.Error("two loggers share a session id")
	}
}

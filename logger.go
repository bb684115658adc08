package argus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Version is the diagnostics version recorded in every finalized log file.
const Version = "1.1.0"

// sessionTimeFormat names the session and its log file; lexical order of the
// resulting file names equals chronological order, which retention relies on.
const sessionTimeFormat = "2006-01-02_15-04-05"

// Logger is the diagnostics front end. It dispatches leveled records to the
// console handler and the session file sink, resolves caller attribution,
// and owns the probe registry reported at shutdown.
//
// One mutex serializes every log call; the sink and handlers behind it are
// single-writer by design.
type Logger struct {
	mu        sync.Mutex
	name      string
	level     Level
	directory string
	prefix    string
	maxLogs   int
	session   string
	sessionID string
	sink      *Sink
	console   *consoleHandler
	probes    *ProbeRegistry
	retention *Retention
	closed    bool
}

// New creates a logger with the provided configuration, or defaults when none
// is given. Console output starts enabled; file logging starts when the
// configuration names a directory.
func New(cfg ...*Config) (*Logger, error) {
	var user *Config
	if len(cfg) > 0 {
		user = cfg[0]
	}
	merged := mergeConfig(user)

	level, err := ParseLevel(merged.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		name:      merged.Name,
		level:     level,
		prefix:    strings.TrimSpace(merged.Prefix),
		maxLogs:   merged.MaxLogs,
		session:   time.Now().Format(sessionTimeFormat),
		sessionID: uuid.NewString(),
		console:   newConsoleHandler(os.Stdout, merged.ConsoleExtras),
		probes:    NewProbeRegistry(),
	}
	l.retention = NewRetention(l.report)

	if merged.SystemProbes {
		l.probes.RegisterNamed("runtime", RuntimeState)
		l.probes.RegisterNamed("process", l.processState)
	}

	if merged.Directory != "" {
		if err := l.SetDirectory(merged.Directory); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Debug logs a message at debug level with optional key/value extra fields.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(LevelDebug, msg, 3, kv)
}

// Info logs a message at info level with optional key/value extra fields.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(LevelInfo, msg, 3, kv)
}

// Warning logs a message at warning level with optional key/value extra fields.
func (l *Logger) Warning(msg string, kv ...any) {
	l.log(LevelWarning, msg, 3, kv)
}

// Error logs a message at error level with optional key/value extra fields.
func (l *Logger) Error(msg string, kv ...any) {
	l.log(LevelError, msg, 3, kv)
}

// Critical logs a message at critical level with optional key/value extra fields.
func (l *Logger) Critical(msg string, kv ...any) {
	l.log(LevelCritical, msg, 3, kv)
}

// Log writes a record at an arbitrary level.
func (l *Logger) Log(level Level, msg string, kv ...any) {
	l.log(level, msg, 3, kv)
}

// LogDepth is Log for wrapping layers: extra counts the additional stack
// frames between the wrapper and the call site being attributed.
func (l *Logger) LogDepth(level Level, msg string, extra int, kv ...any) {
	l.log(level, msg, 3+extra, kv)
}

// log builds a record with caller attribution and hands it to the enabled
// handlers. skip counts stack frames from callerInfo up to the user call
// site. Records below the logger level, and all records after shutdown,
// are dropped.
func (l *Logger) log(level Level, msg string, skip int, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || level < l.level {
		return
	}

	module, fn, line := callerInfo(skip)
	rec := Record{
		Time:         time.Now(),
		Level:        level,
		Message:      msg,
		CallerModule: module,
		CallerFunc:   fn,
		CallerLine:   line,
		Logger:       l.name,
		Extra:        fieldsFromPairs(kv),
	}

	if l.console != nil {
		l.console.write(rec)
	}
	if l.sink != nil {
		// A failed append drops that record; the session continues.
		_ = l.sink.Append(rec)
	}
}

// report is the retention manager's notice hook.
func (l *Logger) report(level Level, msg string, kv ...any) {
	l.log(level, msg, 3, kv)
}

// SetLevel changes the minimum level written by the logger.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetDirectory starts file logging in the given directory, creating it when
// missing. The session file is named <prefix_>YYYY-MM-DD_HH-MM-SS.log; the
// optional prefix argument replaces the configured one. A previously open
// session file is finalized first, and retention runs for the new directory.
// An empty directory stops file logging and finalizes the current file.
func (l *Logger) SetDirectory(dir string, prefix ...string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("logger is shut down")
	}
	if len(prefix) > 0 {
		l.prefix = strings.TrimSpace(prefix[0])
	}

	if dir == "" {
		var err error
		hadFile := l.sink != nil
		if hadFile {
			err = l.sink.Close(l.snapshotLocked())
			l.sink = nil
		}
		l.directory = ""
		l.mu.Unlock()
		if err != nil {
			return err
		}
		if hadFile {
			l.log(LevelInfo, "File logging disabled.", 3, nil)
		}
		return nil
	}

	name := l.session + logSuffix
	if l.prefix != "" {
		name = l.prefix + "_" + name
	}
	path := filepath.Join(dir, name)

	if l.sink != nil {
		l.sink.Close(l.snapshotLocked())
		l.sink = nil
	}
	sink, err := OpenSink(path)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.sink = sink
	l.directory = dir
	maxLogs := l.maxLogs
	l.mu.Unlock()

	if maxLogs > 0 {
		if _, err := l.retention.Apply(dir, maxLogs); err != nil {
			l.log(LevelWarning, "Log cleanup failed: "+err.Error(), 3, nil)
		}
	}
	l.log(LevelInfo, "File logging enabled. Logs are saved to: "+path, 3, nil)
	return nil
}

// DisableFile stops file logging and finalizes the current session file.
func (l *Logger) DisableFile() error {
	return l.SetDirectory("")
}

// LogFile returns the current session file path, or empty when file logging
// is disabled.
func (l *Logger) LogFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		return ""
	}
	return l.sink.Path()
}

// Session returns the session timestamp embedded in the log file name.
func (l *Logger) Session() string {
	return l.session
}

// SessionID returns the UUID identifying this logging session.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// SetMaxLogs bounds how many rotated log files are retained and immediately
// deletes the oldest files beyond it. Negative values disable retention;
// zero is adjusted to one with a warning so the active file survives.
func (l *Logger) SetMaxLogs(n int) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("logger is shut down")
	}
	if n < 0 {
		l.maxLogs = -1
		l.mu.Unlock()
		return nil
	}
	if n == 0 {
		l.maxLogs = 1
	} else {
		l.maxLogs = n
	}
	dir := l.directory
	l.mu.Unlock()

	if dir == "" {
		return nil
	}
	_, err := l.retention.Apply(dir, n)
	return err
}

// MaxLogs returns the current retention bound, -1 meaning unlimited.
func (l *Logger) MaxLogs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxLogs
}

// EnableConsole turns console output on, optionally including extra fields
// on each line.
func (l *Logger) EnableConsole(showExtra ...bool) {
	extra := false
	if len(showExtra) > 0 {
		extra = showExtra[0]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = newConsoleHandler(os.Stdout, extra)
}

// DisableConsole turns console output off.
func (l *Logger) DisableConsole() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = nil
}

// RegisterProbe adds an exit-time probe under a name derived from its
// function symbol. See ProbeRegistry.Register for the limit semantics.
func (l *Logger) RegisterProbe(fn ProbeFunc, limit ...Level) {
	if fn == nil {
		l.log(LevelWarning, "Attempted to register a nil probe function", 3, nil)
		return
	}
	name := probeName(fn)
	l.mu.Lock()
	l.probes.RegisterNamed(name, fn, limit...)
	l.mu.Unlock()
	l.log(LevelDebug, "Registered exit logging function: "+name, 3, nil)
}

// Probes returns the registry owning the exit-time probe list.
func (l *Logger) Probes() *ProbeRegistry {
	return l.probes
}

// Shutdown runs the registered probes, appends their state to the session
// file and finalizes it. The host application calls it deliberately, or
// wires it to its own signal handling; nothing runs implicitly at process
// exit. Shutdown is idempotent and needs no other subsystem to still be
// alive. Records logged after it returns are dropped.
func (l *Logger) Shutdown() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	probeCount := l.probes.Len()
	level := l.level
	l.mu.Unlock()

	if probeCount > 0 {
		l.log(LevelInfo, "Running registered exit logging functions...", 3, nil)
	}
	// Probes run outside the lock so they may still log.
	entries := l.probes.run(level)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.sink == nil {
		return nil
	}
	for _, entry := range entries {
		l.sink.AppendState(entry)
	}
	return l.sink.Close(l.snapshotLocked())
}

// snapshotLocked captures the diagnostics state written into the finalized
// document. Callers hold l.mu.
func (l *Logger) snapshotLocked() Snapshot {
	return Snapshot{
		Directory: l.directory,
		MaxLogs:   l.maxLogs,
		Level:     l.level,
		Timestamp: l.session,
		Version:   Version,
	}
}

package quick

import (
	"fmt"

	"github.com/arguslabs/argus"
)

// Debug logs a debug message through the default logger.
func Debug(msg string, kv ...any) {
	if l := logger(); l != nil {
		l.LogDepth(argus.LevelDebug, msg, 1, kv...)
	}
}

// Info logs an info message through the default logger.
func Info(msg string, kv ...any) {
	if l := logger(); l != nil {
		l.LogDepth(argus.LevelInfo, msg, 1, kv...)
	}
}

// Warning logs a warning message through the default logger.
func Warning(msg string, kv ...any) {
	if l := logger(); l != nil {
		l.LogDepth(argus.LevelWarning, msg, 1, kv...)
	}
}

// Error logs an error message through the default logger.
func Error(msg string, kv ...any) {
	if l := logger(); l != nil {
		l.LogDepth(argus.LevelError, msg, 1, kv...)
	}
}

// Critical logs a critical message through the default logger.
func Critical(msg string, kv ...any) {
	if l := logger(); l != nil {
		l.LogDepth(argus.LevelCritical, msg, 1, kv...)
	}
}

// Register adds an exit-time probe to the default logger.
func Register(fn argus.ProbeFunc, limit ...argus.Level) {
	if l := logger(); l != nil {
		l.RegisterProbe(fn, limit...)
	}
}

// Config changes the default logger configuration with string statements,
// e.g. quick.Config("level=debug", "directory=./logs"). The default logger
// is rebuilt with the merged configuration; an already open session file is
// finalized first.
func Config(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("no config provided")
	}

	mu.Lock()
	defer mu.Unlock()

	if err := config(args...); err != nil {
		return err
	}

	if instance != nil {
		if err := instance.Shutdown(); err != nil {
			return err
		}
		instance = nil
	}
	disabled = false
	if loggerLocked() == nil {
		return fmt.Errorf("logger initialization failed")
	}
	return nil
}

// Logger exposes the default logger instance, creating it on first use.
func Logger() *argus.Logger {
	return logger()
}

// Shutdown finalizes the default logger's session file and runs its probes.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		_ = instance.Shutdown()
		instance = nil
	}
}

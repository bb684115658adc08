package argus

import (
	"fmt"
	"time"
)

// Timed reports how long a function took, at info level. Use it with defer:
//
//	defer l.Timed("rebuildIndex")()
func (l *Logger) Timed(name string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Seconds()
		l.log(LevelInfo, fmt.Sprintf("Function %s took %.2f seconds", name, elapsed), 3, nil)
	}
}

// Call logs a function call with its arguments at debug level and returns a
// completion func to report the outcome:
//
//	done := l.Call("fetchUser", "id", 42)
//	user, err := fetchUser(42)
//	done(user, err)
//
// The result is logged at debug level, or at error level when err is set.
func (l *Logger) Call(name string, args ...any) func(result any, err error) {
	l.log(LevelDebug, "Calling function: "+name, 3, args)
	return func(result any, err error) {
		if err != nil {
			l.log(LevelError, fmt.Sprintf("Function %s returned an error: %v", name, err), 3, nil)
			return
		}
		l.log(LevelDebug, fmt.Sprintf("Function %s returned", name), 3, []any{"result", result})
	}
}

// Deprecated records a warning that the named function is deprecated.
func (l *Logger) Deprecated(name string, message ...string) {
	msg := "This function is deprecated."
	if len(message) > 0 {
		msg = message[0]
	}
	l.log(LevelWarning, fmt.Sprintf("DEPRECATED: %s: %s", name, msg), 3, nil)
}

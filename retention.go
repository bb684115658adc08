package argus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// logSuffix is the rotated-log filename suffix retention matches on.
const logSuffix = ".log"

// Retention enforces an upper bound on the number of rotated log files kept
// in a directory. File names embed the session timestamp, so ascending name
// order is chronological order and the lexically smallest files are the
// oldest.
type Retention struct {
	report func(level Level, msg string, kv ...any)
}

// NewRetention creates a retention manager. Deletions and adjustments are
// reported through the given hook; a nil hook silences them.
func NewRetention(report func(level Level, msg string, kv ...any)) *Retention {
	return &Retention{report: report}
}

// Apply deletes the oldest rotated log files in dir beyond maxLogs and
// returns how many were removed.
//
// A negative maxLogs disables retention entirely. Zero is treated as one,
// with a single warning notice, so the file currently being written is never
// the one retention destroys. Running Apply again with unchanged inputs
// deletes nothing.
func (r *Retention) Apply(dir string, maxLogs int) (int, error) {
	if maxLogs < 0 {
		return 0, nil
	}
	if maxLogs == 0 {
		r.say(LevelWarning, "Can't set max_logs to 0, setting to 1 instead")
		maxLogs = 1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	var logs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), logSuffix) {
			continue
		}
		logs = append(logs, entry.Name())
	}
	sort.Strings(logs)

	excess := len(logs) - maxLogs
	if excess <= 0 {
		return 0, nil
	}

	deleted := 0
	for _, name := range logs[:excess] {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				// Raced with external cleanup, already gone.
				continue
			}
			return deleted, fmt.Errorf("failed to remove old log file: %w", err)
		}
		deleted++
		r.say(LevelInfo, "Removed old log file: "+path)
	}
	return deleted, nil
}

func (r *Retention) say(level Level, msg string, kv ...any) {
	if r.report != nil {
		r.report(level, msg, kv...)
	}
}

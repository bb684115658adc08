package argus

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

// finalizeAndRead shuts the logger down and returns its finalized document.
func finalizeAndRead(t *testing.T, l *Logger) sinkDoc {
	t.Helper()
	path := l.LogFile()
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}
	return readDoc(t, path)
}

func messageAt(t *testing.T, doc sinkDoc, i int) string {
	t.Helper()
	if i >= len(doc.Logs) {
		t.Fatalf("document has %d logs, want index %d", len(doc.Logs), i)
	}
	msg, _ := doc.Logs[i]["message"].(string)
	return msg
}

func TestTimedReportsDuration(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	func() {
		defer l.Timed("rebuildIndex")()
	}()

	doc := finalizeAndRead(t, l)
	msg := messageAt(t, doc, len(doc.Logs)-1)
	if !regexp.MustCompile(`^Function rebuildIndex took \d+\.\d{2} seconds$`).MatchString(msg) {
		t.Errorf("message = %q", msg)
	}
	if doc.Logs[len(doc.Logs)-1]["level"] != "INFO" {
		t.Errorf("level = %v", doc.Logs[len(doc.Logs)-1]["level"])
	}
}

func TestCallLogsArgumentsAndResult(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	done := l.Call("fetchUser", "id", 42)
	done("alice", nil)

	doc := finalizeAndRead(t, l)
	n := len(doc.Logs)
	if got := messageAt(t, doc, n-2); got != "Calling function: fetchUser" {
		t.Errorf("call message = %q", got)
	}
	if extra := doc.Logs[n-2]["extra_data"].(map[string]any); extra["id"] != float64(42) {
		t.Errorf("call extra = %v", extra)
	}
	if got := messageAt(t, doc, n-1); got != "Function fetchUser returned" {
		t.Errorf("return message = %q", got)
	}
	if extra := doc.Logs[n-1]["extra_data"].(map[string]any); extra["result"] != "alice" {
		t.Errorf("return extra = %v", extra)
	}
}

func TestCallLogsError(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	done := l.Call("fetchUser")
	done(nil, errors.New("connection refused"))

	doc := finalizeAndRead(t, l)
	last := doc.Logs[len(doc.Logs)-1]
	if last["message"] != "Function fetchUser returned an error: connection refused" {
		t.Errorf("message = %v", last["message"])
	}
	if last["level"] != "ERROR" {
		t.Errorf("level = %v", last["level"])
	}
}

func TestDeprecatedDefaultMessage(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	l.Deprecated("oldAPI")
	l.Deprecated("olderAPI", "Use newAPI instead.")

	doc := finalizeAndRead(t, l)
	n := len(doc.Logs)
	if got := messageAt(t, doc, n-2); got != "DEPRECATED: oldAPI: This function is deprecated." {
		t.Errorf("message = %q", got)
	}
	if got := messageAt(t, doc, n-1); got != "DEPRECATED: olderAPI: Use newAPI instead." {
		t.Errorf("message = %q", got)
	}
	if doc.Logs[n-1]["level"] != "WARNING" {
		t.Errorf("level = %v", doc.Logs[n-1]["level"])
	}
}

func TestInstrumentationCallerAttribution(t *testing.T) {
	l, _ := newFileLogger(t, nil)
	done := l.Call("op")
	done(nil, nil)

	doc := finalizeAndRead(t, l)
	for _, entry := range doc.Logs {
		msg, _ := entry["message"].(string)
		if !strings.Contains(msg, "op") {
			continue
		}
		if mod, _ := entry["caller_module"].(string); !strings.HasSuffix(mod, "instrument_test.go") {
			t.Errorf("%q attributed to %v", msg, entry["caller_module"])
		}
	}
}

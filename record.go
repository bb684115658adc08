package argus

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// callerUnknown is the sentinel written when caller attribution is missing.
const callerUnknown = "unknown"

// Record is one structured log event. It is created once per log call, handed
// to the sink by value and never shared afterwards.
type Record struct {
	Time         time.Time
	Level        Level
	Message      string
	CallerModule string
	CallerFunc   string
	CallerLine   int
	Logger       string
	Extra        *Fields
}

// StateEntry is the captured output of one exit-time probe.
// The "object" key identifies the owning probe and is always present, though
// a probe may overwrite its value with a field of its own.
type StateEntry struct {
	fields *Fields
}

// NewStateEntry creates a state entry for the named probe or object.
func NewStateEntry(object string) *StateEntry {
	f := NewFields()
	f.setValue("object", Value{kind: kindString, str: object})
	return &StateEntry{fields: f}
}

// Set stores a probe field on the entry. It returns false when the value is
// outside the loggable set; the entry keeps its other fields.
func (e *StateEntry) Set(key string, v any) bool {
	return e.fields.Set(key, v)
}

// Object returns the entry's owning object name.
func (e *StateEntry) Object() string {
	v, _ := e.fields.Get("object")
	return v.str
}

// Snapshot is the diagnostics configuration written once at close time.
type Snapshot struct {
	Directory string // empty is persisted as null
	MaxLogs   int
	Level     Level
	Timestamp string
	Version   string
}

// callerInfo resolves the log call site skip frames above it. The source path
// is reported relative to the working directory when possible, matching how
// call sites are usually read during debugging.
func callerInfo(skip int) (module string, fn string, line int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return callerUnknown, callerUnknown, 0
	}

	module = file
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, file); err == nil {
			module = rel
		}
	}
	module = filepath.ToSlash(module)

	fn = callerUnknown
	if f := runtime.FuncForPC(pc); f != nil {
		fn = funcBaseName(f.Name())
	}
	return module, fn, line
}

// funcBaseName reduces a fully qualified symbol like
// "github.com/acme/app/web.(*Server).Start" to the bare function name.
func funcBaseName(name string) string {
	name = name[strings.LastIndexByte(name, '/')+1:]
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

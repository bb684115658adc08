package argus

import (
	"reflect"
	"runtime"
	"strings"
)

// ProbeFunc captures a piece of program state for the shutdown report.
// It may return a string (stored under a "message" key), a *Fields mapping,
// or a map[string]any; field values outside the loggable set are dropped
// per key.
type ProbeFunc func() any

type probe struct {
	name  string
	limit Level
	fn    ProbeFunc
}

// ProbeRegistry owns the list of exit-time probes. Probes run exactly once,
// when the owning Logger shuts down, and their output becomes the state
// array of the finalized log file.
type ProbeRegistry struct {
	probes []probe
}

// NewProbeRegistry returns an empty registry.
func NewProbeRegistry() *ProbeRegistry {
	return &ProbeRegistry{}
}

// Register adds a probe under a name derived from its function symbol;
// methods register under their receiver's type name. The optional limit
// gates the probe on the logger level at shutdown time: a probe limited to
// LevelDebug (the default) always runs, one limited to LevelCritical runs
// only when the logger level is critical or above.
func (r *ProbeRegistry) Register(fn ProbeFunc, limit ...Level) {
	r.RegisterNamed(probeName(fn), fn, limit...)
}

// RegisterNamed adds a probe under an explicit object name.
func (r *ProbeRegistry) RegisterNamed(name string, fn ProbeFunc, limit ...Level) {
	if fn == nil {
		return
	}
	l := LevelDebug
	if len(limit) > 0 {
		l = limit[0]
	}
	r.probes = append(r.probes, probe{name: name, limit: l, fn: fn})
}

// Len reports the number of registered probes.
func (r *ProbeRegistry) Len() int {
	return len(r.probes)
}

// run invokes every probe whose limit permits it at the given logger level
// and converts the outputs to state entries in registration order.
func (r *ProbeRegistry) run(level Level) []*StateEntry {
	var entries []*StateEntry
	for _, p := range r.probes {
		if p.limit > level {
			continue
		}

		entry := NewStateEntry(p.name)
		switch out := p.fn().(type) {
		case nil:
		case string:
			entry.Set("message", out)
		case *Fields:
			if out != nil {
				for _, nv := range out.fields {
					entry.fields.setValue(nv.key, nv.val)
				}
			}
		case map[string]any:
			if v, ok := coerceStringMap(out); ok {
				for _, nv := range v.obj.fields {
					entry.fields.setValue(nv.key, nv.val)
				}
			}
		default:
			entry.Set("value", out)
		}
		entries = append(entries, entry)
	}
	return entries
}

// probeName derives an object name from a probe's function symbol.
// "pkg.collectStats" yields "collectStats"; a method value such as
// "pkg.(*Server).Stats-fm" yields "Server", mirroring how a probe attached
// to an object is reported under that object's name.
func probeName(fn ProbeFunc) string {
	if fn == nil {
		return callerUnknown
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return callerUnknown
	}

	name := f.Name()
	name = name[strings.LastIndexByte(name, '/')+1:]
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 0:
		return callerUnknown
	case 1:
		return parts[0]
	case 2:
		return strings.TrimSuffix(parts[1], "-fm")
	default:
		// Method or nested function: the enclosing type or function
		// identifies the object.
		return strings.Trim(parts[1], "(*)")
	}
}

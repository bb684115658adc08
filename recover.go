package argus

import (
	"bytes"
	"fmt"
	"os"

	"github.com/valyala/fastjson"
)

// Recovered is the content read back from a session log file.
// Clean reports whether the file parsed as-is; false means the session never
// closed and the logs were recovered by truncate-and-repair, in which case
// State and Diagnostics are empty.
type Recovered struct {
	Clean       bool
	Logs        []RecoveredRecord
	State       []map[string]any
	Diagnostics map[string]any
}

// RecoveredRecord is one log record read back from a session file.
type RecoveredRecord struct {
	Timestamp    string
	Level        string
	Message      string
	CallerModule string
	CallerFunc   string
	CallerLine   int
	Logger       string
	Extra        map[string]any
}

// Recover reads a session log file. A cleanly finalized file parses directly.
// A file from a crashed session, left with an unterminated logs array, is
// repaired by keeping every complete array element and synthesizing the
// closing structure. The repair is best-effort by design; only the logs
// array is recoverable from a crashed session.
func Recover(path string) (*Recovered, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var p fastjson.Parser
	clean := true
	v, err := p.ParseBytes(data)
	if err != nil {
		clean = false
		repaired := repairTruncated(data)
		if repaired == nil {
			return nil, fmt.Errorf("failed to repair log file: %w", err)
		}
		v, err = p.ParseBytes(repaired)
		if err != nil {
			return nil, fmt.Errorf("failed to repair log file: %w", err)
		}
	}

	out := &Recovered{Clean: clean}
	for _, lv := range v.GetArray("logs") {
		rec := RecoveredRecord{
			Timestamp:    string(lv.GetStringBytes("timestamp")),
			Level:        string(lv.GetStringBytes("level")),
			Message:      string(lv.GetStringBytes("message")),
			CallerModule: string(lv.GetStringBytes("caller_module")),
			CallerFunc:   string(lv.GetStringBytes("caller_func")),
			CallerLine:   lv.GetInt("caller_lineno"),
			Logger:       string(lv.GetStringBytes("logger")),
		}
		if ed := lv.Get("extra_data"); ed != nil {
			if m, ok := fastjsonToAny(ed).(map[string]any); ok {
				rec.Extra = m
			}
		}
		out.Logs = append(out.Logs, rec)
	}
	for _, sv := range v.GetArray("state") {
		if m, ok := fastjsonToAny(sv).(map[string]any); ok {
			out.State = append(out.State, m)
		}
	}
	if dv := v.Get("diagnostics_state"); dv != nil {
		if m, ok := fastjsonToAny(dv).(map[string]any); ok {
			out.Diagnostics = m
		}
	}
	return out, nil
}

// repairTruncated rebuilds a parseable document from a crashed session file.
// It scans the bytes after the logs-array header, keeping everything up to
// the end of the last structurally complete element, then closes the arrays
// and the outer object. Returns nil when the file does not start with the
// sink header.
func repairTruncated(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte(sinkHeader)) {
		return nil
	}
	body := data[len(sinkHeader):]

	depth := 0
	inString := false
	escaped := false
	lastGood := 0

scan:
	for i := 0; i < len(body); i++ {
		c := body[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 && c == '}' {
				lastGood = i + 1
			}
			if depth < 0 {
				// The logs array itself closed; the crash happened
				// mid-finalization and every element is already kept.
				break scan
			}
		}
	}

	out := make([]byte, 0, len(sinkHeader)+lastGood+64)
	out = append(out, sinkHeader...)
	out = append(out, body[:lastGood]...)
	if lastGood > 0 {
		out = append(out, '\n')
	}
	out = append(out, "],\n\"state\": [],\n\"diagnostics_state\": null\n}\n"...)
	return out
}

// fastjsonToAny converts a parsed value into plain Go data.
func fastjsonToAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return string(b)
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		arr, _ := v.Array()
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			out = append(out, fastjsonToAny(elem))
		}
		return out
	case fastjson.TypeObject:
		obj, _ := v.Object()
		out := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, val *fastjson.Value) {
			out[string(key)] = fastjsonToAny(val)
		})
		return out
	default:
		return nil
	}
}

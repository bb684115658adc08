package argus

import (
	"fmt"
	"strconv"
	"time"
)

// serializer manages the buffered writing of records, state entries and the
// diagnostics snapshot as JSON.
type serializer struct {
	buf []byte
}

// newSerializer creates a serializer instance to be used by the sink.
func newSerializer() *serializer {
	return &serializer{
		buf: make([]byte, 0, 1024),
	}
}

// reset clears the serializer buffer for reuse.
func (s *serializer) reset() {
	s.buf = s.buf[:0]
}

// serializeRecord converts a log record to a single JSON object.
// Absent caller fields are replaced by the "unknown"/0 sentinels and the
// extra_data key is emitted only when at least one field survived coercion.
func (s *serializer) serializeRecord(rec Record) []byte {
	s.reset()

	s.buf = append(s.buf, `{"timestamp":`...)
	s.appendString(rec.Time.Format(time.RFC3339Nano))

	s.buf = append(s.buf, `,"level":`...)
	s.appendString(rec.Level.String())

	s.buf = append(s.buf, `,"message":`...)
	s.appendString(rec.Message)

	s.buf = append(s.buf, `,"caller_module":`...)
	s.appendString(orUnknown(rec.CallerModule))

	s.buf = append(s.buf, `,"caller_func":`...)
	s.appendString(orUnknown(rec.CallerFunc))

	s.buf = append(s.buf, `,"caller_lineno":`...)
	s.buf = strconv.AppendInt(s.buf, int64(rec.CallerLine), 10)

	s.buf = append(s.buf, `,"logger":`...)
	s.appendString(rec.Logger)

	if rec.Extra.Len() > 0 {
		s.buf = append(s.buf, `,"extra_data":`...)
		s.appendFields(rec.Extra)
	}

	s.buf = append(s.buf, '}')
	return s.buf
}

// serializeState converts a buffered state entry to a JSON object.
func (s *serializer) serializeState(entry *StateEntry) []byte {
	s.reset()
	s.appendFields(entry.fields)
	return s.buf
}

// serializeSnapshot converts the diagnostics snapshot to a JSON object.
// Key names are part of the persisted file format.
func (s *serializer) serializeSnapshot(snap Snapshot) []byte {
	s.reset()

	s.buf = append(s.buf, `{"log_directory": `...)
	if snap.Directory == "" {
		s.buf = append(s.buf, "null"...)
	} else {
		s.appendString(snap.Directory)
	}

	s.buf = append(s.buf, `, "max_logs": `...)
	s.buf = strconv.AppendInt(s.buf, int64(snap.MaxLogs), 10)

	s.buf = append(s.buf, `, "log_level": `...)
	s.buf = strconv.AppendInt(s.buf, int64(snap.Level), 10)

	s.buf = append(s.buf, `, "log_level_name": `...)
	s.appendString(snap.Level.String())

	s.buf = append(s.buf, `, "timestamp": `...)
	s.appendString(snap.Timestamp)

	s.buf = append(s.buf, `, "diagnostics_version": `...)
	s.appendString(snap.Version)

	s.buf = append(s.buf, '}')
	return s.buf
}

// appendValue writes the JSON representation of a loggable value.
func (s *serializer) appendValue(v Value) {
	switch v.kind {
	case kindNull:
		s.buf = append(s.buf, "null"...)
	case kindString:
		s.appendString(v.str)
	case kindInt:
		s.buf = strconv.AppendInt(s.buf, v.i, 10)
	case kindFloat:
		s.buf = strconv.AppendFloat(s.buf, v.f, 'f', -1, 64)
	case kindBool:
		s.buf = strconv.AppendBool(s.buf, v.b)
	case kindList:
		s.buf = append(s.buf, '[')
		for i, elem := range v.list {
			if i > 0 {
				s.buf = append(s.buf, ',')
			}
			s.appendValue(elem)
		}
		s.buf = append(s.buf, ']')
	case kindMap:
		s.appendFields(v.obj)
	}
}

// appendFields writes an ordered mapping as a JSON object.
func (s *serializer) appendFields(f *Fields) {
	s.buf = append(s.buf, '{')
	if f != nil {
		for i, nv := range f.fields {
			if i > 0 {
				s.buf = append(s.buf, ',')
			}
			s.appendString(nv.key)
			s.buf = append(s.buf, ':')
			s.appendValue(nv.val)
		}
	}
	s.buf = append(s.buf, '}')
}

// appendString writes a quoted JSON string. Only quotes, backslashes and
// control characters are escaped; non-ASCII text is preserved verbatim as
// UTF-8 in the output file.
func (s *serializer) appendString(str string) {
	s.buf = append(s.buf, '"')
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch {
		case c == '"' || c == '\\':
			s.buf = append(s.buf, '\\', c)
		case c == '\n':
			s.buf = append(s.buf, '\\', 'n')
		case c == '\r':
			s.buf = append(s.buf, '\\', 'r')
		case c == '\t':
			s.buf = append(s.buf, '\\', 't')
		case c < 0x20:
			s.buf = append(s.buf, fmt.Sprintf(`\u%04x`, c)...)
		default:
			s.buf = append(s.buf, c)
		}
	}
	s.buf = append(s.buf, '"')
}

// appendText writes the human-readable form of a value for console output.
// Strings are written bare, containers keep their JSON shape.
func (s *serializer) appendText(v Value) {
	switch v.kind {
	case kindString:
		s.buf = append(s.buf, v.str...)
	default:
		s.appendValue(v)
	}
}

func orUnknown(v string) string {
	if v == "" {
		return callerUnknown
	}
	return v
}

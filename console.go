package argus

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// ANSI sequences for console level coloring.
const (
	ansiReset   = "\x1b[0m"
	ansiCyan    = "\x1b[36m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiRed     = "\x1b[31m"
	ansiBoldRed = "\x1b[1;31m"
)

// consoleHandler renders records as single human-readable lines:
//
//	15:04:05 [LEVEL] module.func:lineno - message [key=value, ...]
//
// The extras suffix is included only when enabled. Level names are colored
// when the writer is a terminal.
type consoleHandler struct {
	w         io.Writer
	ser       *serializer
	color     bool
	showExtra bool
}

func newConsoleHandler(w io.Writer, showExtra bool) *consoleHandler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &consoleHandler{
		w:         w,
		ser:       newSerializer(),
		color:     color,
		showExtra: showExtra,
	}
}

func (h *consoleHandler) write(rec Record) {
	s := h.ser
	s.reset()

	s.buf = append(s.buf, rec.Time.Format("15:04:05")...)
	s.buf = append(s.buf, " ["...)
	if h.color {
		s.buf = append(s.buf, levelColor(rec.Level)...)
		s.buf = append(s.buf, rec.Level.String()...)
		s.buf = append(s.buf, ansiReset...)
	} else {
		s.buf = append(s.buf, rec.Level.String()...)
	}
	s.buf = append(s.buf, "] "...)

	s.buf = append(s.buf, orUnknown(rec.CallerModule)...)
	s.buf = append(s.buf, '.')
	s.buf = append(s.buf, orUnknown(rec.CallerFunc)...)
	s.buf = append(s.buf, ':')
	s.buf = strconv.AppendInt(s.buf, int64(rec.CallerLine), 10)
	s.buf = append(s.buf, " - "...)
	s.buf = append(s.buf, rec.Message...)

	if h.showExtra && rec.Extra.Len() > 0 {
		s.buf = append(s.buf, " ["...)
		for i, nv := range rec.Extra.fields {
			if i > 0 {
				s.buf = append(s.buf, ", "...)
			}
			s.buf = append(s.buf, nv.key...)
			s.buf = append(s.buf, '=')
			s.appendText(nv.val)
		}
		s.buf = append(s.buf, ']')
	}

	s.buf = append(s.buf, '\n')
	h.w.Write(s.buf)
}

func levelColor(l Level) string {
	switch l {
	case LevelDebug:
		return ansiCyan
	case LevelInfo:
		return ansiGreen
	case LevelWarning:
		return ansiYellow
	case LevelError:
		return ansiRed
	case LevelCritical:
		return ansiBoldRed
	default:
		return ""
	}
}

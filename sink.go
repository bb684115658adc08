package argus

import (
	"fmt"
	"os"
	"path/filepath"
)

// sinkHeader is the partial marker written at open time. Everything appended
// afterwards extends the logs array it starts.
const sinkHeader = `{"logs": [`

// Sink writes log records to a single session file incrementally and
// assembles the final JSON document on Close. While the sink is open the file
// holds an unterminated logs array; this is the documented trade-off for not
// rewriting the whole document on every append. A reader that finds such a
// file after a crash should use Recover, which repairs it best-effort.
//
// A Sink has no internal locking. It is driven by one caller at a time, which
// in this package is the Logger holding its own mutex around every log call.
type Sink struct {
	file   *os.File
	path   string
	ser    *serializer
	out    []byte
	logs   int
	states []*StateEntry
	closed bool
}

// OpenSink creates the session file at path, truncating any previous content,
// and writes the opening of the logs array. Parent directories are created
// when missing. The returned sink owns the file handle until Close.
func OpenSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if _, err := file.WriteString(sinkHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write log file header: %w", err)
	}

	return &Sink{
		file: file,
		path: path,
		ser:  newSerializer(),
	}, nil
}

// Append serializes rec and writes it as the next element of the logs array.
// Each call produces exactly one write; records are complete on disk as soon
// as Append returns, durability is guaranteed no later than Close.
func (s *Sink) Append(rec Record) error {
	if s.closed || s.file == nil {
		return fmt.Errorf("sink is closed")
	}

	data := s.ser.serializeRecord(rec)

	// Separator and record go out in a single write so no reader ever
	// observes a partially written element.
	sep := "\n"
	if s.logs > 0 {
		sep = ",\n"
	}
	s.out = append(s.out[:0], sep...)
	s.out = append(s.out, data...)
	if _, err := s.file.Write(s.out); err != nil {
		return fmt.Errorf("failed to write log record: %w", err)
	}

	s.logs++
	return nil
}

// AppendState buffers an exit-time state entry. Entries are few (one per
// registered probe) and only known after the last record, so they are held in
// memory and written by Close in arrival order.
func (s *Sink) AppendState(entry *StateEntry) {
	if s.closed || entry == nil {
		return
	}
	s.states = append(s.states, entry)
}

// Close terminates the logs array, writes the buffered state entries and the
// diagnostics snapshot, then syncs and releases the file. The file is a
// complete JSON document once Close returns and is never written to again.
// A second Close is a no-op.
func (s *Sink) Close(snap Snapshot) error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.file == nil {
		return nil
	}
	defer func() {
		s.file.Close()
		s.file = nil
	}()

	var tail []byte
	if s.logs > 0 {
		tail = append(tail, '\n')
	}
	tail = append(tail, "],\n\"state\": ["...)
	for i, entry := range s.states {
		if i > 0 {
			tail = append(tail, ',')
		}
		tail = append(tail, '\n')
		tail = append(tail, s.ser.serializeState(entry)...)
	}
	if len(s.states) > 0 {
		tail = append(tail, '\n')
	}
	tail = append(tail, "],\n\"diagnostics_state\": "...)
	tail = append(tail, s.ser.serializeSnapshot(snap)...)
	tail = append(tail, "\n}\n"...)

	if _, err := s.file.Write(tail); err != nil {
		return fmt.Errorf("failed to finalize log file: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return nil
}

// Path returns the session file path.
func (s *Sink) Path() string {
	return s.path
}

// Logs returns the number of records appended since the file was opened.
func (s *Sink) Logs() int {
	return s.logs
}

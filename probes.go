package argus

import (
	"os"
	"runtime"

	"github.com/pbnjay/memory"
)

// RuntimeState is a ready-made probe reporting scheduler and memory figures
// at shutdown. Register it directly or let Config.SystemProbes do so.
func RuntimeState() any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	f := NewFields()
	f.Set("goroutines", runtime.NumGoroutine())
	f.Set("gomaxprocs", runtime.GOMAXPROCS(0))
	f.Set("heap_alloc_bytes", ms.HeapAlloc)
	f.Set("heap_sys_bytes", ms.HeapSys)
	f.Set("gc_cycles", ms.NumGC)
	f.Set("system_total_bytes", memory.TotalMemory())
	f.Set("system_free_bytes", memory.FreeMemory())
	return f
}

// processState reports process identity, including the session UUID that
// ties the log file to this run.
func (l *Logger) processState() any {
	hostname, _ := os.Hostname()

	f := NewFields()
	f.Set("pid", os.Getpid())
	f.Set("hostname", hostname)
	f.Set("go_version", runtime.Version())
	f.Set("session_id", l.sessionID)
	f.Set("session", l.session)
	return f
}

// Package argus provides a diagnostics and logging system with leveled
// console output and structured JSON session files.
//
// Features:
//   - Five ordered log levels with caller attribution on every record
//   - Incremental JSON session files finalized into a single document
//     holding the logs, exit-time state and a diagnostics snapshot
//   - Exit-time probe registration reporting program state at shutdown
//   - Retention of a bounded number of rotated log files
//   - Best-effort recovery of files left behind by crashed sessions
//   - Human-readable console output with optional extra fields and color
//   - Timing, call and deprecation instrumentation helpers
//   - Configuration via TOML or JSON files
//
// A session file is valid JSON only after Shutdown (or SetDirectory(""))
// finalizes it; a process that dies first leaves an unterminated logs array
// behind, which Recover reads back best-effort.
package argus

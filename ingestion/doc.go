// Package ingestion turns knowledge sources into embedded chunk rows.
//
// A source's text (inline, or fetched and extracted for file-backed sources)
// is split into fixed overlapping rune windows, each window is embedded, and
// the resulting rows replace the source's previous chunk set. Runs can be
// executed synchronously or detached onto a worker pool; detached runs are
// fire-and-forget, with failures logged and progress observable through the
// repository.
package ingestion

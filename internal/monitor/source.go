package monitor

// Source is one monitored tool family. Each implementation knows how to
// discover that tool's on-disk session artifacts and fold classified
// observations into the poll's registry.
//
// The set of sources is closed: the monitor builds the variants it knows
// about from the settings flags on every poll. Implementations must be safe
// to run concurrently with other sources (the registry serializes writes),
// but a single source is never scanned twice within one poll.
type Source interface {
	// Name returns the short lowercase identifier used in agent keys,
	// e.g. "opencode", "codex".
	Name() string

	// Scan walks the source's data and emits observations into reg. A
	// missing or unreadable data root contributes zero observations and
	// is not an error; individual malformed files, rows, or lines are
	// skipped. The returned error covers only scan-level failures worth
	// reporting on the source's health.
	Scan(reg *Registry) error
}

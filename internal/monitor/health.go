package monitor

import (
	"sync"
	"time"
)

type SourceHealthStatus string

const (
	StatusHealthy SourceHealthStatus = "healthy"
	StatusFailed  SourceHealthStatus = "failed"
)

// sourceHealth tracks consecutive scan failures for a single source.
// Fields are protected by mu because polls write them while the health
// endpoint reads them.
type sourceHealth struct {
	mu           sync.Mutex
	scanFailures int
	lastErr      string
	lastFail     time.Time
}

func newSourceHealth() *sourceHealth {
	return &sourceHealth{}
}

func (h *sourceHealth) recordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scanFailures = 0
	h.lastErr = ""
}

func (h *sourceHealth) recordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scanFailures++
	h.lastErr = err.Error()
	h.lastFail = time.Now()
}

// snapshot returns a consistent copy of the health fields under the lock.
func (h *sourceHealth) snapshot(threshold int) (status SourceHealthStatus, failures int, lastErr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	status = StatusHealthy
	if h.scanFailures >= threshold {
		status = StatusFailed
	}
	return status, h.scanFailures, h.lastErr
}

// SourceHealthView is the wire form of one source's scan health.
type SourceHealthView struct {
	Source    string             `json:"source"`
	Status    SourceHealthStatus `json:"status"`
	Failures  int                `json:"failures"`
	LastError string             `json:"last_error,omitempty"`
}

package monitor

import (
	"log"
	"sync"

	"github.com/pixel-agents/backend/internal/config"
	"github.com/pixel-agents/backend/internal/settings"
)

// TickPayload is everything one poll produces.
type TickPayload struct {
	Snapshot      Snapshot       `json:"snapshot"`
	Notifications []Notification `json:"notifications"`
}

// Monitor runs the poll pipeline: scan sources, merge observations, age,
// snapshot, and diff notifications. The previous poll's key-to-state table
// is the only state carried between polls; mu serializes entire polls so
// overlapping callers never interleave partial snapshots.
type Monitor struct {
	mu     sync.Mutex
	cfg    *config.Config
	prev   map[string]string
	health map[string]*sourceHealth
}

func NewMonitor(cfg *config.Config) *Monitor {
	return &Monitor{
		cfg:  cfg,
		prev: make(map[string]string),
		health: map[string]*sourceHealth{
			"opencode": newSourceHealth(),
			"codex":    newSourceHealth(),
		},
	}
}

// Tick runs one poll and returns its snapshot and notifications. A disabled
// monitor yields an empty snapshot and clears the notification table.
func (m *Monitor) Tick() TickPayload {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := settings.ReadMonitorSettings()
	if !st.Enabled {
		// The table survives disabled ticks so re-enabling does not
		// re-notify agents that were already done or errored.
		return TickPayload{
			Snapshot: Snapshot{Agents: []AgentView{}, NowMS: nowMS()},
		}
	}

	reg := NewRegistry(m.cfg.Monitor.MaxRecentEvents)

	var sources []Source
	if st.EnableOpencode {
		sources = append(sources, NewOpenCodeSource(m.cfg.Monitor))
	}
	if st.EnableCodex {
		sources = append(sources, NewCodexSource(m.cfg.Monitor))
	}

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			if err := src.Scan(reg); err != nil {
				log.Printf("[%s] scan: %v", src.Name(), err)
				m.health[src.Name()].recordFailure(err)
				return
			}
			m.health[src.Name()].recordSuccess()
		}(src)
	}
	wg.Wait()

	if !st.EnableClaude {
		reg.Retain(func(a *Agent) bool {
			return normalizeSourceName(a.Source) != "claude"
		})
	}

	agents := reg.Agents()

	// Operator-recorded bindings fill repo paths the scanners could not
	// recover.
	bindings := settings.ReadRepoBindings()
	for _, a := range agents {
		if a.RepoPath == "" {
			a.RepoPath = bindings[a.Key]
		}
	}

	attachPIDs(agents)

	snapshot := buildSnapshot(agents, nowMS(),
		m.cfg.Monitor.IdleAfter.Milliseconds(),
		m.cfg.Monitor.DoneAfter.Milliseconds())

	notifications, next := diffNotifications(snapshot.Agents, m.prev)
	m.prev = next

	return TickPayload{Snapshot: snapshot, Notifications: notifications}
}

// Health reports per-source scan health in a stable order.
func (m *Monitor) Health() []SourceHealthView {
	threshold := m.cfg.Monitor.HealthWarningThreshold
	out := make([]SourceHealthView, 0, len(m.health))
	for _, name := range []string{"opencode", "codex"} {
		h, ok := m.health[name]
		if !ok {
			continue
		}
		status, failures, lastErr := h.snapshot(threshold)
		out = append(out, SourceHealthView{
			Source:    name,
			Status:    status,
			Failures:  failures,
			LastError: lastErr,
		})
	}
	return out
}

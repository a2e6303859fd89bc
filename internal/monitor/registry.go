package monitor

import (
	"sync"
)

// Event is one classified observation retained in an agent's recent history,
// newest first.
type Event struct {
	TSMs         int64    `json:"ts_ms"`
	Type         string   `json:"type"`
	StateHint    string   `json:"state_hint"`
	Text         string   `json:"text,omitempty"`
	FilesTouched []string `json:"files_touched"`
}

// Observation is a single classified fact about a session produced by a
// scanner during one poll.
type Observation struct {
	Source    string
	SessionID string
	Name      string
	State     string
	Text      string
	RepoPath  string
	EventType string
	TSMs      int64
}

// Agent is the merged view of one session within a poll.
type Agent struct {
	Key       string
	Source    string
	SessionID string
	Name      string
	State     string
	LastTSMs  int64
	LastText  string
	RepoPath  string
	PID       int32
	Events    []Event
}

// Registry accumulates observations for one poll, merging them per agent
// key. Scanners for distinct sources may feed it concurrently.
type Registry struct {
	mu        sync.Mutex
	agents    map[string]*Agent
	maxEvents int
}

func NewRegistry(maxEvents int) *Registry {
	return &Registry{
		agents:    make(map[string]*Agent),
		maxEvents: maxEvents,
	}
}

// Observe merges one observation. The first observation for a key creates
// the agent; later ones only advance its scalar fields when not older than
// what is already recorded, so replays and out-of-order reads are harmless.
// Empty text, name, and repo path never erase known values. The observation
// is always added to the event history regardless of age.
func (r *Registry) Observe(o Observation) {
	key := o.Source + ":" + o.SessionID

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[key]
	if !ok {
		a = &Agent{
			Key:       key,
			Source:    o.Source,
			SessionID: o.SessionID,
			Name:      o.Name,
			State:     o.State,
			LastTSMs:  o.TSMs,
			LastText:  o.Text,
			RepoPath:  o.RepoPath,
		}
		r.agents[key] = a
	} else {
		if a.RepoPath == "" {
			a.RepoPath = o.RepoPath
		}
		if a.Name == "" {
			a.Name = o.Name
		}
		if o.TSMs >= a.LastTSMs {
			a.LastTSMs = o.TSMs
			a.State = o.State
			if o.Text != "" {
				a.LastText = o.Text
			}
			if o.Name != "" {
				a.Name = o.Name
			}
			if o.RepoPath != "" {
				a.RepoPath = o.RepoPath
			}
		}
	}

	ev := Event{
		TSMs:         o.TSMs,
		Type:         o.EventType,
		StateHint:    o.State,
		Text:         o.Text,
		FilesTouched: []string{},
	}
	a.Events = append(a.Events, Event{})
	copy(a.Events[1:], a.Events)
	a.Events[0] = ev
	if r.maxEvents > 0 && len(a.Events) > r.maxEvents {
		a.Events = a.Events[:r.maxEvents]
	}
}

// Get returns the agent for key, or nil.
func (r *Registry) Get(key string) *Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agents[key]
}

// Agents returns all merged agents in unspecified order.
func (r *Registry) Agents() []*Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// Retain drops agents for which keep returns false.
func (r *Registry) Retain(keep func(*Agent) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, a := range r.agents {
		if !keep(a) {
			delete(r.agents, key)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}

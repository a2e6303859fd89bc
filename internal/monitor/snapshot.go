package monitor

import (
	"sort"
)

// Alert is a per-agent problem surfaced in the snapshot. Currently only
// error-state agents synthesize one.
type Alert struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	TSMs    int64  `json:"ts_ms"`
}

// AgentView is the wire form of one merged agent.
type AgentView struct {
	Key          string   `json:"key"`
	Source       string   `json:"source"`
	SessionID    string   `json:"session_id"`
	DisplayName  string   `json:"display_name"`
	State        string   `json:"state"`
	LastTSMs     int64    `json:"last_ts_ms"`
	LastText     string   `json:"last_text"`
	RepoPath     string   `json:"repo_path"`
	PID          int32    `json:"pid,omitempty"`
	FilesTouched []string `json:"files_touched"`
	Alerts       []Alert  `json:"alerts"`
	RecentEvents []Event  `json:"recent_events"`
}

// Summary holds the snapshot's aggregate counters.
type Summary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Waiting   int `json:"waiting"`
	Done      int `json:"done"`
	Error     int `json:"error"`
	PRPending int `json:"pr_pending"`
	Alerts    int `json:"alerts"`
}

// Snapshot is one poll's complete output, rebuilt from scratch every poll.
type Snapshot struct {
	Summary Summary     `json:"summary"`
	Agents  []AgentView `json:"agents"`
	NowMS   int64       `json:"now_ms"`
}

// Notification is an edge-triggered alert for a terminal state transition.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Key     string `json:"key"`
}

// ageAgent demotes agents that have gone quiet. Active states fall to idle
// after idleAfterMS of silence, and idle falls to done after doneAfterMS,
// so an agent past both thresholds lands on done within a single poll.
// Placeholder texts are rewritten to match the demoted state.
func ageAgent(a *Agent, nowMS, idleAfterMS, doneAfterMS int64) {
	silence := nowMS - a.LastTSMs

	if silence > idleAfterMS {
		switch a.State {
		case StateRunning, StateThinking, StateWaiting:
			a.State = StateIdle
			if a.LastText == "Thinking" {
				a.LastText = "Idle"
			}
		}
	}
	if silence > doneAfterMS && a.State == StateIdle {
		a.State = StateDone
		switch a.LastText {
		case "", "Idle", "Thinking":
			a.LastText = "No recent activity"
		}
	}
}

// buildSnapshot ages the merged agents, derives their wire views ordered by
// recency, and computes the summary counters.
func buildSnapshot(agents []*Agent, nowMS, idleAfterMS, doneAfterMS int64) Snapshot {
	views := make([]AgentView, 0, len(agents))
	var summary Summary

	for _, a := range agents {
		ageAgent(a, nowMS, idleAfterMS, doneAfterMS)

		view := AgentView{
			Key:          a.Key,
			Source:       normalizeSourceName(a.Source),
			SessionID:    a.SessionID,
			DisplayName:  formatAgentDisplayName(a.Source, a.SessionID, a.Name, a.RepoPath),
			State:        a.State,
			LastTSMs:     a.LastTSMs,
			LastText:     a.LastText,
			RepoPath:     a.RepoPath,
			PID:          a.PID,
			FilesTouched: []string{},
			Alerts:       []Alert{},
			RecentEvents: a.Events,
		}
		if view.RecentEvents == nil {
			view.RecentEvents = []Event{}
		}

		switch a.State {
		case StateRunning, StateThinking:
			summary.Active++
		case StateWaiting:
			summary.Waiting++
		case StateDone:
			summary.Done++
		case StateError:
			summary.Error++
			message := a.LastText
			if message == "" {
				message = "Error detected"
			}
			view.Alerts = append(view.Alerts, Alert{
				Kind:    "error",
				Message: message,
				TSMs:    a.LastTSMs,
			})
		}
		summary.Alerts += len(view.Alerts)

		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].LastTSMs > views[j].LastTSMs
	})
	summary.Total = len(views)

	return Snapshot{
		Summary: summary,
		Agents:  views,
		NowMS:   nowMS,
	}
}

// diffNotifications emits one notification per agent whose state first
// became done or error since the previous poll, and returns the new
// key-to-state table that replaces the old one wholesale.
func diffNotifications(views []AgentView, prev map[string]string) ([]Notification, map[string]string) {
	next := make(map[string]string, len(views))
	var out []Notification

	for _, v := range views {
		next[v.Key] = v.State

		if v.State != StateDone && v.State != StateError {
			continue
		}
		if old, ok := prev[v.Key]; ok && old == v.State {
			continue
		}

		title := "Agent done"
		kind := "done"
		fallback := "Completed"
		if v.State == StateError {
			title = "Agent error"
			kind = "error"
			fallback = "Error"
		}
		text := v.LastText
		if text == "" {
			text = fallback
		}
		out = append(out, Notification{
			Title:   title,
			Message: v.DisplayName + " - " + text,
			Kind:    kind,
			Key:     v.Key,
		})
	}
	return out, next
}

package monitor

import (
	"path/filepath"
	"strings"
)

// Canonical agent states.
const (
	StateRunning  = "running"
	StateThinking = "thinking"
	StateWaiting  = "waiting"
	StateIdle     = "idle"
	StateDone     = "done"
	StateError    = "error"
)

const maxDisplayNameChars = 56

// normalizeSourceName collapses the spelling variants the tools use for
// themselves onto the canonical source names. Unknown sources pass through
// unchanged.
func normalizeSourceName(source string) string {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "claude", "claude code", "claude-code", "claudecode":
		return "claude"
	case "opencode", "open", "open-code", "open_code":
		return "opencode"
	case "codex":
		return "codex"
	}
	return source
}

// normalizeAgentName compacts a title to single-spaced words and truncates
// it to the display budget. Returns "" when nothing displayable remains.
func normalizeAgentName(name string) string {
	compact := strings.Join(strings.Fields(name), " ")
	if compact == "" {
		return ""
	}
	runes := []rune(compact)
	if len(runes) <= maxDisplayNameChars {
		return compact
	}
	return string(runes[:maxDisplayNameChars]) + "..."
}

// repoLabel returns the last path component of a repo path, or "" when the
// path has no usable leaf.
func repoLabel(repoPath string) string {
	trimmed := strings.TrimSpace(repoPath)
	if trimmed == "" {
		return ""
	}
	name := filepath.Base(trimmed)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSpace(name)
}

func shortSession(sessionID string) string {
	runes := []rune(sessionID)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes)
}

// formatAgentDisplayName derives the display name: session title first, then
// the repo leaf, then the first 8 characters of the session id — always
// prefixed with the normalized source name.
func formatAgentDisplayName(source, sessionID, agentName, repoPath string) string {
	normalized := normalizeSourceName(source)
	if name := normalizeAgentName(agentName); name != "" {
		return normalized + ": " + name
	}
	if label := normalizeAgentName(repoLabel(repoPath)); label != "" {
		return normalized + ": " + label
	}
	return normalized + ": " + shortSession(sessionID)
}

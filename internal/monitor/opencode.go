package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pixel-agents/backend/internal/config"
)

// OpenCodeSource scans OpenCode's session data. The tool keeps two
// representations of the same sessions: a SQLite database and a tree of flat
// JSON documents. The database is denser and is tried first; the file tree
// is the fallback for installs that predate the database (or polls where it
// is unreadable). The two are never combined within one poll.
type OpenCodeSource struct {
	cfg config.MonitorConfig
}

func NewOpenCodeSource(cfg config.MonitorConfig) *OpenCodeSource {
	return &OpenCodeSource{cfg: cfg}
}

func (s *OpenCodeSource) Name() string { return "opencode" }

func (s *OpenCodeSource) Scan(reg *Registry) error {
	if s.scanDB(reg) {
		return nil
	}
	s.scanFiles(reg)
	return nil
}

// scanFiles reads the storage/message and storage/part JSON trees, joining
// session metadata (title, project worktree) loaded from storage/session
// and storage/project.
func (s *OpenCodeSource) scanFiles(reg *Registry) {
	sessionRepo := s.loadSessionRepoMap()
	sessionName := s.loadSessionNameMap()

	for _, file := range collectFiles(opencodeMessageRoot(), "json", s.cfg.MaxOpenCodeFiles) {
		value, ok := readJSONDoc(file)
		if !ok {
			continue
		}

		sessionID := firstString(value, "sessionID", "sessionId")
		if sessionID == "" {
			sessionID = filepath.Base(filepath.Dir(file))
		}
		if sessionID == "" {
			sessionID = "unknown"
		}

		// File mtimes are already epoch milliseconds; only embedded
		// timestamps go through the magnitude classifier.
		ts := modifiedMS(file)
		if v, ok := numberAt(value, "time", "created"); ok {
			ts = NormalizeEpochMS(v)
		}
		_, completed := numberAt(value, "time", "completed")
		state := StateRunning
		if completed {
			state = StateDone
		}

		text := firstString(value, "summary")
		if text == "" {
			text = stringAt(value, "finish")
		}
		repoPath := stringAt(value, "path", "root")
		if repoPath == "" {
			repoPath = stringAt(value, "path", "cwd")
		}
		if repoPath == "" {
			repoPath = sessionRepo[sessionID]
		}

		reg.Observe(Observation{
			Source:    "opencode",
			SessionID: sessionID,
			Name:      sessionName[sessionID],
			State:     state,
			Text:      truncateText(text, s.cfg.MaxTextChars),
			RepoPath:  repoPath,
			EventType: "message",
			TSMs:      ts,
		})
	}

	for _, file := range collectFiles(opencodePartRoot(), "json", s.cfg.MaxOpenCodePartFiles) {
		value, ok := readJSONDoc(file)
		if !ok {
			continue
		}
		sessionID := firstString(value, "sessionID", "sessionId")
		if sessionID == "" {
			continue
		}

		part, ok := classifyPart(value, modifiedMS(file))
		if !ok {
			continue
		}

		reg.Observe(Observation{
			Source:    "opencode",
			SessionID: sessionID,
			Name:      sessionName[sessionID],
			State:     part.state,
			Text:      truncateText(part.text, s.cfg.MaxTextChars),
			RepoPath:  sessionRepo[sessionID],
			EventType: part.eventType,
			TSMs:      part.tsMS,
		})
	}
}

// loadSessionRepoMap resolves sessionID -> repository path by joining each
// session document's project id against the project documents' worktree.
func (s *OpenCodeSource) loadSessionRepoMap() map[string]string {
	out := make(map[string]string)
	sessionRoot := opencodeSessionRoot()
	if !dirExists(sessionRoot) {
		return out
	}

	projectRoot := opencodeProjectRoot()
	for _, file := range collectFiles(sessionRoot, "json", s.cfg.MaxOpenCodeFiles) {
		value, ok := readJSONDoc(file)
		if !ok {
			continue
		}
		sessionID := sessionIDFromDoc(value, file)
		projectID := firstString(value, "projectID", "projectId")
		if sessionID == "" || projectID == "" {
			continue
		}

		project, ok := readJSONDoc(filepath.Join(projectRoot, projectID+".json"))
		if !ok {
			continue
		}
		if worktree := stringAt(project, "worktree"); worktree != "" {
			out[sessionID] = worktree
		}
	}
	return out
}

// loadSessionNameMap collects sessionID -> title from the session documents.
func (s *OpenCodeSource) loadSessionNameMap() map[string]string {
	out := make(map[string]string)
	sessionRoot := opencodeSessionRoot()
	if !dirExists(sessionRoot) {
		return out
	}

	for _, file := range collectFiles(sessionRoot, "json", s.cfg.MaxOpenCodeFiles) {
		value, ok := readJSONDoc(file)
		if !ok {
			continue
		}
		sessionID := sessionIDFromDoc(value, file)
		title := stringAt(value, "title")
		if sessionID != "" && title != "" {
			out[sessionID] = title
		}
	}
	return out
}

// sessionIDFromDoc reads a session document's id, falling back to the parent
// directory name and then the filename stem.
func sessionIDFromDoc(value map[string]any, file string) string {
	if id := stringAt(value, "id"); id != "" {
		return id
	}
	if dir := filepath.Base(filepath.Dir(file)); dir != "" && dir != "." {
		return dir
	}
	stem := filepath.Base(file)
	return stem[:len(stem)-len(filepath.Ext(stem))]
}

// readJSONDoc decodes a flat JSON document into a map. Any read or parse
// failure skips the document.
func readJSONDoc(path string) (map[string]any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return value, true
}

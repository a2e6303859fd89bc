package monitor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pixel-agents/backend/internal/config"
)

// CodexSource scans Codex CLI rollout logs. Each session is one JSONL file
// under the sessions root; only the tail of each file is read, so long-lived
// sessions stay cheap to poll.
type CodexSource struct {
	cfg config.MonitorConfig
}

func NewCodexSource(cfg config.MonitorConfig) *CodexSource {
	return &CodexSource{cfg: cfg}
}

func (s *CodexSource) Name() string { return "codex" }

func (s *CodexSource) Scan(reg *Registry) error {
	root := codexSessionsRoot()
	if !dirExists(root) {
		return nil
	}

	for _, file := range collectFiles(root, "jsonl", s.cfg.MaxCodexFiles) {
		s.scanFile(reg, file)
	}
	return nil
}

func (s *CodexSource) scanFile(reg *Registry, file string) {
	fileTS := modifiedMS(file)
	fallbackSession := codexSessionIDFromFilename(file)

	tail, err := readTail(file, s.cfg.CodexTailBytes)
	if err != nil {
		return
	}

	// The tail may start mid-record; json.Unmarshal rejects the fragment
	// and the line is skipped like any other malformed one.
	scanner := bufio.NewScanner(bytes.NewReader(tail))
	scanner.Buffer(make([]byte, 0, 64*1024), int(s.cfg.CodexTailBytes)+1)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}

		payload := mapAt(record, "payload")
		kind := stringAt(record, "type")
		payloadType := stringAt(payload, "type")

		sessionID := stringAt(payload, "id")
		if sessionID == "" {
			sessionID = firstString(record, "session_id", "sessionId")
		}
		if sessionID == "" {
			sessionID = fallbackSession
		}
		if sessionID == "" {
			continue
		}

		ts := fileTS
		if v, ok := recordTimestamp(record, payload); ok {
			ts = NormalizeEpochMS(v)
		}

		repoPath := stringAt(payload, "cwd")
		if repoPath == "" {
			repoPath = stringAt(record, "cwd")
		}

		state, eventType, text := classifyCodexEvent(kind, payloadType, record, payload)

		reg.Observe(Observation{
			Source:    "codex",
			SessionID: sessionID,
			Name:      extractCodexAgentName(kind, payloadType, record, payload),
			State:     state,
			Text:      truncateText(text, s.cfg.MaxTextChars),
			RepoPath:  repoPath,
			EventType: eventType,
			TSMs:      ts,
		})
	}
}

// recordTimestamp finds the first numeric timestamp on the record or its
// payload.
func recordTimestamp(record, payload map[string]any) (int64, bool) {
	for _, m := range []map[string]any{record, payload} {
		if m == nil {
			continue
		}
		for _, key := range []string{"ts", "timestamp"} {
			if v, ok := toInt64(m[key]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// codexSessionIDFromFilename extracts the session UUID from a rollout
// filename of the form rollout-{timestamp}-{uuid}.jsonl, falling back to
// the filename stem when no valid UUID suffix is present.
func codexSessionIDFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	name = strings.TrimPrefix(name, "rollout-")

	if len(name) >= 36 {
		candidate := name[len(name)-36:]
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate
		}
	}
	return name
}

package monitor

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"

	_ "modernc.org/sqlite"
)

// scanDB reads recent sessions and parts from OpenCode's SQLite database.
// It reports whether the database was usable; a false return means the
// caller should fall back to the JSON file tree.
func (s *OpenCodeSource) scanDB(reg *Registry) bool {
	dbPath := opencodeDBFile()
	if _, err := os.Stat(dbPath); err != nil {
		return false
	}

	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return false
	}
	defer db.Close()

	sessionName := make(map[string]string)
	sessionRepo := make(map[string]string)

	rows, err := db.Query(
		`SELECT id, directory, title, time_updated FROM session
		 WHERE time_archived IS NULL OR time_archived = 0
		 ORDER BY time_updated DESC LIMIT ?`, s.cfg.MaxDBSessions)
	if err != nil {
		return false
	}
	for rows.Next() {
		var id string
		var directory, title sql.NullString
		var updated sql.NullInt64
		if err := rows.Scan(&id, &directory, &title, &updated); err != nil {
			continue
		}
		if title.Valid {
			sessionName[id] = title.String
		}
		if directory.Valid {
			sessionRepo[id] = directory.String
		}
		reg.Observe(Observation{
			Source:    "opencode",
			SessionID: id,
			Name:      title.String,
			State:     StateRunning,
			Text:      "Session activity",
			RepoPath:  directory.String,
			EventType: "status",
			TSMs:      NormalizeEpochMS(updated.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		log.Printf("[opencode] session rows: %v", err)
	}
	rows.Close()

	parts, err := db.Query(
		`SELECT session_id, time_updated, data FROM part
		 ORDER BY time_updated DESC LIMIT ?`, s.cfg.MaxDBParts)
	if err != nil {
		// Without part rows the scan lacks fine-grained state; let the
		// JSON tree fill it in. The registry merges the session rows
		// already observed with whatever the file scan finds.
		return false
	}
	defer parts.Close()

	for parts.Next() {
		var sessionID string
		var updated sql.NullInt64
		var data sql.NullString
		if err := parts.Scan(&sessionID, &updated, &data); err != nil {
			continue
		}
		if !data.Valid {
			continue
		}
		var value map[string]any
		if err := json.Unmarshal([]byte(data.String), &value); err != nil {
			continue
		}
		part, ok := classifyPart(value, NormalizeEpochMS(updated.Int64))
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
	if err := parts.Err(); err != nil {
		log.Printf("[opencode] part rows: %v", err)
	}
	return true
}

package monitor

import "strings"

// classifiedPart is the result of classifying one opencode part record.
type classifiedPart struct {
	state     string
	eventType string
	text      string
	tsMS      int64
}

// classifyPart maps an opencode part record (from the JSON store or a DB
// row's decoded payload) to a canonical state, event kind, and display text.
// fallbackTS is used when the part carries no usable timestamp. Part types
// with no monitoring value (text, file, patch, ...) report ok=false.
func classifyPart(value map[string]any, fallbackTS int64) (classifiedPart, bool) {
	switch stringAt(value, "type") {
	case "tool":
		stateObj := mapAt(value, "state")
		status := stringAt(stateObj, "status")
		if status == "" {
			status = "running"
		}
		status = strings.ToLower(status)

		toolName := stringAt(value, "tool")
		if toolName == "" {
			toolName = "tool"
		}

		startTS := fallbackTS
		if v, ok := numberAt(stateObj, "time", "start"); ok {
			startTS = NormalizeEpochMS(v)
		}
		endTS, hasEnd := numberAt(stateObj, "time", "end")
		if hasEnd {
			endTS = NormalizeEpochMS(endTS)
		}

		state := StateRunning
		eventType := "tool"
		switch {
		case status == "error":
			state = StateError
			eventType = "error"
		case status == "completed" || hasEnd:
			state = StateDone
		}

		ts := startTS
		if hasEnd {
			ts = endTS
		}
		return classifiedPart{
			state:     state,
			eventType: eventType,
			text:      toolName + ": " + status,
			tsMS:      ts,
		}, true

	case "reasoning":
		ts := fallbackTS
		if v, ok := numberAt(value, "time", "start"); ok {
			ts = NormalizeEpochMS(v)
		}
		if v, ok := numberAt(value, "time", "end"); ok {
			ts = NormalizeEpochMS(v)
		}
		text := stringAt(value, "text")
		if text == "" {
			text = "Thinking"
		}
		return classifiedPart{
			state:     StateThinking,
			eventType: "status",
			text:      text,
			tsMS:      ts,
		}, true

	case "step-start":
		return classifiedPart{
			state:     StateRunning,
			eventType: "status",
			text:      "Step started",
			tsMS:      fallbackTS,
		}, true

	case "step-finish":
		reason := stringAt(value, "reason")
		if reason == "" {
			reason = "stop"
		}
		return classifiedPart{
			state:     StateDone,
			eventType: "status",
			text:      "Step finished: " + reason,
			tsMS:      fallbackTS,
		}, true
	}

	return classifiedPart{}, false
}

// classifyCodexEvent maps a codex rollout record to (state, event kind,
// text). Classification matches substrings over the concatenation of the
// record's two type fields; the rule order is load-bearing because several
// tokens can co-occur in one record.
func classifyCodexEvent(kind, payloadType string, record, payload map[string]any) (string, string, string) {
	lower := strings.ToLower(kind) + " " + strings.ToLower(payloadType)

	if strings.Contains(lower, "task_complete") ||
		strings.Contains(lower, "turn_completed") ||
		strings.Contains(lower, "turn.complete") ||
		strings.Contains(lower, "item.completed") ||
		strings.Contains(lower, "completed") {
		return StateDone, "status", "Turn completed"
	}
	if strings.Contains(lower, "turn_aborted") ||
		strings.Contains(lower, "task_aborted") ||
		strings.Contains(lower, "aborted") {
		return StateWaiting, "status", "Turn aborted"
	}
	if strings.Contains(lower, "error") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "exception") ||
		strings.Contains(lower, "fatal") {
		return StateError, "error", "Codex error"
	}

	switch payloadType {
	case "agent_message", "message":
		text := firstString(record, "message")
		if text == "" {
			text = firstString(payload, "message")
		}
		if text == "" {
			text = "Assistant message"
		}
		return StateRunning, "message", text

	case "agent_reasoning", "reasoning", "token_count":
		return StateThinking, "status", "Thinking"

	case "task_started":
		return StateRunning, "status", "Task started"

	case "user_message":
		return StateWaiting, "message", "Waiting for input"

	case "function_call", "custom_tool_call":
		name := firstString(payload, "name")
		if name == "" {
			name = stringAt(payload, "function", "name")
		}
		if name == "" {
			name = "tool"
		}
		return StateRunning, "tool", name + ": running"

	case "function_call_output", "custom_tool_call_output":
		return StateRunning, "tool", "Tool output"
	}

	fallback := firstString(record, "message")
	if fallback == "" {
		fallback = firstString(payload, "message")
	}
	if fallback == "" {
		fallback = kind
	}
	return StateRunning, "message", fallback
}

// extractCodexAgentName pulls a display name out of a codex user message:
// the first non-empty line of the prompt. Other record kinds carry nothing
// name-like.
func extractCodexAgentName(kind, payloadType string, record, payload map[string]any) string {
	if kind != "event_msg" || payloadType != "user_message" {
		return ""
	}
	message := firstString(payload, "message")
	if message == "" {
		message = firstString(record, "message")
	}
	if message == "" {
		return ""
	}
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

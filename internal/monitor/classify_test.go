package monitor

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return v
}

func TestClassifyPartTool(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantState string
		wantType  string
		wantText  string
		wantTS    int64
	}{
		{
			name:      "running tool uses start time",
			raw:       `{"type":"tool","tool":"bash","state":{"status":"running","time":{"start":1709294400}}}`,
			wantState: StateRunning,
			wantType:  "tool",
			wantText:  "bash: running",
			wantTS:    1709294400000,
		},
		{
			name:      "completed tool uses end time",
			raw:       `{"type":"tool","tool":"build","state":{"status":"completed","time":{"start":1000,"end":2000}}}`,
			wantState: StateDone,
			wantType:  "tool",
			wantText:  "build: completed",
			wantTS:    2000000,
		},
		{
			name:      "end time alone implies done",
			raw:       `{"type":"tool","tool":"edit","state":{"time":{"end":3000}}}`,
			wantState: StateDone,
			wantType:  "tool",
			wantText:  "edit: running",
			wantTS:    3000000,
		},
		{
			name:      "errored tool",
			raw:       `{"type":"tool","tool":"bash","state":{"status":"error","time":{"start":1000}}}`,
			wantState: StateError,
			wantType:  "error",
			wantText:  "bash: error",
			wantTS:    1000000,
		},
		{
			name:      "missing tool name",
			raw:       `{"type":"tool","state":{"status":"running"}}`,
			wantState: StateRunning,
			wantType:  "tool",
			wantText:  "tool: running",
			wantTS:    42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, ok := classifyPart(mustDecode(t, tt.raw), 42)
			if !ok {
				t.Fatal("classifyPart rejected fixture")
			}
			if part.state != tt.wantState || part.eventType != tt.wantType ||
				part.text != tt.wantText || part.tsMS != tt.wantTS {
				t.Errorf("got %+v, want state=%q type=%q text=%q ts=%d",
					part, tt.wantState, tt.wantType, tt.wantText, tt.wantTS)
			}
		})
	}
}

func TestClassifyPartReasoningAndSteps(t *testing.T) {
	part, ok := classifyPart(mustDecode(t, `{"type":"reasoning","time":{"start":1000,"end":2000}}`), 42)
	if !ok || part.state != StateThinking || part.text != "Thinking" || part.tsMS != 2000000 {
		t.Errorf("reasoning: %+v", part)
	}

	part, ok = classifyPart(mustDecode(t, `{"type":"step-start"}`), 42)
	if !ok || part.state != StateRunning || part.text != "Step started" || part.tsMS != 42 {
		t.Errorf("step-start: %+v", part)
	}

	part, ok = classifyPart(mustDecode(t, `{"type":"step-finish","reason":"max-tokens"}`), 42)
	if !ok || part.state != StateDone || part.text != "Step finished: max-tokens" {
		t.Errorf("step-finish: %+v", part)
	}

	part, ok = classifyPart(mustDecode(t, `{"type":"step-finish"}`), 42)
	if !ok || part.text != "Step finished: stop" {
		t.Errorf("step-finish default reason: %+v", part)
	}
}

func TestClassifyPartSkipsUnknownTypes(t *testing.T) {
	for _, raw := range []string{
		`{"type":"text","text":"hello"}`,
		`{"type":"file"}`,
		`{}`,
	} {
		if _, ok := classifyPart(mustDecode(t, raw), 42); ok {
			t.Errorf("classifyPart accepted %s", raw)
		}
	}
}

// Two part observations for the same session: a reasoning part and a later
// completed tool part. The later part wins the scalar state while both stay
// in the history.
func TestPartObservationsMerge(t *testing.T) {
	reg := NewRegistry(20)

	reasoning, _ := classifyPart(mustDecode(t, `{"type":"reasoning","time":{"start":1000}}`), 0)
	tool, _ := classifyPart(mustDecode(t, `{"type":"tool","tool":"build","state":{"status":"completed","time":{"start":1500,"end":2000}}}`), 0)

	for _, part := range []classifiedPart{reasoning, tool} {
		reg.Observe(Observation{
			Source: "opencode", SessionID: "s1",
			State: part.state, Text: part.text, EventType: part.eventType, TSMs: part.tsMS,
		})
	}

	a := reg.Get("opencode:s1")
	if a.State != StateDone || a.LastText != "build: completed" {
		t.Errorf("state=%q text=%q, want done/build: completed", a.State, a.LastText)
	}
	if len(a.Events) != 2 || a.Events[0].Text != "build: completed" {
		t.Errorf("events = %+v, want 2 newest-first", a.Events)
	}
}

func TestClassifyCodexEventSubstringPriority(t *testing.T) {
	tests := []struct {
		name        string
		kind        string
		payloadType string
		wantState   string
		wantText    string
	}{
		{"completion", "event_msg", "task_complete", StateDone, "Turn completed"},
		{"completion beats error token", "turn_completed_with_error", "", StateDone, "Turn completed"},
		{"aborted", "event_msg", "turn_aborted", StateWaiting, "Turn aborted"},
		{"aborted beats error token", "aborted_with_error", "", StateWaiting, "Turn aborted"},
		{"error", "event_msg", "stream_error", StateError, "Codex error"},
		{"failed", "request_failed", "", StateError, "Codex error"},
		{"reasoning", "event_msg", "agent_reasoning", StateThinking, "Thinking"},
		{"token count", "event_msg", "token_count", StateThinking, "Thinking"},
		{"task started", "event_msg", "task_started", StateRunning, "Task started"},
		{"user message", "event_msg", "user_message", StateWaiting, "Waiting for input"},
		{"tool output", "response_item", "function_call_output", StateRunning, "Tool output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _, text := classifyCodexEvent(tt.kind, tt.payloadType, map[string]any{}, map[string]any{})
			if state != tt.wantState || text != tt.wantText {
				t.Errorf("classifyCodexEvent(%q, %q) = (%q, %q), want (%q, %q)",
					tt.kind, tt.payloadType, state, text, tt.wantState, tt.wantText)
			}
		})
	}
}

func TestClassifyCodexEventMessages(t *testing.T) {
	record := mustDecode(t, `{"type":"event_msg","payload":{"type":"agent_message","message":"Refactoring the parser"}}`)
	payload := mapAt(record, "payload")

	state, eventType, text := classifyCodexEvent("event_msg", "agent_message", record, payload)
	if state != StateRunning || eventType != "message" || text != "Refactoring the parser" {
		t.Errorf("agent_message: (%q, %q, %q)", state, eventType, text)
	}

	// Tool call names come from payload.name, then payload.function.name.
	payload = mustDecode(t, `{"type":"function_call","function":{"name":"apply_patch"}}`)
	_, eventType, text = classifyCodexEvent("response_item", "function_call", map[string]any{}, payload)
	if eventType != "tool" || text != "apply_patch: running" {
		t.Errorf("function_call: (%q, %q)", eventType, text)
	}

	payload = mustDecode(t, `{"type":"function_call"}`)
	_, _, text = classifyCodexEvent("response_item", "function_call", map[string]any{}, payload)
	if text != "tool: running" {
		t.Errorf("function_call without name: %q", text)
	}

	// Unknown kinds fall back to any message field, then the kind itself.
	record = mustDecode(t, `{"type":"session_meta","message":"hello"}`)
	state, _, text = classifyCodexEvent("session_meta", "", record, nil)
	if state != StateRunning || text != "hello" {
		t.Errorf("fallback with message: (%q, %q)", state, text)
	}
	state, _, text = classifyCodexEvent("session_meta", "", map[string]any{}, nil)
	if state != StateRunning || text != "session_meta" {
		t.Errorf("bare fallback: (%q, %q)", state, text)
	}
}

func TestExtractCodexAgentName(t *testing.T) {
	payload := mustDecode(t, `{"type":"user_message","message":"fix the login bug\nand add tests"}`)
	if got := extractCodexAgentName("event_msg", "user_message", map[string]any{}, payload); got != "fix the login bug" {
		t.Errorf("got %q, want first line of prompt", got)
	}
	if got := extractCodexAgentName("response_item", "user_message", map[string]any{}, payload); got != "" {
		t.Errorf("non event_msg kind must yield no name, got %q", got)
	}
	if got := extractCodexAgentName("event_msg", "agent_message", map[string]any{}, payload); got != "" {
		t.Errorf("non user_message payload must yield no name, got %q", got)
	}
}

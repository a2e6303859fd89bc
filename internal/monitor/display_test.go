package monitor

import (
	"strings"
	"testing"
)

func TestNormalizeSourceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude", "claude"},
		{"Claude Code", "claude"},
		{"claude-code", "claude"},
		{"OpenCode", "opencode"},
		{"open_code", "opencode"},
		{"codex", "codex"},
		{"mystery-agent", "mystery-agent"},
	}
	for _, tt := range tests {
		if got := normalizeSourceName(tt.in); got != tt.want {
			t.Errorf("normalizeSourceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAgentDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		sessionID string
		agentName string
		repoPath  string
		want      string
	}{
		{
			name:   "title wins",
			source: "opencode", sessionID: "ses_0123456789", agentName: "fix login bug", repoPath: "/home/u/proj",
			want: "opencode: fix login bug",
		},
		{
			name:   "repo leaf when no title",
			source: "codex", sessionID: "ses_0123456789", repoPath: "/home/u/proj",
			want: "codex: proj",
		},
		{
			name:   "short session id as last resort",
			source: "codex", sessionID: "0123456789abcdef",
			want: "codex: 01234567",
		},
		{
			name:   "whitespace title collapses",
			source: "opencode", sessionID: "s", agentName: "  fix   login\tbug  ",
			want: "opencode: fix login bug",
		},
		{
			name:   "source alias normalized",
			source: "Claude Code", sessionID: "0123456789abcdef",
			want: "claude: 01234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAgentDisplayName(tt.source, tt.sessionID, tt.agentName, tt.repoPath)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayNameBudget(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := formatAgentDisplayName("codex", "s", long, "")
	want := "codex: " + strings.Repeat("x", 56) + "..."
	if got != want {
		t.Errorf("long name not truncated: %q", got)
	}
}

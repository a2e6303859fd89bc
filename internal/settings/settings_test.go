package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirOverride(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", "/tmp/custom-agents")
	if got := Dir(); got != "/tmp/custom-agents" {
		t.Errorf("Dir() = %q, want override", got)
	}
}

func TestMonitorSettingsRoundTrip(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())

	// No file yet: pure defaults.
	st := ReadMonitorSettings()
	if st != DefaultMonitorSettings() {
		t.Errorf("missing file: got %+v, want defaults", st)
	}

	st.EnableCodex = false
	st.SourcePollIntervalMs = 5000
	if err := WriteMonitorSettings(st); err != nil {
		t.Fatalf("WriteMonitorSettings: %v", err)
	}

	got := ReadMonitorSettings()
	if got.EnableCodex || got.SourcePollIntervalMs != 5000 {
		t.Errorf("round trip lost changes: %+v", got)
	}
	if !got.Enabled || !got.EnableOpencode {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}

func TestMonitorSettingsUnreadableFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PIXEL_AGENTS_DIR", dir)

	if err := os.WriteFile(filepath.Join(dir, "monitor-settings.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if st := ReadMonitorSettings(); st != DefaultMonitorSettings() {
		t.Errorf("corrupt file: got %+v, want defaults", st)
	}
}

func TestRepoBindings(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())

	if got := ReadRepoBindings(); len(got) != 0 {
		t.Errorf("missing file: %v, want empty map", got)
	}

	if err := BindRepo("codex:abc", "/home/u/proj"); err != nil {
		t.Fatalf("BindRepo: %v", err)
	}
	if err := BindRepo("opencode:def", "/home/u/other"); err != nil {
		t.Fatalf("BindRepo: %v", err)
	}

	got := ReadRepoBindings()
	if got["codex:abc"] != "/home/u/proj" || got["opencode:def"] != "/home/u/other" {
		t.Errorf("bindings = %v", got)
	}

	// Empty path removes the binding.
	if err := BindRepo("codex:abc", ""); err != nil {
		t.Fatalf("BindRepo remove: %v", err)
	}
	got = ReadRepoBindings()
	if _, ok := got["codex:abc"]; ok {
		t.Errorf("binding not removed: %v", got)
	}

	if err := BindRepo("", "/x"); err == nil {
		t.Error("empty key accepted")
	}
}

func TestDesktopSettingsDefaults(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())

	st := ReadDesktopSettings()
	if !st.SoundEnabled || st.DemoMode {
		t.Errorf("defaults = %+v", st)
	}

	st.SoundEnabled = false
	st.DemoMode = true
	if err := WriteDesktopSettings(st); err != nil {
		t.Fatal(err)
	}
	if got := ReadDesktopSettings(); got != st {
		t.Errorf("round trip: %+v, want %+v", got, st)
	}
}

func TestImportLayoutValidation(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"version":1,"tiles":[{"x":0}]}`, false},
		{"empty tiles ok", `{"version":1,"tiles":[]}`, false},
		{"wrong version", `{"version":2,"tiles":[]}`, true},
		{"missing tiles", `{"version":1}`, true},
		{"not json", `nope`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ImportLayout([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("ImportLayout(%s) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
		})
	}

	data, err := ReadLayout()
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if string(data) != `{"version":1,"tiles":[]}` {
		t.Errorf("stored layout = %s, want last valid import", data)
	}
}

func TestReadLayoutMissing(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())
	data, err := ReadLayout()
	if err != nil || data != nil {
		t.Errorf("missing layout: (%v, %v), want (nil, nil)", data, err)
	}
}

func TestAgentSeats(t *testing.T) {
	t.Setenv("PIXEL_AGENTS_DIR", t.TempDir())

	if err := WriteAgentSeats([]byte(`[1,2,3]`)); err == nil {
		t.Error("non-object seat document accepted")
	}
	if err := WriteAgentSeats([]byte(`{"codex:abc":2}`)); err != nil {
		t.Fatalf("WriteAgentSeats: %v", err)
	}
	data, err := ReadAgentSeats()
	if err != nil {
		t.Fatalf("ReadAgentSeats: %v", err)
	}
	if string(data) != `{"codex:abc":2}` {
		t.Errorf("seats = %s", data)
	}
}

package monitor

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// attachPIDs matches live agent-tool processes to merged agents by working
// directory and records the PID on the agent. Best-effort: process listing
// or per-process lookups can fail (permissions, races with exiting
// processes) and any failure simply leaves the PID at zero.
func attachPIDs(agents []*Agent) {
	procs, err := process.Processes()
	if err != nil {
		return
	}

	// cwd -> pid for processes whose binary name matches a monitored tool.
	cwdPID := make(map[string]int32)
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || !isAgentProcessName(name) {
			continue
		}
		cwd, err := p.Cwd()
		if err != nil || cwd == "" {
			continue
		}
		cwdPID[cwd] = p.Pid
	}
	if len(cwdPID) == 0 {
		return
	}

	for _, a := range agents {
		if a.RepoPath == "" {
			continue
		}
		if pid, ok := cwdPID[a.RepoPath]; ok {
			a.PID = pid
			continue
		}
		// A tool launched in a subdirectory of the repo still counts.
		for cwd, pid := range cwdPID {
			if strings.HasPrefix(cwd, a.RepoPath+"/") {
				a.PID = pid
				break
			}
		}
	}
}

func isAgentProcessName(name string) bool {
	switch strings.ToLower(strings.TrimSuffix(name, ".exe")) {
	case "claude", "opencode", "codex":
		return true
	}
	return false
}

package claudecli

import "strings"

// buildEnv derives a deterministic, non-interactive environment for the
// backend process. The nested-session marker is stripped so the CLI does not
// refuse to run under another CLI session, HOME and PATH get fallbacks, and
// the credential config dir from the active settings snapshot wins over any
// ambient value.
func buildEnv(base []string, configDir string) []string {
	out := make([]string, 0, len(base)+3)

	var haveHome, havePath bool
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "CLAUDECODE", "CLAUDE_CONFIG_DIR":
			continue
		case "HOME":
			haveHome = true
		case "PATH":
			havePath = true
		}
		out = append(out, kv)
	}

	if !haveHome {
		out = append(out, "HOME=/tmp")
	}
	if !havePath {
		out = append(out, "PATH=/usr/local/bin:/usr/bin:/bin")
	}
	if configDir != "" {
		out = append(out, "CLAUDE_CONFIG_DIR="+configDir)
	}

	return out
}

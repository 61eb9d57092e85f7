package model

// Match is one search hit.
type Match struct {
	// Path is the host path the editor opens.
	Path string `json:"path"`
	// Display is Path run through the filesystem result pipeline.
	Display string `json:"display"`
}

// SearchReport is everything one invocation found.
type SearchReport struct {
	Path    string  `json:"path"`
	WorkDir string  `json:"workdir,omitempty"`
	Glob    string  `json:"glob"`
	Matches []Match `json:"matches"`
	// Skipped counts unreadable entries the engine stepped over.
	Skipped int `json:"skipped,omitempty"`
	// EngineFailure is set when the search itself broke; Matches is empty.
	EngineFailure string `json:"engine_failure,omitempty"`
}

// Paths returns the host paths of all matches.
func (r SearchReport) Paths() []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Path
	}
	return out
}

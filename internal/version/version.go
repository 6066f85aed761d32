package version

var (
	// Version is the release version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = ""
)

// String returns a human-readable version string, including the short
// commit hash when one was stamped in.
func String() string {
	if Commit == "" {
		return Version
	}
	commit := Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return Version + " (" + commit + ")"
}

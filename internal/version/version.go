package version

import "fmt"

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Full() string {
	return fmt.Sprintf("notes-flow %s, commit %s, built at %s", Version, Commit, Date)
}

package version

import (
	"fmt"
)

// These are populated at build time
var Version string
var CommitHash string

func GetVersionString() string {
	if Version != "" {
		return fmt.Sprintf("%s (commit %s)", Version, CommitHash)
	}
	return fmt.Sprintf("devel (commit %s)", CommitHash)
}

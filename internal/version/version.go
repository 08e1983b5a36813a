package version

import "fmt"

// Build metadata, overridden via -ldflags "-X .../internal/version.Version=...".
var (
	// Version is the semantic version of the node.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// binaryName identifies the node in user agents.
const binaryName = "alarm-node"

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("%s version: %s, commit: %s, built at: %s", binaryName, Version, Commit, BuildTime)
}

// UserAgent is sent with update downloads.
func UserAgent() string {
	return binaryName + "/" + Version + " (" + Commit + ")"
}

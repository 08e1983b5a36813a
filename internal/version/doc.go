// Package version exposes build metadata of the node binary: version, commit and
// build time for the version command, the --version flag and the update user agent.
package version

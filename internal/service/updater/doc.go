// Package updater replaces the node binary with a published build and keeps a
// single node instance per host.
//
// The update downloads the binary, verifies its SHA-512 checksum while applying it
// atomically over the running executable, and can stop running node processes so
// their supervisor restarts them on the new build.
package updater

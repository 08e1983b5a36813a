// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the node API with call timeouts and
// a helper to detect the current system actor (hostname/username) for audit logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

// Package client implements the CLI side of the node API: the set and status commands.
//
// Both commands dial the node over gRPC, set sends one parameter write (optionally
// retrying until the node is reachable) and status prints the current snapshot.
package client

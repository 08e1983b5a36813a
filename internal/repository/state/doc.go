// Package state persists the commanded light and alarm values of the node.
//
// The FileRepository keeps them as protobuf JSON on disk so a restarted node can
// re-apply them when restore_state is enabled.
package state

// Package node boots and runs the alarm node: GPIO lines, state machine,
// scheduler, MQTT sync layer and the gRPC control API.
package node

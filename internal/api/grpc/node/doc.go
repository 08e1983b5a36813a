// Package node implements the gRPC control API of the alarm node.
//
// The service is described by hand over well-known protobuf types: requests and
// responses are google.protobuf.Struct documents, so no generated code is needed.
// The package holds the service descriptor, the server adapter over the
// controller and a thin client.
package node

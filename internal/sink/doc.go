// Package sink defines the parameter sink: the set of externally observable
// values the controller mirrors to the sync layer.
package sink

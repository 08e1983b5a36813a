// Package home contains core domain types of the alarm node.
//
// It names the externally visible devices and parameters, the door state
// enumeration, and the closed set of commands the router understands.
package home

// Package gpio abstracts the three binary lines of the node.
//
// Lines is implemented by an in-memory driver used for simulation and tests,
// by a periph.io driver for real pins, and can have its light output routed
// to a Philips Hue bulb.
package gpio

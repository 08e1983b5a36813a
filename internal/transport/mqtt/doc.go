// Package mqtt is the MQTT sync layer of the node.
//
// Every parameter is mirrored as a retained JSON value on
// <root>/<device>/<param>, alerts go to <root>/alerts and writes arrive on
// <root>/<device>/<param>/set. Topics below the root are always relative.
package mqtt

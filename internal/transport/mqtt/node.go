package mqtt

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/logger"
	"github.com/oshokin/alarm-node/internal/sink"
)

const (
	// nodeTopic carries the retained node description.
	nodeTopic = "node"
	// statusTopic carries the retained online/offline marker, also used as the will.
	statusTopic = "status"

	statusOnline  = "online"
	statusOffline = "offline"
)

// NodeInfo describes the node and its parameters.
type NodeInfo struct {
	// Name is the node name.
	Name string `json:"name"`
	// Params lists the registered parameters.
	Params []ParamInfo `json:"params"`
}

// ParamInfo describes one parameter.
type ParamInfo struct {
	// Device is the owning device name.
	Device string `json:"device"`
	// Param is the parameter name.
	Param string `json:"param"`
	// Topic is the relative topic of the value.
	Topic string `json:"topic"`
	// Writable tells whether writes are accepted on Topic + "/set".
	Writable bool `json:"writable"`
}

// NewNodeInfo describes a node with every known parameter.
func NewNodeInfo(name string) NodeInfo {
	params := home.Params()
	info := NodeInfo{
		Name:   name,
		Params: make([]ParamInfo, 0, len(params)),
	}

	for _, p := range params {
		info.Params = append(info.Params, ParamInfo{
			Device:   p.Device(),
			Param:    p.Field(),
			Topic:    ParamTopic(p),
			Writable: p.Writable(),
		})
	}

	return info
}

// Source republishes the current parameter values to a sink.
type Source interface {
	Republish(ctx context.Context, s sink.Sink) error
}

// Announcer publishes the node description and the current parameter values
// on every connect, so the retained values always match the node.
type Announcer struct {
	info   NodeInfo
	source Source
}

// NewAnnouncer creates an announcer for a node name. Without a source the
// registration values are published instead.
func NewAnnouncer(name string, source Source) *Announcer {
	return &Announcer{
		info:   NewNodeInfo(name),
		source: source,
	}
}

// OnConnect is meant to be passed to NewClient.
func (a *Announcer) OnConnect(c *Client) {
	if err := a.announce(c); err != nil {
		logger.WarnKV(c.ctx, "Failed to announce node", "error", err)
	}
}

func (a *Announcer) announce(c *Client) error {
	token := c.client.Publish(c.Topic(statusTopic), c.qos, true, statusOnline)
	if err := c.wait(token); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	if err := c.Publish(nodeTopic, a.info, true); err != nil {
		return fmt.Errorf("publish node info: %w", err)
	}

	if a.source == nil {
		for _, p := range home.Params() {
			if err := c.Publish(ParamTopic(p), p.Initial(), true); err != nil {
				return fmt.Errorf("publish initial %s: %w", p, err)
			}
		}

		return nil
	}

	if err := a.source.Republish(c.ctx, NewSink(c)); err != nil {
		return fmt.Errorf("publish current values: %w", err)
	}

	return nil
}

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/logger"
)

// disconnectQuiesce is how long Disconnect waits for in-flight work, in milliseconds.
const disconnectQuiesce = 250

var (
	// ErrNotConnected is returned for publishes while the broker connection is down.
	ErrNotConnected = errors.New("mqtt client is not connected")

	errEmptyTopic    = errors.New("topic is empty")
	errAbsoluteTopic = errors.New("expected relative topic (cannot begin with slash)")
	errTimeout       = errors.New("mqtt operation timed out")
)

// MessageHandler receives a message; topic is relative to the topic root.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client wraps a paho client with a topic root, JSON payloads and one QoS.
type Client struct {
	// topicRoot prefixes every topic.
	topicRoot string
	// qos is used for publishes and subscriptions.
	qos byte
	// timeout bounds connects and subscriptions.
	timeout time.Duration
	// ctx carries the logger for paho callbacks.
	ctx context.Context //nolint:containedctx // paho callbacks have no context of their own.
	// client is the underlying paho client.
	client paho.Client
}

// NewClient creates a client for cfg. onConnect runs after every successful
// (re)connect, from a paho goroutine.
func NewClient(ctx context.Context, cfg *config.MQTT, onConnect func(c *Client)) *Client {
	ctx = logger.WithName(ctx, "mqtt")

	c := &Client{
		topicRoot: strings.TrimSuffix(cfg.TopicRoot, "/"),
		qos:       cfg.QoS,
		timeout:   cfg.ConnectTimeout,
		ctx:       ctx,
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetWill(c.Topic(statusTopic), statusOffline, cfg.QoS, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.WarnKV(ctx, "Connection to broker lost", "error", err)
		}).
		SetOnConnectHandler(func(paho.Client) {
			logger.InfoKV(ctx, "Connected to broker", "broker", cfg.Broker)

			if onConnect != nil {
				onConnect(c)
			}
		})

	c.client = paho.NewClient(opts)

	return c
}

// Connect connects to the broker.
func (c *Client) Connect() error {
	if err := c.wait(c.client.Connect()); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	return nil
}

// Disconnect closes the connection after marking the node offline.
func (c *Client) Disconnect() {
	if c.client == nil || !c.client.IsConnectionOpen() {
		return
	}

	token := c.client.Publish(c.Topic(statusTopic), c.qos, true, statusOffline)
	token.WaitTimeout(c.timeout)

	c.client.Disconnect(disconnectQuiesce)
}

// Topic returns the absolute topic for a relative one.
func (c *Client) Topic(relative string) string {
	return c.topicRoot + "/" + relative
}

// Publish encodes payload as JSON and publishes it below the topic root.
// Delivery is confirmed asynchronously, failures are logged.
func (c *Client) Publish(topic string, payload any, retained bool) error {
	return c.publish(topic, payload, retained, nil)
}

// publish is Publish with an optional callback run when delivery fails after
// the call returned.
func (c *Client) publish(topic string, payload any, retained bool, onFailure func(error)) error {
	if err := checkTopic(topic); err != nil {
		return err
	}

	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", topic, err)
	}

	scoped := c.Topic(topic)
	token := c.client.Publish(scoped, c.qos, retained, data)

	go func() {
		<-token.Done()

		if err := token.Error(); err != nil {
			logger.WarnKV(c.ctx, "Failed to publish", "topic", scoped, "error", err)

			if onFailure != nil {
				onFailure(err)
			}
		}
	}()

	return nil
}

// Subscribe registers handler for a relative topic filter.
func (c *Client) Subscribe(filter string, handler MessageHandler) error {
	if err := checkTopic(filter); err != nil {
		return err
	}

	token := c.client.Subscribe(c.Topic(filter), c.qos, func(_ paho.Client, msg paho.Message) {
		topic, ok := strings.CutPrefix(msg.Topic(), c.topicRoot+"/")
		if !ok {
			logger.DebugKV(c.ctx, "Ignoring message outside of topic root", "topic", msg.Topic())
			return
		}

		handler(c.ctx, topic, msg.Payload())
	})

	if err := c.wait(token); err != nil {
		return fmt.Errorf("subscribe to %s: %w", filter, err)
	}

	return nil
}

func (c *Client) wait(token paho.Token) error {
	if c.timeout > 0 && !token.WaitTimeout(c.timeout) {
		return errTimeout
	}

	if c.timeout <= 0 {
		token.Wait()
	}

	return token.Error()
}

func checkTopic(topic string) error {
	if topic == "" {
		return errEmptyTopic
	}

	if topic[0] == '/' {
		return errAbsoluteTopic
	}

	return nil
}

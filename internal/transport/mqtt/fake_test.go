package mqtt

import (
	"context"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// doneToken is an already completed paho token.
type doneToken struct {
	err error
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                 { return t.err }

func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}

// published is one recorded publish.
type published struct {
	topic    string
	retained bool
	payload  string
}

// message is an inbound paho message.
type message struct {
	paho.Message

	topic   string
	payload []byte
}

func (m message) Topic() string   { return m.topic }
func (m message) Payload() []byte { return m.payload }

// fakeClient records publishes and keeps subscription handlers.
type fakeClient struct {
	paho.Client

	mu         sync.Mutex
	open       bool
	publishErr error
	published  []published
	handlers   map[string]paho.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		open:     true,
		handlers: make(map[string]paho.MessageHandler),
	}
}

func (f *fakeClient) IsConnectionOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.open
}

func (f *fakeClient) Publish(topic string, _ byte, retained bool, payload any) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	var text string

	switch p := payload.(type) {
	case string:
		text = p
	case []byte:
		text = string(p)
	}

	f.published = append(f.published, published{topic: topic, retained: retained, payload: text})

	return doneToken{err: f.publishErr}
}

func (f *fakeClient) Subscribe(topic string, _ byte, handler paho.MessageHandler) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[topic] = handler

	return doneToken{}
}

func (f *fakeClient) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.open = false
}

// deliver hands an inbound message to the handler subscribed with filter.
func (f *fakeClient) deliver(filter, topic, payload string) {
	f.mu.Lock()
	handler := f.handlers[filter]
	f.mu.Unlock()

	handler(f, message{topic: topic, payload: []byte(payload)})
}

func (f *fakeClient) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]published(nil), f.published...)
}

// byTopic returns the last payload published on topic.
func (f *fakeClient) byTopic(topic string) (published, bool) {
	all := f.all()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].topic == topic {
			return all[i], true
		}
	}

	return published{}, false
}

func newTestClient(f *fakeClient) *Client {
	return &Client{
		topicRoot: "home/alarm-node",
		qos:       1,
		timeout:   time.Second,
		ctx:       context.Background(),
		client:    f,
	}
}

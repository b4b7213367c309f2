package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Message is a delivered event. Reply is set for request/reply callers.
type Message struct {
	Subject string
	Reply   string
	Data    []byte
}

type Handler func(msg Message)

// Client publishes JSON events and delivers subscriptions.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler Handler) error
	// QueueSubscribe shares deliveries among all subscribers in queue.
	QueueSubscribe(subject, queue string, handler Handler) error
	Close()
}

type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

var _ Client = (*NATSClient)(nil)

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("scorecard"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	if err := c.ensureStream(ctx); err != nil {
		logger.Warn("failed to ensure stream", "error", err)
	}
	return c, nil
}

// ensureStream retains profile lifecycle and score outcome events. Score
// requests are not retained; a request nobody is listening for is dropped.
func (c *NATSClient) ensureStream(ctx context.Context) error {
	maxAge, _ := time.ParseDuration(StreamMaxAge)
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"scorecard.profile.>", "scorecard.score.*.completed", "scorecard.score.*.failed", SubjectStats},
		MaxAge:   maxAge,
	})
	return err
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *NATSClient) Subscribe(subject string, handler Handler) error {
	return c.track(subject)(c.conn.Subscribe(subject, deliver(handler)))
}

func (c *NATSClient) QueueSubscribe(subject, queue string, handler Handler) error {
	return c.track(subject)(c.conn.QueueSubscribe(subject, queue, deliver(handler)))
}

func deliver(handler Handler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		handler(Message{Subject: msg.Subject, Reply: msg.Reply, Data: msg.Data})
	}
}

// track records a new subscription so Close can remove it.
func (c *NATSClient) track(subject string) func(*nats.Subscription, error) error {
	return func(sub *nats.Subscription, err error) error {
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		c.mu.Lock()
		c.subs = append(c.subs, sub)
		c.mu.Unlock()
		return nil
	}
}

func (c *NATSClient) Close() {
	c.mu.Lock()
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()
	c.conn.Close()
}

package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 16

// Notifier fans appended messages out to live transcript subscribers.
// Delivery is best effort; the transcript in the database stays authoritative.
type Notifier interface {
	Publish(ctx context.Context, msg models.Message) error

	// Subscribe streams messages appended to requestID until ctx is done,
	// then closes the returned channel.
	Subscribe(ctx context.Context, requestID string) (<-chan models.Message, error)

	Close() error
}

// LocalNotifier delivers messages to subscribers in the same process
type LocalNotifier struct {
	mu     sync.Mutex
	subs   map[string]map[chan models.Message]struct{}
	closed bool
}

// NewLocalNotifier creates an in-process notifier
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[string]map[chan models.Message]struct{})}
}

func (n *LocalNotifier) Publish(_ context.Context, msg models.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[msg.RequestID] {
		select {
		case ch <- msg:
		default:
			// slow subscriber; it will catch up from the transcript
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(ctx context.Context, requestID string) (<-chan models.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, errors.New("notifier closed")
	}

	ch := make(chan models.Message, subscriberBuffer)
	if n.subs[requestID] == nil {
		n.subs[requestID] = make(map[chan models.Message]struct{})
	}
	n.subs[requestID][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		n.remove(requestID, ch)
	}()

	return ch, nil
}

func (n *LocalNotifier) remove(requestID string, ch chan models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[requestID][ch]; !ok {
		return
	}
	delete(n.subs[requestID], ch)
	if len(n.subs[requestID]) == 0 {
		delete(n.subs, requestID)
	}
	close(ch)
}

func (n *LocalNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for requestID, set := range n.subs {
		for ch := range set {
			close(ch)
		}
		delete(n.subs, requestID)
	}
	return nil
}

// RedisNotifier shares the message stream between API replicas over redis pub/sub
type RedisNotifier struct {
	client *redis.Client
	prefix string
	log    logrus.FieldLogger
}

// NewRedisNotifier connects to redisURL and verifies the connection
func NewRedisNotifier(ctx context.Context, redisURL string, log logrus.FieldLogger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}

	return NewRedisNotifierWithClient(client, log), nil
}

// NewRedisNotifierWithClient creates a notifier from an existing client
func NewRedisNotifierWithClient(client *redis.Client, log logrus.FieldLogger) *RedisNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisNotifier{client: client, prefix: "orange:requests:", log: log}
}

// Client returns the underlying connection for other redis-backed components
func (n *RedisNotifier) Client() *redis.Client {
	return n.client
}

func (n *RedisNotifier) channel(requestID string) string {
	return n.prefix + requestID + ":messages"
}

func (n *RedisNotifier) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}
	if err := n.client.Publish(ctx, n.channel(msg.RequestID), payload).Err(); err != nil {
		return errors.Wrap(err, "publish message")
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, requestID string) (<-chan models.Message, error) {
	pubsub := n.client.Subscribe(ctx, n.channel(requestID))

	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "subscribe")
	}

	out := make(chan models.Message, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					n.log.WithError(err).WithField("request_id", requestID).Warn("Dropping malformed message notification")
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"campushub/internal/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// TopicEmail carries outbound emails from request handlers to the sender goroutine.
const TopicEmail = "email.outbound"

// Notifier queues messages without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Dispatcher publishes emails on an in-process channel and delivers them from
// a single subscriber. Delivery errors are logged and never reach the caller.
type Dispatcher struct {
	pubsub *gochannel.GoChannel
	mailer Mailer
	done   chan struct{}
	once   sync.Once
}

func NewDispatcher(mailer Mailer, logger watermill.LoggerAdapter) *Dispatcher {
	return &Dispatcher{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		mailer: mailer,
		done:   make(chan struct{}),
	}
}

// Start subscribes and delivers until ctx is cancelled or the dispatcher is closed.
func (d *Dispatcher) Start(ctx context.Context) error {
	started := false
	d.once.Do(func() { started = true })
	if !started {
		return errors.New("notify: dispatcher already started or closed")
	}
	msgs, err := d.pubsub.Subscribe(ctx, TopicEmail)
	if err != nil {
		close(d.done)
		return err
	}
	go func() {
		defer close(d.done)
		for m := range msgs {
			d.deliver(ctx, m)
		}
	}()
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, m *message.Message) {
	// Acked either way: a failed email is not retried.
	defer m.Ack()

	var msg Message
	if err := json.Unmarshal(m.Payload, &msg); err != nil {
		utils.LogError(m.Metadata.Get("request_id"), "notify", "decode_email", err)
		return
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		utils.LogError(m.Metadata.Get("request_id"), "notify", "send_email", err)
		return
	}
	utils.Logger().Info("email sent",
		zap.String("module", "notify"),
		zap.String("to", msg.To),
		zap.String("request_id", m.Metadata.Get("request_id")),
	)
}

// Notify publishes msg. It never blocks on delivery.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.LogError(requestIDFrom(ctx), "notify", "encode_email", err)
		return
	}
	wm := message.NewMessage(watermill.NewUUID(), payload)
	wm.Metadata.Set("request_id", requestIDFrom(ctx))
	if err := d.pubsub.Publish(TopicEmail, wm); err != nil {
		utils.LogError(requestIDFrom(ctx), "notify", "publish_email", err)
	}
}

// Close stops the subscriber after queued messages have been handed out.
func (d *Dispatcher) Close() error {
	err := d.pubsub.Close()
	d.once.Do(func() { close(d.done) })
	<-d.done
	return err
}

type requestIDKey struct{}

// WithRequestID tags ctx so queued emails can be traced to the request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var (
	defaultMu sync.RWMutex
	def       Notifier
)

// SetDefault installs the process notifier.
func SetDefault(n Notifier) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	def = n
}

// Default returns the process notifier, or one that only logs when none is set.
func Default() Notifier {
	defaultMu.RLock()
	n := def
	defaultMu.RUnlock()
	if n == nil {
		return logNotifier{}
	}
	return n
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, msg Message) {
	_ = LogMailer{}.Send(ctx, msg)
}

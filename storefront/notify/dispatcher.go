package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// DefaultTopic is the topic the email service consumes.
const DefaultTopic = "storefront.order-notifications"

var ErrDispatchFailed = errors.New("dispatching the notification failed")

// Dispatcher delivers one notification. Implementations must be safe to call again for the same
// message; the consumer deduplicates by EventID.
type Dispatcher interface {
	Dispatch(ctx context.Context, message shell.NotificationMessage, payload []byte) error
}

// MessageWriter is the part of *kafka.Writer the KafkaDispatcher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes the stored JSON payload, keyed by order id so all messages of one order
// land on the same partition in order.
type KafkaDispatcher struct {
	writer MessageWriter
}

// ParseBrokers splits a comma separated broker list and drops empty entries.
func ParseBrokers(csv string) []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return brokers
}

// NewKafkaWriter creates a writer with hash balancing on the message key.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaDispatcher(writer MessageWriter) KafkaDispatcher {
	return KafkaDispatcher{writer: writer}
}

func (d KafkaDispatcher) Dispatch(ctx context.Context, message shell.NotificationMessage, payload []byte) error {
	err := d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(message.OrderID),
		Value: payload,
		Time:  message.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(message.EventID)},
			{Key: "kind", Value: []byte(message.Kind)},
		},
	})
	if err != nil {
		return errors.Join(ErrDispatchFailed, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (d KafkaDispatcher) Close() error {
	return d.writer.Close()
}

// LogDispatcher writes notifications to the log instead of a broker. It is used when no brokers
// are configured, e.g. in local development.
type LogDispatcher struct {
	logger orderstore.Logger
}

func NewLogDispatcher(logger orderstore.Logger) LogDispatcher {
	return LogDispatcher{logger: logger}
}

func (d LogDispatcher) Dispatch(_ context.Context, message shell.NotificationMessage, _ []byte) error {
	if d.logger != nil {
		d.logger.Info(
			logMsgNotificationLogged,
			logAttrKind, message.Kind,
			logAttrRecipient, message.Recipient,
			logAttrOrderID, message.OrderID,
			logAttrStatus, message.Status,
		)
	}

	return nil
}

package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActionHeader carries the event kind so consumers can route without
// decoding the body.
const ActionHeader = "x-action"

// RabbitNotifier publishes events to a topic exchange with routing key
// user.<id>. The gateway that holds client connections consumes them.
type RabbitNotifier struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewRabbitNotifier dials the broker and declares the exchange.
func NewRabbitNotifier(url, exchange string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // delete when unused
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

// RoutingKey is the per-user routing key.
func RoutingKey(userID uint64) string {
	return "user." + strconv.FormatUint(userID, 10)
}

// Publishing builds the AMQP message for an event.
func Publishing(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    ev.ID,
		Timestamp:    ev.SentAt,
		Headers: amqp.Table{
			ActionHeader: ev.Kind,
		},
		Body: body,
	}, nil
}

func (n *RabbitNotifier) Notify(ctx context.Context, ev Event) error {
	msg, err := Publishing(ev)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch.PublishWithContext(
		ctx,
		n.exchange,            // exchange
		RoutingKey(ev.UserID), // routing key
		false,                 // mandatory
		false,                 // immediate
		msg,
	)
}

func (n *RabbitNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ch.Close(); err != nil {
		_ = n.conn.Close()
		return err
	}
	return n.conn.Close()
}

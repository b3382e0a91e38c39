package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const auditExchange = "audit.events"

// AMQPSink fans audit records out to a message broker for downstream fraud
// tooling. Strictly optional: wiring happens only when AMQP_URL is set, and
// publish failures are handled by the pipeline's swallow-and-log policy like
// any other sink error.
type AMQPSink struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPSink(url string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(auditExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare audit exchange: %w", err)
	}
	return &AMQPSink{conn: conn, ch: ch}, nil
}

// Persist publishes the record with routing key "audit.<category>".
func (s *AMQPSink) Persist(ctx context.Context, rec *Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = s.ch.PublishWithContext(pubCtx, auditExchange, "audit."+string(rec.Category), false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   rec.CreatedAt,
			MessageId:   rec.ID,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish audit record: %w", err)
	}
	return nil
}

func (s *AMQPSink) Close() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

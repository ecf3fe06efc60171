package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	amqp "github.com/rabbitmq/amqp091-go"
)

// outboundMail is the message body consumed by the mail relay.
type outboundMail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// RabbitMQMailer hands emails to a durable queue; a relay delivers them.
// The connection is opened lazily and reopened after a failure.
type RabbitMQMailer struct {
	url   string
	queue string
	from  string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitMQMailer(url, queue, from string) *RabbitMQMailer {
	return &RabbitMQMailer{url: url, queue: queue, from: from}
}

func (m *RabbitMQMailer) Send(ctx context.Context, email shared.Email) error {
	body, err := json.Marshal(outboundMail{From: m.from, To: email.To, Subject: email.Subject, Body: email.Body})
	if err != nil {
		return errs.Wrap(err, "marshal email")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ch, err := m.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		m.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		m.reset()
		return errs.Wrap(err, "publish email")
	}
	return nil
}

// channel must be called with mu held.
func (m *RabbitMQMailer) channel() (*amqp.Channel, error) {
	if m.ch != nil && !m.ch.IsClosed() {
		return m.ch, nil
	}
	m.reset()

	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, errs.Wrap(err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "open rabbitmq channel")
	}
	if _, err := ch.QueueDeclare(
		m.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrap(err, "declare mail queue")
	}

	m.conn, m.ch = conn, ch
	return ch, nil
}

func (m *RabbitMQMailer) reset() {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.conn, m.ch = nil, nil
}

func (m *RabbitMQMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

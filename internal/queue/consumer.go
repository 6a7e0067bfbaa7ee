package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartAuditConsumer consumes the ticket.purchased and
// ticket.validated queues and appends each message to an audit log
// under logs/. It runs a reconnect loop with capped exponential
// backoff and never returns; processing errors reject the offending
// message without requeueing so one bad payload cannot wedge the
// queue.
func StartAuditConsumer() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			logrus.WithError(err).Warnf("audit-consumer: broker dial failed, retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			logrus.WithError(err).Warn("audit-consumer: consume loop ended, reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("audit-consumer: set QoS failed")
	}

	for _, name := range []string{PurchasedQueue, ValidatedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	purchased, err := ch.Consume(PurchasedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", PurchasedQueue, err)
	}
	validated, err := ch.Consume(ValidatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ValidatedQueue, err)
	}

	for {
		select {
		case d, ok := <-purchased:
			if !ok {
				return errors.New("purchased deliveries channel closed")
			}
			handle(d, handlePurchased)
		case d, ok := <-validated:
			if !ok {
				return errors.New("validated deliveries channel closed")
			}
			handle(d, handleValidated)
		}
	}
}

func handle(d amqp.Delivery, fn func([]byte) error) {
	if err := fn(d.Body); err != nil {
		logrus.WithError(err).Warn("audit-consumer: handle message failed")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func handlePurchased(body []byte) error {
	var ev TicketPurchasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] ticket purchased | ticket_id=%s | ticket_type_id=%s | event=%q | purchaser_id=%s | price=%d cents\n",
		ev.PurchasedAt, ev.TicketID, ev.TicketTypeID, ev.EventName, ev.PurchaserID, ev.PriceCents)
	return appendAudit(line)
}

func handleValidated(body []byte) error {
	var ev TicketValidatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] ticket validation | validation_id=%s | ticket_id=%s | method=%s | status=%s\n",
		ev.ValidatedAt, ev.ValidationID, ev.TicketID, ev.Method, ev.Status)
	return appendAudit(line)
}

func appendAudit(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "ticket-audit.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

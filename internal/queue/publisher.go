package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
)

const bookingQueueName = "booking.confirmed"

// Publisher emits booking events to the booking.confirmed queue.  It
// satisfies the dialogue engine's event sink: delivery problems are
// logged and swallowed so a broker outage never fails a booking the
// database already accepted.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewPublisher dials the broker and declares the durable queue.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(bookingQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// BookingConfirmed publishes the event as persistent JSON.
func (p *Publisher) BookingConfirmed(ctx context.Context, ev dialogue.BookingEvent) {
	body, err := json.Marshal(BookingConfirmedEvent{
		ShowtimeID:  ev.ShowtimeID,
		MovieTitle:  ev.MovieTitle,
		Showtime:    ev.Showtime,
		Seats:       ev.Seats,
		UserName:    ev.UserName,
		ConfirmedAt: ev.ConfirmedAt.Format(time.RFC3339),
	})
	if err != nil {
		p.log.Error("marshal booking event", zap.Error(err))
		return
	}
	err = p.ch.PublishWithContext(ctx, "", bookingQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish booking event", zap.Error(err))
		return
	}
	p.log.Info("booking event published",
		zap.Int64("showtime_id", ev.ShowtimeID),
		zap.Strings("seats", ev.Seats))
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

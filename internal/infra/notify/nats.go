// Package notify fans committed movement records out to a message broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"frontdesk/pkg/domain"
)

// DefaultSubject is the subject root; the movement type is appended.
const DefaultSubject = "frontdesk.movements"

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

var _ domain.MovementPublisher = (*Publisher)(nil)

// Publisher sends each record as JSON to "<subject>.<movement type>", so
// housekeeping can subscribe to "frontdesk.movements.check_out" alone.
type Publisher struct {
	conn    Conn
	subject string
}

// Connect dials the NATS server at url.
func Connect(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("frontdesk"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return New(conn, subject), nil
}

// New wraps an established connection.
func New(conn Conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject}
}

// Subject returns the subject a record is published on.
func (p *Publisher) Subject(record domain.MovementRecord) string {
	return p.subject + "." + string(record.Type)
}

// Publish encodes and sends record.
func (p *Publisher) Publish(ctx context.Context, record domain.MovementRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode movement %d: %w", record.ID, err)
	}
	if err := p.conn.Publish(p.Subject(record), data); err != nil {
		return fmt.Errorf("publish movement %d: %w", record.ID, err)
	}
	return nil
}

// Close closes the connection.
func (p *Publisher) Close() { p.conn.Close() }

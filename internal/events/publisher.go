package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the API.
const (
	SubjectAdmissionStatus = "campus.admissions.status"
	SubjectGradeSaved      = "campus.grades.saved"
	SubjectGradesBulk      = "campus.grades.bulk"
	SubjectEnrollments     = "campus.enrollments.reconciled"
)

// Envelope wraps every event put on the bus.
type Envelope struct {
	ID         string      `json:"id"`
	Source     string      `json:"source"`
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher emits domain events. Failures are reported but callers treat
// them as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

type natsPublisher struct {
	conn   *nats.Conn
	nodeID string
	logger zerolog.Logger
}

// NewPublisher returns a NATS backed publisher, or a no-op one when conn is nil.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) Publisher {
	if conn == nil {
		return Noop{}
	}
	return &natsPublisher{
		conn:   conn,
		nodeID: uuid.NewString(),
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Source:     p.nodeID,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, body); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
		return err
	}
	return nil
}

// Noop discards events.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, string, interface{}) error { return nil }

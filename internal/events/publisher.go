package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain/hospital"
)

// TopicHospitalEvents carries wait-estimate updates for downstream consumers.
const TopicHospitalEvents = "hospital.events"

// WaitUpdated is the event type emitted on every wait-record write.
const WaitUpdated = "hospital.wait.updated"

// CloudEvent is the envelope for messages on hospital.events.
type CloudEvent struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// WaitEventPublisher emits a message whenever a hospital's wait record is
// written. Publishing is best-effort: failures are logged, never surfaced to
// the request that triggered the write. A nil publisher (no brokers
// configured) is a no-op.
type WaitEventPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewWaitEventPublisher creates a publisher, or nil when no brokers are
// configured.
func NewWaitEventPublisher(brokers []string, logger *zap.Logger) *WaitEventPublisher {
	if len(brokers) == 0 {
		return nil
	}
	return &WaitEventPublisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        TopicHospitalEvents,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
		},
		logger: logger,
	}
}

// PublishWaitUpdated emits a WaitUpdated event keyed by hospital id.
func (p *WaitEventPublisher) PublishWaitUpdated(ctx context.Context, record hospital.WaitRecord) {
	if p == nil {
		return
	}

	data, err := json.Marshal(record)
	if err != nil {
		p.logger.Error("failed to encode wait record event",
			zap.String("hospital_id", record.HospitalID),
			zap.Error(err),
		)
		return
	}

	evt := CloudEvent{
		ID:     uuid.New().String(),
		Source: "service-hospital",
		Type:   WaitUpdated,
		Time:   time.Now().UTC(),
		Data:   data,
	}
	value, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("failed to encode cloud event", zap.Error(err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(record.HospitalID),
		Value: value,
	}); err != nil {
		p.logger.Error("failed to publish wait update",
			zap.String("hospital_id", record.HospitalID),
			zap.Error(err),
		)
	}
}

// Close closes the underlying Kafka writer.
func (p *WaitEventPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

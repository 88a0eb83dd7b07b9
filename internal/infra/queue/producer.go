package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
)

const (
	EventLeadCreated   = "lead.created"
	EventLeadConverted = "lead.converted"
	EventLeadDeleted   = "lead.deleted"
)

type LeadEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	LeadID     string `json:"lead_id"`
	Name       string `json:"nome,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"telefone,omitempty"`
	OccurredAt int64  `json:"occurred_at"` // ms Unix
}

func NewLeadEvent(eventType string, lead *entity.Lead, at time.Time) LeadEvent {
	return LeadEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		LeadID:     lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		OccurredAt: at.UnixMilli(),
	}
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publishChannel
}

func NewProducer(ch publishChannel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Type:         event.Type,
			Timestamp:    time.UnixMilli(event.OccurredAt),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		metrics.RecordLeadEvent(event.Type, "failed")
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	metrics.RecordLeadEvent(event.Type, "published")
	return nil
}

// NoopPublisher descarta eventos quando não há broker configurado.
type NoopPublisher struct{}

func (NoopPublisher) PublishLeadEvent(context.Context, LeadEvent) error {
	return nil
}

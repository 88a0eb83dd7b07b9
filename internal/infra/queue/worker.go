package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
)

// CRMClient recebe as leads recém-criadas (Kommo, etc).
type CRMClient interface {
	SyncLead(ctx context.Context, event LeadEvent) error
}

// WelcomeSender avisa a lead que virou cliente.
type WelcomeSender interface {
	SendClientWelcome(to, name string) error
}

type consumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel consumeChannel
	CRM     CRMClient
	Mailer  WelcomeSender
}

func NewWorker(ch consumeChannel, crm CRMClient, mailer WelcomeSender) *Worker {
	return &Worker{
		Channel: ch,
		CRM:     crm,
		Mailer:  mailer,
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Info().Str("queue", queueName).Msg("worker aguardando eventos de lead")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Error().Err(err).Msg("evento com JSON inválido, descartando")
		// Mensagem malformada: sem requeue, vai pra DLQ.
		d.Nack(false, false)
		return
	}

	logger := log.With().Str("event", event.Type).Str("lead_id", event.LeadID).Logger()

	if err := w.processEvent(ctx, event); err != nil {
		logger.Error().Err(err).Msg("falha ao processar evento")
		d.Nack(false, false)
		return
	}

	logger.Info().Msg("evento processado")
	d.Ack(false)
}

func (w *Worker) processEvent(ctx context.Context, event LeadEvent) error {
	switch event.Type {
	case EventLeadCreated:
		if w.CRM == nil {
			return nil
		}
		if err := w.CRM.SyncLead(ctx, event); err != nil {
			metrics.RecordIntegrationError("kommo")
			return err
		}
		return nil

	case EventLeadConverted:
		if w.Mailer == nil || event.Email == "" {
			return nil
		}
		if err := w.Mailer.SendClientWelcome(event.Email, event.Name); err != nil {
			metrics.RecordIntegrationError("smtp")
			return err
		}
		return nil

	default:
		// Ack: ninguém trata esse tipo, não adianta reter.
		log.Debug().Str("event", event.Type).Msg("evento sem handler")
		return nil
	}
}

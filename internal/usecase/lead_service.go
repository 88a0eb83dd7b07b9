package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// LeadService aplica o ciclo de vida Prospect -> Client sobre a store.
//
// Toda operação é leitura-depois-escrita sem transação: duas requisições
// concorrentes para o mesmo id podem passar pela checagem antes de qualquer
// uma escrever (create duplicado ou convert duplo, last-write-wins).
type LeadService struct {
	Store  entity.LeadStore
	Events LeadEventPublisher
	Now    func() time.Time
}

func NewLeadService(store entity.LeadStore, events LeadEventPublisher) *LeadService {
	if events == nil {
		events = queue.NoopPublisher{}
	}
	return &LeadService{
		Store:  store,
		Events: events,
		Now:    time.Now,
	}
}

func (s *LeadService) Get(ctx context.Context, id string) (*entity.GetOutput, error) {
	if id == "" {
		return nil, InvalidInputError()
	}

	lead, found, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NotFoundError()
	}

	return &entity.GetOutput{Item: lead}, nil
}

func (s *LeadService) List(ctx context.Context) (*entity.ScanOutput, error) {
	out, err := s.Store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ServerError()
	}
	return out, nil
}

func (s *LeadService) Create(ctx context.Context, input CreateLeadInput) (*MessageOutput, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, InvalidInputError()
	}

	_, found, err := s.Store.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ConflictError(MsgLeadExists)
	}

	now := s.Now()
	lead := entity.NewLead(input.ID, input.Name, input.Email, input.Phone, now)
	if err := s.Store.Put(ctx, lead); err != nil {
		return nil, err
	}

	s.publish(ctx, queue.NewLeadEvent(queue.EventLeadCreated, lead, now))
	return &MessageOutput{Message: MsgLeadCreated}, nil
}

// Convert marca a lead como cliente. A transição é única: uma segunda
// tentativa é rejeitada com Conflict e clientSince não muda.
func (s *LeadService) Convert(ctx context.Context, id string) (*MessageOutput, error) {
	if id == "" {
		return nil, InvalidInputError()
	}

	lead, found, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NotFoundError()
	}
	if lead.IsClient() {
		return nil, ConflictError(MsgAlreadyConverted)
	}

	now := s.Now()
	clientSince := entity.ClientSince(now.UnixMilli())
	if err := s.Store.Update(ctx, id, entity.LeadUpdate{ClientSince: &clientSince}); err != nil {
		return nil, err
	}

	lead.ClientSince = clientSince
	s.publish(ctx, queue.NewLeadEvent(queue.EventLeadConverted, lead, now))
	return &MessageOutput{Message: MsgLeadConverted}, nil
}

// Delete é idempotente: não verifica existência.
func (s *LeadService) Delete(ctx context.Context, id string) (*MessageOutput, error) {
	if id == "" {
		return nil, InvalidInputError()
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		return nil, err
	}

	now := s.Now()
	s.publish(ctx, queue.NewLeadEvent(queue.EventLeadDeleted, &entity.Lead{ID: id}, now))
	return &MessageOutput{Message: MsgLeadDeleted}, nil
}

// A escrita já aconteceu; falha na fila só é logada.
func (s *LeadService) publish(ctx context.Context, event queue.LeadEvent) {
	if err := s.Events.PublishLeadEvent(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event", event.Type).
			Str("lead_id", event.LeadID).
			Msg("lead gravada, mas falha ao publicar evento")
	}
}

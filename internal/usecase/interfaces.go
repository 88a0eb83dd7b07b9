package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// LeadEventPublisher recebe os eventos emitidos depois de cada escrita.
type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

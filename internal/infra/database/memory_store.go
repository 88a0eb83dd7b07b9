package database

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// MemoryStore é a store em memória, usada em dev e nos testes.
type MemoryStore struct {
	mu    sync.RWMutex
	leads map[string]entity.Lead
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leads: make(map[string]entity.Lead)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*entity.Lead, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, false, nil
	}
	return &lead, true, nil
}

func (s *MemoryStore) Put(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[lead.ID] = *lead
	return nil
}

// Update só altera registros existentes.
func (s *MemoryStore) Update(_ context.Context, id string, changes entity.LeadUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil
	}
	if changes.ClientSince != nil {
		lead.ClientSince = *changes.ClientSince
	}
	s.leads[id] = lead
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.leads, id)
	return nil
}

func (s *MemoryStore) Scan(_ context.Context) (*entity.ScanOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]entity.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID < leads[j].ID })

	return entity.NewScanOutput(leads), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) Get(ctx context.Context, id string) (*entity.Lead, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Lead), args.Bool(1), args.Error(2)
}

func (m *MockLeadStore) Put(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadStore) Update(ctx context.Context, id string, changes entity.LeadUpdate) error {
	return m.Called(ctx, id, changes).Error(0)
}

func (m *MockLeadStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadStore) Scan(ctx context.Context) (*entity.ScanOutput, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ScanOutput), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

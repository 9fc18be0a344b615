package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imaginify/backend/internal/models"
)

type MockCreditPublisher struct {
	mock.Mock
}

func (m *MockCreditPublisher) Publish(ctx context.Context, event models.CreditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

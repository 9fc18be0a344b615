package webhook

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) UpsertUser(ctx context.Context, subjectID string, profile models.UserProfile) (services.Outcome, error) {
	args := m.Called(ctx, subjectID, profile)
	return args.Get(0).(services.Outcome), args.Error(1)
}

func (m *MockLedger) UpdateUserProfile(ctx context.Context, subjectID string, profile models.UserProfile) (services.Outcome, error) {
	args := m.Called(ctx, subjectID, profile)
	return args.Get(0).(services.Outcome), args.Error(1)
}

func (m *MockLedger) DeleteUser(ctx context.Context, subjectID string) (services.Outcome, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(services.Outcome), args.Error(1)
}

func (m *MockLedger) RecordPayment(ctx context.Context, payment models.Payment) (services.Outcome, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(services.Outcome), args.Error(1)
}

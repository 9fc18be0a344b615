package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

type MockUserLedger struct {
	mock.Mock
}

func (m *MockUserLedger) GetUser(ctx context.Context, subjectID string) (*models.User, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserLedger) AdjustCredits(ctx context.Context, subjectID string, delta int) (services.Outcome, error) {
	args := m.Called(ctx, subjectID, delta)
	return args.Get(0).(services.Outcome), args.Error(1)
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSession), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) AddImage(ctx context.Context, authorID string, image models.Image, creditFee int) (*models.Image, *models.User, error) {
	args := m.Called(ctx, authorID, image, creditFee)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Image), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockImageStore) GetImage(ctx context.Context, imageID string) (*models.Image, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageStore) UpdateImage(ctx context.Context, userID, imageID string, image models.Image) (*models.Image, error) {
	args := m.Called(ctx, userID, imageID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageStore) DeleteImage(ctx context.Context, userID, imageID string) error {
	args := m.Called(ctx, userID, imageID)
	return args.Error(0)
}

func (m *MockImageStore) ListImages(ctx context.Context, searchQuery string, page int) (*models.ImagePage, error) {
	args := m.Called(ctx, searchQuery, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImagePage), args.Error(1)
}

func (m *MockImageStore) ListUserImages(ctx context.Context, authorID string, page int) (*models.ImagePage, error) {
	args := m.Called(ctx, authorID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImagePage), args.Error(1)
}

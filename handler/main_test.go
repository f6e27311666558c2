// handler/main_test.go
package handler

import (
	"context"
	"io"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID int, req model.LogoutRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) {
	m.Called(ctx, email)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID int) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

type MockTokenAuthenticator struct{ mock.Mock }

func (m *MockTokenAuthenticator) AuthenticateAccessToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockRoomService struct{ mock.Mock }

func (m *MockRoomService) ListCategories(ctx context.Context) ([]model.RoomCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoomCategory), args.Error(1)
}

func (m *MockRoomService) GetCategory(ctx context.Context, slug string) (*model.RoomCategory, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoomCategory), args.Error(1)
}

func (m *MockRoomService) CheckAvailability(ctx context.Context, userID int, req model.AvailabilityRequest) (*model.Availability, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Availability), args.Error(1)
}

type MockUserAdminService struct{ mock.Mock }

func (m *MockUserAdminService) Deactivate(ctx context.Context, actorID, userID int) error {
	return m.Called(ctx, actorID, userID).Error(0)
}

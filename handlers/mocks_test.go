package handlers

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"
	"github.com/upb/gemini-chat/backend/auth"
	"github.com/upb/gemini-chat/backend/repositories"
	"github.com/upb/gemini-chat/backend/services/providers"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, subject string) (repositories.Document, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repositories.Document), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Reply(ctx context.Context, subject, message string) (string, error) {
	args := m.Called(ctx, subject, message)
	return args.String(0), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type stubProvider struct {
	available bool
}

func (p stubProvider) Name() string         { return "gemini" }
func (p stubProvider) DefaultModel() string { return "gemini-1.5-flash" }

func (p stubProvider) ChatCompletion(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
	return nil, errors.New("not used")
}

func (p stubProvider) IsAvailable(context.Context) bool { return p.available }

type stubProviderSource struct {
	provider providers.Provider
}

func (s stubProviderSource) Default() (providers.Provider, error) {
	if s.provider == nil {
		return nil, providers.ErrNoDefaultProvider
	}
	return s.provider, nil
}

// Package chat forwards a user's message to the configured generative text provider.
package chat

import (
	"context"
	"time"

	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/services/providers"
	"go.uber.org/zap"
)

// errorPrefix starts the client-facing message of every provider failure
const errorPrefix = "Error generating response"

// ProviderSource resolves the provider that handles chat requests
type ProviderSource interface {
	Default() (providers.Provider, error)
}

// ChatService sends single-turn chat messages to a provider
type ChatService struct {
	providers ProviderSource
	logger    *zap.Logger
}

// NewChatService creates a chat service
func NewChatService(source ProviderSource, logger *zap.Logger) *ChatService {
	return &ChatService{
		providers: source,
		logger:    logger,
	}
}

// Reply sends message to the default provider exactly once and returns the
// generated text. Any failure becomes an upstream error whose message
// includes the cause.
func (s *ChatService) Reply(ctx context.Context, subject, message string) (string, error) {
	provider, err := s.providers.Default()
	if err != nil {
		return "", services.WrapUpstream(errorPrefix, err)
	}

	start := time.Now()
	resp, err := provider.ChatCompletion(ctx, &providers.ChatRequest{
		Model:    provider.DefaultModel(),
		Messages: []providers.Message{{Role: "user", Content: message}},
		User:     subject,
	})
	if err != nil {
		s.logger.Warn("chat completion failed",
			zap.String("provider", provider.Name()),
			zap.String("subject", subject),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", services.WrapUpstream(errorPrefix, err)
	}

	s.logger.Info("chat completion",
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
		zap.String("subject", subject),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)))

	return resp.Text(), nil
}

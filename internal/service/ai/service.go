// Package ai is the generation gateway: persona-shaped chat replies for the
// Day flow and diary letters for the Night flow. Callers are expected to
// catch any error and substitute their fixed fallback text; nothing here ever
// reaches the user directly.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dallae-labs/dallae/backend/internal/config"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
	"github.com/dallae-labs/dallae/backend/internal/model/persona"
)

var (
	// ErrUnavailable wraps transport/model failures: the service could not be
	// reached or refused the request.
	ErrUnavailable = errors.New("generation service unavailable")
	// ErrEmptyResponse marks a reachable service that returned no usable text.
	ErrEmptyResponse = errors.New("generation service returned empty response")
)

// Service encapsulates the LLM chain shared by both generation operations.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt+model chain once at startup.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// GetChatModel exposes the underlying model so other services (the crisis
// classifier) can reuse the same credentials and connection.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// GenerateReply produces the assistant turn for a Day chat message.
func (s *Service) GenerateReply(ctx context.Context, userMessage string, history []checkin.Message, p *persona.Persona) (string, error) {
	input := map[string]any{
		"system":  buildReplySystemPrompt(p),
		"history": historyMessages(history),
		"query":   userMessage,
	}
	return s.invoke(ctx, input)
}

// GenerateLetter produces the Night flow's letter from a diary entry.
func (s *Service) GenerateLetter(ctx context.Context, diaryText string, p *persona.Persona) (string, error) {
	input := map[string]any{
		"system":  buildLetterSystemPrompt(p),
		"history": []*schema.Message(nil),
		"query":   diaryText,
	}
	return s.invoke(ctx, input)
}

func (s *Service) invoke(ctx context.Context, input map[string]any) (string, error) {
	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("[ai] generated %d chars", len(response.Content))
	return response.Content, nil
}

// historyMessages converts the recent transcript into model messages; only
// the last few turns are replayed to keep the prompt bounded.
func historyMessages(messages []checkin.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	start := 0
	if len(messages) > historyLimit {
		start = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		switch msg.Role {
		case checkin.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case checkin.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

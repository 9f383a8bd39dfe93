// Package crisis wraps the pure signal evaluator with an optional LLM
// escalation layer. Crisis detection must never block the primary flow: any
// error from the remote classifier is swallowed and the local layers decide
// alone.
package crisis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
)

// Config controls the escalation layer.
type Config struct {
	Enabled bool
}

// Service scores crisis signals: local keyword/intensity/pattern layers
// first, then (when enabled and the local layers are quiet) a remote
// classifier pass over the free text.
type Service struct {
	enabled    bool
	classifier compose.Runnable[map[string]any, *schema.Message]
	local      *analysis.Evaluator
}

// NewService builds the service. chatModel may be nil, which disables the
// remote layer regardless of cfg. local may be nil to use the default
// keyword list.
func NewService(ctx context.Context, chatModel model.ChatModel, local *analysis.Evaluator, cfg Config) (*Service, error) {
	if local == nil {
		local = analysis.New(nil)
	}

	svc := &Service{
		enabled: cfg.Enabled && chatModel != nil,
		local:   local,
	}
	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile crisis classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled reports whether the remote layer is active.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Local returns the pure evaluator behind the service, for callers that need
// keyword-only live checks against the same phrase list.
func (s *Service) Local() *analysis.Evaluator {
	return s.local
}

// Evaluate runs the local layers synchronously, escalating to the remote
// classifier only when they stay quiet and free text is present.
func (s *Service) Evaluate(ctx context.Context, in analysis.Input) analysis.Result {
	local := s.local.Evaluate(in)
	if local.IsCrisis {
		return local
	}
	if !s.Enabled() || strings.TrimSpace(in.Text) == "" {
		return local
	}

	remote, err := s.classify(ctx, in.Text)
	if err != nil {
		log.Printf("[crisis] classifier failed, relying on local layers: %v", err)
		return local
	}
	if remote == nil {
		return local
	}
	return *remote
}

func (s *Service) classify(ctx context.Context, text string) (*analysis.Result, error) {
	msg, err := s.classifier.Invoke(ctx, map[string]any{"text": strings.TrimSpace(text)})
	if err != nil {
		return nil, err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("empty classifier output")
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		return nil, err
	}
	if !payload.IsCrisis {
		return nil, nil
	}

	return &analysis.Result{
		IsCrisis:   true,
		Reason:     analysis.ReasonClassifier,
		Confidence: parseConfidence(payload.Confidence),
		Details:    strings.TrimSpace(payload.Reason),
	}, nil
}

type classifierPayload struct {
	IsCrisis   bool   `json:"isCrisis"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// parseClassifierOutput extracts the JSON object from the model reply, which
// may be wrapped in prose or code fences.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func parseConfidence(raw string) analysis.Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return analysis.ConfidenceHigh
	case "medium":
		return analysis.ConfidenceMedium
	default:
		return analysis.ConfidenceLow
	}
}

const classifierSystemPrompt = "You are a safety reviewer for an emotional check-in app. Read the user's text and judge whether it signals acute psychological crisis (self-harm, suicidal ideation, danger to self). Reply with only a JSON object: isCrisis (boolean), confidence (\"high\"/\"medium\"/\"low\"), reason (one short sentence). Do not output anything else."

const classifierUserPrompt = "User text:\n{text}\n\nReturn the JSON."

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

const (
	AINotConfiguredMessage  = "AI service not configured. Please add your OpenAI API key."
	NotEnoughMedicationsMsg = "⚠️ You need at least two medications to check for interactions."

	noInfoText        = "No information available"
	noInteractionText = "No interaction information available"

	medicationInfoSystemPrompt = "You are a helpful medication information assistant. Provide factual information about medications including common uses, side effects, and generic/brand names. Always remind users that this is educational information only and they should consult their doctor or pharmacist for medical advice."

	interactionSystemPrompt = "You are a careful medication safety assistant. Identify known interactions between the listed medications, rate each as minor, moderate or major, and explain what the user should watch for. If no significant interactions are known, say so plainly. Always remind users that this is educational information only and they should consult their doctor or pharmacist before changing any medication."
)

var ErrAINotConfigured = &UnavailableError{Message: AINotConfiguredMessage}

type aiProvider struct {
	name   string
	model  string
	client *openai.Client
}

// AIService proxies the medication-info and interaction prompts to an
// OpenAI-compatible chat-completion API, falling back to a second provider
// when one is configured.
type AIService struct {
	providers   []aiProvider
	temperature float32
	maxTokens   int
	metrics     *metrics.Metrics
}

func NewAIService(cfg *config.Config, m *metrics.Metrics) *AIService {
	httpClient := &http.Client{Timeout: cfg.AITimeout}
	if cfg.AITimeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}

	var providers []aiProvider
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, newAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, httpClient))
	}
	if cfg.AIFallbackAPIKey != "" {
		providers = append(providers, newAIProvider("fallback", cfg.AIFallbackAPIKey, cfg.AIFallbackBaseURL, cfg.AIFallbackModel, httpClient))
	}

	return &AIService{
		providers:   providers,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		metrics:     m,
	}
}

func newAIProvider(name, key, baseURL, model string, httpClient *http.Client) aiProvider {
	clientCfg := openai.DefaultConfig(key)
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientCfg.HTTPClient = httpClient
	return aiProvider{name: name, model: model, client: openai.NewClientWithConfig(clientCfg)}
}

func (s *AIService) Configured() bool {
	return len(s.providers) > 0
}

func (s *AIService) MedicationInfo(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("Medication name is required")
	}

	prompt := fmt.Sprintf("Please provide information about the medication: %s. "+
		"Include: 1) Common uses, 2) Common side effects, 3) Generic/brand names if applicable, "+
		"4) Important precautions. Keep it concise and easy to understand.", name)

	text, err := s.complete(ctx, "medication_info", medicationInfoSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if text == "" {
		return noInfoText, nil
	}
	return text, nil
}

// CheckInteractions answers with a fixed notice, without calling out, when
// fewer than two named medications are given. Entries with a blank name are ignored.
func (s *AIService) CheckInteractions(ctx context.Context, meds []dto.InteractionMedication) (string, error) {
	parts := make([]string, 0, len(meds))
	for _, m := range meds {
		entry := strings.TrimSpace(m.Name)
		if entry == "" {
			continue
		}
		if d := strings.TrimSpace(m.Dosage); d != "" {
			entry += " (" + d + ")"
		}
		parts = append(parts, entry)
	}
	if len(parts) < 2 {
		return NotEnoughMedicationsMsg, nil
	}

	prompt := fmt.Sprintf("Check for interactions between these medications: %s. "+
		"For each interacting pair describe: 1) The interaction and its severity, "+
		"2) Symptoms to watch for, 3) Practical precautions. "+
		"Keep it concise and easy to understand.", strings.Join(parts, ", "))

	text, err := s.complete(ctx, "check_interactions", interactionSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if text == "" {
		return noInteractionText, nil
	}
	return text, nil
}

// complete tries each provider in order and returns the first success.
func (s *AIService) complete(ctx context.Context, operation, system, user string) (string, error) {
	if len(s.providers) == 0 {
		return "", ErrAINotConfigured
	}

	var lastErr error
	for i, p := range s.providers {
		start := time.Now()
		text, err := s.callProvider(ctx, p, system, user)
		if err == nil {
			s.metrics.ObserveAI(operation, p.name, "success", time.Since(start))
			return text, nil
		}
		s.metrics.ObserveAI(operation, p.name, "error", time.Since(start))
		lastErr = err

		if errors.Is(err, context.Canceled) {
			break
		}
		if i < len(s.providers)-1 {
			slog.Warn("AI provider failed, trying next", "operation", operation, "provider", p.name, "error", err)
		}
	}

	slog.Error("AI request failed", "operation", operation, "error", lastErr)
	return "", fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

func (s *AIService) callProvider(ctx context.Context, p aiProvider, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response from AI", p.name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

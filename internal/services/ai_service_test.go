package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeChatServer answers chat completions with reply, or with status when non-200.
func fakeChatServer(t *testing.T, status int, reply string, calls *int32, last *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		if last != nil {
			_ = json.NewDecoder(r.Body).Decode(last)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func aiConfig(primaryURL, fallbackURL string) *config.Config {
	cfg := &config.Config{
		OpenAIModel:     "gpt-4o-mini",
		AIFallbackModel: "deepseek-chat",
		AITemperature:   0.7,
		AIMaxTokens:     500,
		AITimeout:       5 * time.Second,
	}
	if primaryURL != "" {
		cfg.OpenAIAPIKey = "sk-primary"
		cfg.OpenAIBaseURL = primaryURL + "/v1"
	}
	if fallbackURL != "" {
		cfg.AIFallbackAPIKey = "sk-fallback"
		cfg.AIFallbackBaseURL = fallbackURL + "/v1"
	}
	return cfg
}

func TestMedicationInfo(t *testing.T) {
	var calls int32
	var got chatRequest
	srv := fakeChatServer(t, http.StatusOK, "  Aspirin is a pain reliever.  ", &calls, &got)
	m := metrics.New()
	svc := NewAIService(aiConfig(srv.URL, ""), m)

	info, err := svc.MedicationInfo(context.Background(), "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin is a pain reliever.", info)
	assert.Equal(t, int32(1), calls)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, medicationInfoSystemPrompt, got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "Please provide information about the medication: Aspirin.")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AIRequestsTotal.WithLabelValues("medication_info", "openai", "success")))
}

func TestMedicationInfoEmptyAnswer(t *testing.T) {
	var calls int32
	srv := fakeChatServer(t, http.StatusOK, "", &calls, nil)
	svc := NewAIService(aiConfig(srv.URL, ""), nil)

	info, err := svc.MedicationInfo(context.Background(), "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, "No information available", info)
}

func TestMedicationInfoRequiresName(t *testing.T) {
	var calls int32
	srv := fakeChatServer(t, http.StatusOK, "x", &calls, nil)
	svc := NewAIService(aiConfig(srv.URL, ""), nil)

	_, err := svc.MedicationInfo(context.Background(), " ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, calls)
}

func TestAINotConfigured(t *testing.T) {
	svc := NewAIService(aiConfig("", ""), nil)
	assert.False(t, svc.Configured())

	_, err := svc.MedicationInfo(context.Background(), "Aspirin")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, AINotConfiguredMessage, err.Error())

	_, err = svc.CheckInteractions(context.Background(), []dto.InteractionMedication{{Name: "A"}, {Name: "B"}})
	assert.ErrorIs(t, err, ErrAINotConfigured)
}

func TestAIUpstreamFailure(t *testing.T) {
	var calls int32
	srv := fakeChatServer(t, http.StatusInternalServerError, "", &calls, nil)
	svc := NewAIService(aiConfig(srv.URL, ""), nil)

	_, err := svc.MedicationInfo(context.Background(), "Aspirin")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), calls, "no retry against the same provider")
}

func TestAIFallsBackToSecondProvider(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	var got chatRequest
	primary := fakeChatServer(t, http.StatusServiceUnavailable, "", &primaryCalls, nil)
	fallback := fakeChatServer(t, http.StatusOK, "fallback answer", &fallbackCalls, &got)
	svc := NewAIService(aiConfig(primary.URL, fallback.URL), nil)

	info, err := svc.MedicationInfo(context.Background(), "Ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", info)
	assert.Equal(t, int32(1), primaryCalls)
	assert.Equal(t, int32(1), fallbackCalls)
	assert.Equal(t, "deepseek-chat", got.Model)
}

func TestCheckInteractionsShortCircuits(t *testing.T) {
	var calls int32
	srv := fakeChatServer(t, http.StatusOK, "x", &calls, nil)
	svc := NewAIService(aiConfig(srv.URL, ""), nil)

	for _, meds := range [][]dto.InteractionMedication{
		nil,
		{{Name: "Aspirin", Dosage: "100mg"}},
		{{Name: ""}, {Name: "  "}},
		{{Name: "Aspirin"}, {Name: " ", Dosage: "5mg"}},
	} {
		text, err := svc.CheckInteractions(context.Background(), meds)
		require.NoError(t, err)
		assert.Equal(t, NotEnoughMedicationsMsg, text)
	}
	assert.Zero(t, calls)
}

func TestCheckInteractions(t *testing.T) {
	var calls int32
	var got chatRequest
	srv := fakeChatServer(t, http.StatusOK, "No major interactions.", &calls, &got)
	svc := NewAIService(aiConfig(srv.URL, ""), nil)

	text, err := svc.CheckInteractions(context.Background(), []dto.InteractionMedication{
		{Name: "Aspirin", Dosage: "100mg"},
		{Name: "Warfarin", Dosage: "5mg"},
		{Name: "Vitamin D"},
	})
	require.NoError(t, err)
	assert.Equal(t, "No major interactions.", text)
	assert.Equal(t, int32(1), calls)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Aspirin (100mg), Warfarin (5mg), Vitamin D.")
}

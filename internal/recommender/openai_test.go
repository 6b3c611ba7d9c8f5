package recommender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymdesk/pt-app/internal/config"
	"gymdesk/pt-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
}

func memberContextFixture() MemberContext {
	return MemberContext{
		Name:              "Alice",
		Gender:            domain.GenderFemale,
		FitnessGoal:       "weight loss",
		ExperienceLevel:   "beginner",
		PTDurationMinutes: 45,
		Injuries:          []string{"left knee"},
		RemainingSessions: 7,
	}
}

func TestChatProvider_GenerateWorkoutPlan(t *testing.T) {
	planJSON := `{"total_duration": 45, "exercises": [{"exercise_name": "Row", "sets": 3, "repetitions": 10, "duration": 45, "rest_time": 60}]}`

	var gotAuth string
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		gotPrompt = body.Messages[1].Content

		_ = json.NewEncoder(w).Encode(chatResponse(planJSON))
	}))
	defer server.Close()

	provider := NewChatProvider(config.RecommenderConfig{
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})

	plan, err := provider.GenerateWorkoutPlan(context.Background(), memberContextFixture())
	require.NoError(t, err)
	assert.Equal(t, 45, plan.TotalDuration)
	require.Len(t, plan.Exercises, 1)

	assert.Equal(t, "Bearer test-key", gotAuth)
	// The prompt must surface the details the model needs to tailor a plan.
	assert.Contains(t, gotPrompt, "Alice")
	assert.Contains(t, gotPrompt, "weight loss")
	assert.Contains(t, gotPrompt, "left knee")
	assert.Contains(t, gotPrompt, "45 minutes")
}

func TestChatProvider_GenerateWorkoutPlan_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewChatProvider(config.RecommenderConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := provider.GenerateWorkoutPlan(context.Background(), memberContextFixture())
	assert.Error(t, err)
}

func TestChatProvider_GenerateWorkoutPlan_MalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("sorry, I cannot produce JSON today"))
	}))
	defer server.Close()

	provider := NewChatProvider(config.RecommenderConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := provider.GenerateWorkoutPlan(context.Background(), memberContextFixture())
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestChatProvider_GenerateWorkoutPlan_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	provider := NewChatProvider(config.RecommenderConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := provider.GenerateWorkoutPlan(context.Background(), memberContextFixture())
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gymdesk/pt-app/internal/config"
)

// chatProvider implements Provider against an OpenAI-compatible
// chat-completions endpoint.
type chatProvider struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewChatProvider creates a Provider from recommender configuration.
func NewChatProvider(cfg config.RecommenderConfig) Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &chatProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

const systemPrompt = `You are a professional personal trainer. Given a member's
profile, body composition, and recent training history, design a workout
program that fits the PT session length. Respond with JSON only, exactly:
{
  "total_duration": <total workout time in minutes, integer>,
  "exercises": [
    {
      "exercise_name": <string>,
      "sets": <integer>,
      "repetitions": <integer; for timed holds convert to seconds>,
      "duration": <expected seconds per set, integer>,
      "rest_time": <rest between sets in seconds, integer>,
      "description": <how to perform the exercise>
    }
  ]
}
All numbers must be integers. Do not wrap the JSON in markdown fences.`

// GenerateWorkoutPlan asks the model for a plan and validates the response
// before returning it.
func (p *chatProvider) GenerateWorkoutPlan(ctx context.Context, mc MemberContext) (*Plan, error) {
	body := map[string]interface{}{
		"model":       p.model,
		"temperature": p.temperature,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(mc)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommendation call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("recommendation status %d: %s", resp.StatusCode, data)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrInvalidPlan)
	}

	return ParsePlan(result.Choices[0].Message.Content)
}

// ParsePlan decodes and validates a plan from model output. Models sometimes
// wrap JSON in markdown fences despite instructions; those are stripped.
func ParsePlan(content string) (*Plan, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func buildUserPrompt(mc MemberContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Member profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", mc.Name)
	fmt.Fprintf(&b, "- Gender: %s\n", mc.Gender)
	fmt.Fprintf(&b, "- Fitness goal: %s\n", orNone(mc.FitnessGoal))
	fmt.Fprintf(&b, "- Experience level: %s\n", orNone(mc.ExperienceLevel))
	fmt.Fprintf(&b, "- PT session length: %d minutes\n", mc.PTDurationMinutes)
	fmt.Fprintf(&b, "- Preferred exercises: %s\n", orNone(strings.Join(mc.PreferredExercises, ", ")))
	fmt.Fprintf(&b, "- Remaining PT sessions: %d\n", mc.RemainingSessions)
	fmt.Fprintf(&b, "- Injury history: %s\n", orNone(strings.Join(mc.Injuries, ", ")))

	if m := mc.LatestMeasurement; m != nil {
		fmt.Fprintf(&b, "\nBody composition (measured %s):\n", m.MeasurementDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "- Height: %.1f cm, weight: %.1f kg, BMI: %.1f\n", m.Height, m.Weight, m.BMI)
		fmt.Fprintf(&b, "- Body fat: %.1f kg (%.1f%%), muscle mass: %.1f kg\n", m.BodyFat, m.BodyFatPercentage, m.MuscleMass)
	}

	if len(mc.RecentRecords) > 0 {
		fmt.Fprintf(&b, "\nRecent exercise history:\n")
		for i, rec := range mc.RecentRecords {
			fmt.Fprintf(&b, "%d. %s - %d sets x %d reps (%ds), body part: %s\n",
				i+1, rec.ExerciseName, rec.Sets, rec.Repetitions, rec.Duration, rec.BodyPart)
		}
	}

	fmt.Fprintf(&b, "\nAdjust intensity for the body composition and balance body parts against the recent history. Warm-up and cool-down are 5 minutes each and not counted in the workout time.")
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// Package gemini produces an optional AI-written summary of a
// profile's posting habits. It is entirely additive: when no API key
// or project is configured the rest of the pipeline runs unchanged.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Summary is the structured response we ask the model for.
type Summary struct {
	Summary       string `json:"summary"`
	Persona       string `json:"persona"`
	PostingAdvice string `json:"posting_advice"`
}

// Cache stores raw model responses keyed by prompt so re-analyzing the
// same profile does not burn quota.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte)
}

// Logger is the logging surface the client needs; *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Client calls the Gemini API.
type Client struct {
	apiKey     string
	model      string
	gcpProject string
}

// NewClient creates a Gemini client. An empty model selects the default.
func NewClient(apiKey, model, gcpProject string) *Client {
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	return &Client{apiKey: apiKey, model: model, gcpProject: gcpProject}
}

// Summarize asks the model to describe the activity pattern captured
// in the prompt. Responses are cached when a cache is provided.
func (c *Client) Summarize(ctx context.Context, prompt string, cache Cache, logger Logger) (*Summary, error) {
	cacheKey := fmt.Sprintf("genai:%s:%s", c.model, prompt)
	if cache != nil {
		if data, found := cache.Get(cacheKey); found {
			var cached Summary
			if err := json.Unmarshal(data, &cached); err == nil && cached.Summary != "" {
				logger.Debug("using cached summary")
				return &cached, nil
			}
		}
	}

	client, err := c.createClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	maxTokens := int32(800)
	temperature := float32(0.4)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := c.generateWithRetry(ctx, client, contents, config, logger)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	var summary Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("parsing Gemini response: %w", err)
	}
	if summary.Summary == "" {
		return nil, fmt.Errorf("gemini response missing summary")
	}

	if cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			cache.Set(cacheKey, data)
		}
	}
	return &summary, nil
}

func (c *Client) createClient(ctx context.Context) (*genai.Client, error) {
	var config *genai.ClientConfig
	if c.apiKey != "" {
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  c.apiKey,
		}
	} else {
		project := c.gcpProject
		if project == "" {
			project = os.Getenv("GCP_PROJECT")
		}
		if project == "" {
			return nil, fmt.Errorf("no Gemini API key and no GCP project configured")
		}
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  project,
			Location: "us-central1",
		}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return client, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "Two or three sentences describing when and how regularly this account posts",
			},
			"persona": {
				Type:        genai.TypeString,
				Description: "A short phrase characterizing the posting style, e.g. 'late-night enthusiast'",
			},
			"posting_advice": {
				Type:        genai.TypeString,
				Description: "One sentence on the best time to reach this account",
			},
		},
		PropertyOrdering: []string{"summary", "persona", "posting_advice"},
		Required:         []string{"summary", "persona", "posting_advice"},
	}
}

func (c *Client) generateWithRetry(ctx context.Context, client *genai.Client, contents []*genai.Content, config *genai.GenerateContentConfig, logger Logger) (*genai.GenerateContentResponse, error) {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond
	jitter := 50 * time.Millisecond

	for attempt := 0; ; attempt++ {
		resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
		if err == nil {
			return resp, nil
		}
		if attempt == maxRetries {
			return nil, fmt.Errorf("gemini API call failed after %d attempts: %w", maxRetries+1, err)
		}
		if !isTransient(err) {
			logger.Warn("non-transient Gemini API error", "error", err)
			return nil, err
		}

		delay := baseDelay*time.Duration(1<<uint(attempt)) + time.Duration(rand.Int64N(int64(jitter)))
		logger.Debug("retrying Gemini API call", "attempt", attempt+1, "delay_ms", delay.Milliseconds())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

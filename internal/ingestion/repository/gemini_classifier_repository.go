package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"newspulse/internal/ingestion/config"
	"newspulse/internal/ingestion/dto"
	"newspulse/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ClassifierRepository is the sentiment model collaborator: plain text in,
// polarity and confidence out. It may be unavailable, in which case the
// scorer falls back to its offline lexicon.
type ClassifierRepository interface {
	Classify(ctx context.Context, text string) (*dto.ClassifierResponse, error)
}

const classifyPromptTemplate = `You are a financial news sentiment classifier.
Rate the sentiment of the following news text toward the company it covers.

Respond with ONLY a JSON object, no markdown, in this exact shape:
{"polarity": <float between -1.0 and 1.0>, "confidence": <float between 0.0 and 1.0>}

Text:
%s`

type geminiClassifierRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	genAiClient    *genai.Client
	requestLimiter *rate.Limiter
}

// NewGeminiClassifierRepository creates a ClassifierRepository backed by the
// Google Gemini API. The client handle is created once at process start and
// passed in explicitly.
func NewGeminiClassifierRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (ClassifierRepository, error) {
	maxRPM := cfg.Gemini.MaxRequestPerMinute
	if maxRPM <= 0 {
		maxRPM = 15
	}
	secondsPerRequest := time.Minute / time.Duration(maxRPM)

	return &geminiClassifierRepository{
		cfg:            cfg,
		logger:         log,
		genAiClient:    genAiClient,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

// Classify sends the text to Gemini and parses the polarity response.
func (r *geminiClassifierRepository) Classify(ctx context.Context, text string) (*dto.ClassifierResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := fmt.Sprintf(classifyPromptTemplate, text)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	raw := cleanJSONResponse(resp.Text())
	if raw == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	var result dto.ClassifierResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		r.logger.Error("Failed to parse classifier response",
			logger.ErrorField(err), logger.StringField("response", raw))
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	if result.Polarity < -1.0 || result.Polarity > 1.0 {
		return nil, fmt.Errorf("classifier polarity out of range: %f", result.Polarity)
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around its JSON output.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses
// the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	maxPerMinute := cfg.Gemini.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// GenerateNarrative produces the full narrative in one response.
func (r *geminiAIRepository) GenerateNarrative(ctx context.Context, req *dto.NarrativeRequest) (string, error) {
	prompt := BuildNarrativePrompt(req)
	contents, err := r.admit(ctx, prompt)
	if err != nil {
		return "", err
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.logger.Error("Failed to generate narrative", logger.ErrorField(err), logger.StringField("stock_code", req.StockCode))
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty narrative for %s", req.StockCode)
	}
	return text, nil
}

// GenerateNarrativeStream produces the narrative incrementally,
// invoking onChunk for every chunk as it arrives. The returned text
// is the concatenation of all chunks.
func (r *geminiAIRepository) GenerateNarrativeStream(ctx context.Context, req *dto.NarrativeRequest, onChunk func(string)) (string, error) {
	prompt := BuildNarrativePrompt(req)
	contents, err := r.admit(ctx, prompt)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for resp, err := range r.genAiClient.Models.GenerateContentStream(ctx, r.cfg.Gemini.Model, contents, nil) {
		if err != nil {
			r.logger.Error("Narrative stream failed", logger.ErrorField(err), logger.StringField("stock_code", req.StockCode))
			return "", fmt.Errorf("narrative stream failed: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty narrative for %s", req.StockCode)
	}
	return text, nil
}

// admit counts tokens and waits on both limiters before a request is
// allowed out.
func (r *geminiAIRepository) admit(ctx context.Context, prompt string) ([]*genai.Content, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(geminiTokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	return contents, nil
}

package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
)

const analyzerSystemPrompt = "You are an expert in marketplace listings and trading."

// analysisFallback is returned when the chat completion fails; listing
// analysis is advisory, so a provider outage degrades to this stub instead
// of an error.
const analysisFallback = "Unable to generate analysis at this time."

// Analyzer generates listing-improvement suggestions via chat completion.
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// AnalyzerConfig holds the analysis provider settings.
type AnalyzerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewAnalyzer creates a chat-completion-backed listing analyzer.
func NewAnalyzer(cfg *AnalyzerConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Analyze asks the model for improvement suggestions on a listing.
// Provider failures degrade to a fixed fallback sentence rather than an
// error so the endpoint stays usable during outages.
func (a *Analyzer) Analyze(ctx context.Context, item *domain.Item) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: analysisPrompt(item)},
		},
	})
	if err != nil {
		a.logger.Warn("Listing analysis request failed",
			zap.String("model", a.model),
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return analysisFallback, nil
	}

	if len(resp.Choices) == 0 {
		a.logger.Warn("Listing analysis returned no choices",
			zap.String("model", a.model),
			zap.String("item_id", item.ID),
		)
		return analysisFallback, nil
	}

	return resp.Choices[0].Message.Content, nil
}

func analysisPrompt(item *domain.Item) string {
	condition := item.Condition
	if condition == "" {
		condition = "Not specified"
	}
	tags := "None"
	if len(item.Tags) > 0 {
		tags = strings.Join(item.Tags, ",")
	}

	return fmt.Sprintf(`Analyze this item listing and provide suggestions for improvement:

Title: %s
Description: %s
Category: %s
Condition: %s
Tags: %s

Please provide:
1. Suggested improvements to the title
2. Suggested improvements to the description
3. Recommended additional tags
4. Overall rating of the listing quality (1-10)`,
		item.Title, item.Description, item.Category, condition, tags)
}

package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/fixotrip/rescue-bot/internal/models"
)

// GPTClassifier asks an OpenAI chat model to pick a category from the fixed
// set. Any API or parse failure falls back to the keyword classifier, so the
// reply scripts always stay within the known categories.
type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	fallback    *KeywordClassifier
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		fallback:    NewKeywordClassifier(),
		logger:      logger,
	}
}

type gptResult struct {
	Category string `json:"category"`
}

func (c *GPTClassifier) Classify(text string) (models.Category, bool) {
	ctx := context.Background()

	names := make([]string, len(Categories))
	for i, def := range Categories {
		names[i] = string(def.Category)
	}

	prompt := fmt.Sprintf(`Classify the following traveler message into exactly one of these problem categories: %s.
If none of them fit, use "none".

Return a JSON object with this structure:
{"category": "category_name"}

Message: %s`, strings.Join(names, ", "), text)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get GPT response", zap.Error(err))
		return c.fallback.Classify(text)
	}

	var result gptResult
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		c.logger.Error("Failed to parse GPT response",
			zap.Error(err),
			zap.String("response", content))
		return c.fallback.Classify(text)
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(result.Category)))
	if category == "none" || category == "" {
		return "", false
	}
	if _, ok := ResponseFor(category); !ok {
		c.logger.Warn("GPT returned unknown category, falling back",
			zap.String("category", string(category)))
		return c.fallback.Classify(text)
	}
	return category, true
}

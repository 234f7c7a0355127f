package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/llm"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
)

const systemMessage = "You are a precise classifier for MCP (Model Context Protocol) servers. Reply with a single category identifier and nothing else."

const promptTemplate = `Classify the following MCP server into exactly one category.

Valid categories:
%s

Server name: %s
Server description: %s

Reply with exactly one category identifier from the list above, with no quotes, punctuation or explanation.`

// Classifier picks a category. The model is tried first, then the
// keyword rules, then the default category.
type Classifier struct {
	completer llm.Completer
	rules     KeywordRules
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func New(c llm.Completer, rules KeywordRules, log logger.Logger, m *metrics.Metrics) *Classifier {
	if len(rules) == 0 {
		rules = DefaultKeywordRules()
	}
	return &Classifier{completer: c, rules: rules, logger: log, metrics: m}
}

// Classify always returns a member of the closed set.
func (c *Classifier) Classify(ctx context.Context, name, description string) domain.Category {
	if strings.TrimSpace(name) == "" && strings.TrimSpace(description) == "" {
		return domain.DefaultCategory
	}

	reply, err := c.completer.Complete(ctx, buildPrompt(name, description), systemMessage)
	c.metrics.LLMCall("classify", err)
	if err != nil {
		fallback := c.rules.Match(description)
		c.logger.Warn("category classification failed, using keywords",
			logger.String("name", name),
			logger.String("category", string(fallback)),
			logger.Error(err))
		return fallback
	}

	cleaned := cleanReply(reply)
	if cat, ok := domain.ParseCategory(cleaned); ok {
		return cat
	}

	c.logger.Warn("model returned an unknown category",
		logger.String("name", name),
		logger.String("reply", cleaned))
	return domain.DefaultCategory
}

// ClassifyByKeyword uses only the configured keyword rules.
func (c *Classifier) ClassifyByKeyword(description string) domain.Category {
	return c.rules.Match(description)
}

func buildPrompt(name, description string) string {
	var b strings.Builder
	for _, info := range domain.Categories() {
		fmt.Fprintf(&b, "- %s (%s)\n", info.Key, info.Name)
	}
	return fmt.Sprintf(promptTemplate, strings.TrimRight(b.String(), "\n"), name, description)
}

func cleanReply(reply string) string {
	s := strings.TrimSpace(reply)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(s, "\"'`“”. "))
}

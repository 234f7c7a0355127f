package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/llm"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
)

const promptTemplate = `Translate the following text to %s.
Keep any technical terms, brand names, and code references in their original form.
Do not add any extra quotation marks in your translation that weren't in the original text.
Only return the translated text without any explanations or additional formatting.

Text to translate: %s`

const systemMessage = "You are a professional translator. Provide accurate and natural-sounding translations."

var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"「", "」"},
}

// Translator renders text into a target locale through the model.
// It never fails: the source text comes back on any error.
type Translator struct {
	completer llm.Completer
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func New(c llm.Completer, log logger.Logger, m *metrics.Metrics) *Translator {
	return &Translator{completer: c, logger: log, metrics: m}
}

// Translate returns text in locale. locale must already be validated.
func (t *Translator) Translate(ctx context.Context, text string, locale domain.Locale) string {
	if strings.TrimSpace(text) == "" || locale.IsDefault() {
		return text
	}

	reply, err := t.completer.Complete(ctx, fmt.Sprintf(promptTemplate, locale.LanguageName(), text), systemMessage)
	t.metrics.LLMCall("translate", err)
	if err != nil {
		t.logger.Warn("translation failed, keeping source text",
			logger.String("locale", string(locale)),
			logger.Error(err))
		return text
	}

	out := strings.TrimSpace(reply)
	if out == "" {
		return text
	}
	return stripAddedQuotes(text, out)
}

// LocalizeEntry returns a Localized Copy of base. Name stays verbatim;
// every other text field is translated.
func (t *Translator) LocalizeEntry(ctx context.Context, base *domain.Entry, locale domain.Locale) *domain.Entry {
	out := base.Clone()
	if locale.IsDefault() {
		return out
	}

	out.Description = t.Translate(ctx, base.Description, locale)
	out.InstallInstructions = t.Translate(ctx, base.InstallInstructions, locale)
	out.UsageInstructions = t.Translate(ctx, base.UsageInstructions, locale)
	out.Features = t.translateAll(ctx, base.Features, locale)
	out.Prerequisites = t.translateAll(ctx, base.Prerequisites, locale)
	return out
}

func (t *Translator) translateAll(ctx context.Context, items []string, locale domain.Locale) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = t.Translate(ctx, s, locale)
	}
	return out
}

// stripAddedQuotes removes one wrapping quote pair the model added.
func stripAddedQuotes(source, translated string) string {
	src := strings.TrimSpace(source)
	for _, q := range quotePairs {
		if strings.HasPrefix(src, q[0]) && strings.HasSuffix(src, q[1]) {
			return translated
		}
	}
	for _, q := range quotePairs {
		if len(translated) >= len(q[0])+len(q[1]) &&
			strings.HasPrefix(translated, q[0]) && strings.HasSuffix(translated, q[1]) {
			return strings.TrimSpace(translated[len(q[0]) : len(translated)-len(q[1])])
		}
	}
	return translated
}

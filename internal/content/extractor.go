package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/llm"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
	"github.com/tidwall/gjson"
)

const extractPromptTemplate = `Extract structured information from the provided README.md content and provide the response in %[1]s.

IMPORTANT:
- ALL text fields in your response MUST be in %[1]s EXCEPT for the "name" field.
- The "name" field MUST remain in its original form without translation.
- Translate all other extracted information from English to %[1]s if needed.

Return the information in the following JSON format:
{
    "name": "string", // KEEP THIS IN ORIGINAL LANGUAGE, DO NOT TRANSLATE
    "description": "string",
    "Installation_instructions": "string",
    "Usage_instructions": "string",
    "features": [
        "string"
    ],
    "prerequisites": [
        "string"
    ]
}

README.md content:
%[2]s

Remember to keep "name" in its original language, but provide all other fields in %[1]s.
`

const extractSystemTemplate = `You are a helpful assistant that extracts structured information from README files and accurately translates it to %[1]s. Always keep the "name" field in its original language, but translate all other information to %[1]s.`

// Pipeline turns a raw document into ExtractedInfo through the model.
type Pipeline struct {
	completer llm.Completer
	charLimit int
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func NewPipeline(c llm.Completer, charLimit int, log logger.Logger, m *metrics.Metrics) *Pipeline {
	if charLimit <= 0 {
		charLimit = DefaultCharLimit
	}
	return &Pipeline{completer: c, charLimit: charLimit, logger: log, metrics: m}
}

// Truncate applies the configured character limit.
func (p *Pipeline) Truncate(content string) string {
	out, cut := Truncate(content, p.charLimit, DefaultReserve)
	if cut {
		p.logger.Info("document truncated for model input",
			logger.Int("limit", p.charLimit),
			logger.Int("kept", len([]rune(out))))
	}
	return out
}

// Process truncates content then extracts from it.
func (p *Pipeline) Process(ctx context.Context, content string, locale domain.Locale) domain.ExtractedInfo {
	if strings.TrimSpace(content) == "" {
		return domain.EmptyExtraction()
	}
	return p.Extract(ctx, p.Truncate(content), locale)
}

// Extract asks the model for the fixed JSON shape. Every failure yields
// domain.EmptyExtraction().
func (p *Pipeline) Extract(ctx context.Context, content string, locale domain.Locale) domain.ExtractedInfo {
	if strings.TrimSpace(content) == "" {
		return domain.EmptyExtraction()
	}

	lang := locale.LanguageName()
	reply, err := p.completer.Complete(ctx,
		fmt.Sprintf(extractPromptTemplate, lang, content),
		fmt.Sprintf(extractSystemTemplate, lang))
	p.metrics.LLMCall("extract", err)
	if err != nil {
		p.logger.Warn("extraction call failed", logger.String("locale", string(locale)), logger.Error(err))
		return domain.EmptyExtraction()
	}

	info, err := ParseExtraction(reply)
	if err != nil {
		p.logger.Warn("extraction reply unusable", logger.String("locale", string(locale)), logger.Error(err))
		return domain.EmptyExtraction()
	}
	return info
}

// ParseExtraction decodes the span from the first '{' to the last '}'
// of reply. Both snake and camel instruction keys are accepted.
func ParseExtraction(reply string) (domain.ExtractedInfo, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return domain.EmptyExtraction(), fmt.Errorf("no JSON object in reply")
	}

	span := reply[start : end+1]
	if !gjson.Valid(span) {
		return domain.EmptyExtraction(), fmt.Errorf("invalid JSON in reply")
	}

	doc := gjson.Parse(span)
	if !doc.IsObject() {
		return domain.EmptyExtraction(), fmt.Errorf("reply JSON is not an object")
	}

	return domain.ExtractedInfo{
		Name:                firstString(doc, "name"),
		Description:         firstString(doc, "description"),
		InstallInstructions: firstString(doc, "Installation_instructions", "installInstructions", "installation_instructions"),
		UsageInstructions:   firstString(doc, "Usage_instructions", "usageInstructions", "usage_instructions"),
		Features:            stringList(doc.Get("features")),
		Prerequisites:       stringList(doc.Get("prerequisites")),
	}, nil
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := doc.Get(k); v.Exists() && v.Type != gjson.Null {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.Exists() || v.Type == gjson.Null {
		return out
	}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

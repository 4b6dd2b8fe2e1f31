package intel

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/pkg/anthropic"
)

// ParseModelJSON extracts a JSON value (object or array) from model output
// that may be wrapped in markdown code fences or surrounding prose. This is
// the single place the fence-stripping heuristic lives; every stage parses
// model output through it.
func ParseModelJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, eris.New("parse: empty model output")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	// Slice out the outermost JSON value. Objects win over arrays when the
	// object opens first, matching how the models wrap their answers.
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		end := strings.LastIndex(text, "]")
		if end > arrStart {
			text = text[arrStart : end+1]
		}
	case objStart >= 0:
		end := strings.LastIndex(text, "}")
		if end > objStart {
			text = text[objStart : end+1]
		}
	default:
		return nil, eris.New("parse: no JSON value in model output")
	}

	if !json.Valid([]byte(text)) {
		return nil, eris.New("parse: invalid JSON in model output")
	}
	return json.RawMessage(text), nil
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// usageOf converts a response's token usage into the run accumulator type.
func usageOf(resp *anthropic.MessageResponse) model.TokenUsage {
	if resp == nil {
		return model.TokenUsage{}
	}
	return model.TokenUsage{
		InputTokens:         int(resp.Usage.InputTokens),
		OutputTokens:        int(resp.Usage.OutputTokens),
		CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
		CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
	}
}

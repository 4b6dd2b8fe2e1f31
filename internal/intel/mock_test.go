package intel

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/brandscope/brandscope-cli/internal/config"
	"github.com/brandscope/brandscope-cli/pkg/anthropic"
	"github.com/brandscope/brandscope-cli/pkg/serper"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Serper Mock ---

type mockSerperClient struct {
	mock.Mock
}

func (m *mockSerperClient) Search(ctx context.Context, query string, limit int) ([]serper.Result, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]serper.Result), args.Error(1)
}

// --- helpers ---

// textResponse wraps raw model output in a minimal MessageResponse.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage: anthropic.TokenUsage{
			InputTokens:  100,
			OutputTokens: 50,
		},
	}
}

// testIntelConfig returns pipeline settings suitable for unit tests.
func testIntelConfig() config.IntelConfig {
	return config.IntelConfig{
		SearchTimeoutSecs:     20,
		ClassifyTimeoutSecs:   45,
		WhitespaceTimeoutSecs: 45,
		SearchResults:         3,
		MaxClassify:           30,
		MaxExposed:            20,
		MaxRegionConcurrency:  6,
		CacheSize:             16,
	}
}

// testConfig returns a full config for pipeline-level tests.
func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:          "claude-haiku-4-5-20251001",
			NarrativeModel: "claude-sonnet-4-5-20250929",
		},
		Intel: testIntelConfig(),
	}
}

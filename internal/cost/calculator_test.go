package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCost(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(Rates{
		Anthropic: map[string]ModelRate{
			"test-model": {Input: 1.00, Output: 5.00, CacheWriteMul: 1.25, CacheReadMul: 0.1},
		},
	})

	// 1M input + 1M output at the configured rates.
	assert.InDelta(t, 6.00, calc.Claude("test-model", 1_000_000, 1_000_000, 0, 0), 1e-9)

	// Cache writes bill at input * 1.25, cache reads at input * 0.1.
	assert.InDelta(t, 1.25, calc.Claude("test-model", 0, 0, 1_000_000, 0), 1e-9)
	assert.InDelta(t, 0.10, calc.Claude("test-model", 0, 0, 0, 1_000_000), 1e-9)

	assert.Zero(t, calc.Claude("test-model", 0, 0, 0, 0))
}

func TestClaudeCostUnknownModel(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRates())
	assert.Zero(t, calc.Claude("some-future-model", 1_000_000, 1_000_000, 0, 0))
}

func TestSearchQueriesCost(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(Rates{Serper: SerperRate{PerQuery: 0.001}})
	assert.InDelta(t, 0.007, calc.SearchQueries(7), 1e-9)
	assert.Zero(t, calc.SearchQueries(0))
}

func TestDefaultRates(t *testing.T) {
	t.Parallel()

	rates := DefaultRates()

	haiku, ok := rates.Anthropic["claude-haiku-4-5-20251001"]
	require.True(t, ok)
	assert.InDelta(t, 0.80, haiku.Input, 1e-9)
	assert.InDelta(t, 4.00, haiku.Output, 1e-9)

	sonnet, ok := rates.Anthropic["claude-sonnet-4-5-20250929"]
	require.True(t, ok)
	assert.InDelta(t, 3.00, sonnet.Input, 1e-9)
	assert.InDelta(t, 15.00, sonnet.Output, 1e-9)

	assert.InDelta(t, 0.001, rates.Serper.PerQuery, 1e-9)
}

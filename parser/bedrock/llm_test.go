package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryfinder/parser"
	"pantryfinder/search"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	lastIn   *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.lastIn = input
	return m.response, m.err
}

func converseText(stopReason, text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: types.StopReason(stopReason),
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: text},
				},
			},
		},
		Metrics: &types.ConverseMetrics{LatencyMs: aws.Int64(42)},
		Usage:   &types.TokenUsage{InputTokens: aws.Int32(100), OutputTokens: aws.Int32(50)},
	}
}

func TestNewParser_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		expected Options
	}{
		{
			name:  "empty options uses defaults",
			input: Options{},
			expected: Options{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name: "custom options preserved",
			input: Options{
				ModelID:     "custom-model",
				MaxTokens:   4096,
				Temperature: 0.5,
				TopP:        0.8,
			},
			expected: Options{
				ModelID:     "custom-model",
				MaxTokens:   4096,
				Temperature: 0.5,
				TopP:        0.8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(&mockBedrockClient{}, tt.input)
			assert.Equal(t, tt.expected, p.opts)
		})
	}
}

func TestParser_Parse(t *testing.T) {
	brc := &mockBedrockClient{
		response: converseText("end_turn", `{
			"recipes": [
				{"id": "veggie-stir-fry", "title": "Veggie Stir Fry", "ingredients": ["rice", "broccoli"]},
				{"title": "Milk Pancakes", "ingredients": ["milk", "flour"]}
			],
			"reasoning_per_recipe": {"veggie-stir-fry": "uses the rice on hand"}
		}`),
	}
	p := NewParser(brc, Options{})

	out, err := p.Parse(context.Background(), parser.Input{
		SearchResults: []search.Result{{Title: "Veggie Stir Fry", URL: "https://example.com"}},
	})
	require.NoError(t, err)

	require.Len(t, out.Recipes, 2)
	assert.Equal(t, "veggie-stir-fry", out.Recipes[0].ID)
	assert.Equal(t, "milk-pancakes", out.Recipes[1].ID, "missing id must be slugged from the title")
	assert.Equal(t, "uses the rice on hand", out.Reasoning["veggie-stir-fry"])

	require.NotNil(t, brc.lastIn)
	require.Len(t, brc.lastIn.System, 1)
	require.Len(t, brc.lastIn.Messages, 1)
}

func TestParser_Parse_InvokeError(t *testing.T) {
	p := NewParser(&mockBedrockClient{err: errors.New("throttled")}, Options{})

	_, err := p.Parse(context.Background(), parser.Input{})
	assert.ErrorIs(t, err, parser.ErrUnavailable)
}

func TestParser_Parse_BadStopReasons(t *testing.T) {
	tests := []struct {
		name       string
		stopReason string
	}{
		{"max tokens", "max_tokens"},
		{"safety filtered", "content_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(&mockBedrockClient{response: converseText(tt.stopReason, "partial")}, Options{})
			_, err := p.Parse(context.Background(), parser.Input{})
			assert.Error(t, err)
		})
	}
}

func TestParser_Parse_NonJSONOutput(t *testing.T) {
	p := NewParser(&mockBedrockClient{response: converseText("end_turn", "Here are some nice recipes!")}, Options{})
	_, err := p.Parse(context.Background(), parser.Input{})
	assert.Error(t, err)
}

func TestParser_Parse_PrefersJSONBlock(t *testing.T) {
	out := &bedrockruntime.ConverseOutput{
		StopReason: types.StopReason("end_turn"),
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: "Sure, here is the JSON:"},
					&types.ContentBlockMemberText{Value: `{"recipes":[{"id":"toast","title":"Toast"}]}`},
				},
			},
		},
		Metrics: &types.ConverseMetrics{LatencyMs: aws.Int64(1)},
		Usage:   &types.TokenUsage{InputTokens: aws.Int32(1), OutputTokens: aws.Int32(1)},
	}

	p := NewParser(&mockBedrockClient{response: out}, Options{})
	parsed, err := p.Parse(context.Background(), parser.Input{})
	require.NoError(t, err)
	require.Len(t, parsed.Recipes, 1)
	assert.Equal(t, "toast", parsed.Recipes[0].ID)
}

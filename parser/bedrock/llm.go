package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"pantryfinder/parser"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Recipe extraction returns several structured recipes per call, so the
	// token ceiling sits higher than a typical single-answer invocation.
	defaultMaxTokens = 2048

	// Low temperature keeps outputs more deterministic, which is better for
	// structured JSON extraction.
	defaultTemperature = 0.2

	// Low top_p keeps outputs focused, same rationale as temperature.
	defaultTopP = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Parser implements the candidate-parser boundary over the Bedrock Converse
// API: one request in, one structured JSON object out, no tool-call loop.
type Parser struct {
	brc  bedrockRuntimeClient
	opts Options
}

func NewParser(brc bedrockRuntimeClient, opts Options) *Parser {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Parser{
		brc:  brc,
		opts: opts,
	}
}

func (p *Parser) Parse(ctx context.Context, in parser.Input) (parser.Output, error) {
	slog.Info("PARSER: Invoked",
		"search_results", len(in.SearchResults),
		"pantry_items", len(in.Pantry.Items),
		"previous_recipes", len(in.PreviousRecipes),
	)

	payload, err := buildUserPayload(in)
	if err != nil {
		return parser.Output{}, err
	}

	req := &bedrockruntime.ConverseInput{
		ModelId: &p.opts.ModelID,
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: payload},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(p.opts.MaxTokens),
			Temperature: aws.Float32(p.opts.Temperature),
			TopP:        aws.Float32(p.opts.TopP),
		},
	}

	out, err := p.brc.Converse(ctx, req)
	if err != nil {
		slog.Error("PARSER: Bedrock Claude invoke failed", "error", err)
		return parser.Output{}, fmt.Errorf("%w: %v", parser.ErrUnavailable, err)
	}

	slog.Info("PARSER: Bedrock Claude invoke succeeded",
		"stop_reason", out.StopReason,
		"latency_ms", aws.ToInt64(out.Metrics.LatencyMs),
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case "end_turn", "stop_sequence":
		return decodeOutput(out)

	case "max_tokens":
		slog.Warn("PARSER: Model hit MaxTokens limit; consider increasing MaxTokens")
		return parser.Output{}, fmt.Errorf("model hit MaxTokens limit; consider increasing MaxTokens")

	case "safety", "content_filtered":
		slog.Warn("PARSER: Model response blocked by Bedrock safety filters")
		return parser.Output{}, fmt.Errorf("model response blocked by Bedrock safety filters")

	default:
		return decodeOutput(out)
	}
}

func decodeOutput(out *bedrockruntime.ConverseOutput) (parser.Output, error) {
	text, err := textFromOutput(out)
	if err != nil {
		return parser.Output{}, err
	}
	if text == "" {
		return parser.Output{}, fmt.Errorf("empty model response")
	}

	var decoded parser.Output
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return parser.Output{}, fmt.Errorf("model output not valid JSON: %w", err)
	}

	normalized := parser.Normalize(decoded)
	slog.Info("PARSER: Extracted recipes", "count", len(normalized.Recipes))
	return normalized, nil
}

// textFromOutput returns assistant text optimized for structured extraction:
// 1) If any text block looks like a single JSON object, return the last such block.
// 2) Else, if there's only one text block, return it.
// 3) Else, join all text blocks with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil || out.Output == nil {
		return "", nil
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil || len(msg.Value.Content) == 0 {
		return "", nil
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	if len(texts) == 0 {
		return "", nil
	}

	// Prefer a single JSON object if present (typical for final output)
	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s, nil
		}
	}

	if len(texts) == 1 {
		return texts[0], nil
	}

	return strings.Join(texts, "\n"), nil
}

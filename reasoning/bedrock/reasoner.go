// Package bedrock is a reasoning backend on the Amazon Bedrock Converse API.
package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"nutriguide/reasoning"
)

const (
	// defaultModelID is an inference profile ID, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	defaultMaxTokens = 1024

	// Low temperature and top_p keep structured JSON output stable.
	defaultTemperature = 0.2
	defaultTopP        = 0.9
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

type Reasoner struct {
	brc  bedrockRuntimeClient
	opts Options
}

func New(brc bedrockRuntimeClient, opts Options) *Reasoner {
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
	return &Reasoner{brc: brc, opts: opts}
}

func (r *Reasoner) Invoke(ctx context.Context, prompt reasoning.Prompt) (reasoning.Result, error) {
	system, user, err := prompt.Render()
	if err != nil {
		return reasoning.Result{}, err
	}

	var sys []types.SystemContentBlock
	if system != "" {
		sys = append(sys, &types.SystemContentBlockMemberText{Value: system})
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(r.opts.ModelID),
		System:  sys,
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: user}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(r.opts.MaxTokens),
			Temperature: aws.Float32(r.opts.Temperature),
			TopP:        aws.Float32(r.opts.TopP),
		},
	}

	out, err := r.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock converse failed", "agent", prompt.Agent, "error", err)
		return reasoning.Result{}, err
	}

	res := reasoning.Result{Model: r.opts.ModelID}
	if out.Usage != nil {
		res.InputTokens = int(aws.ToInt32(out.Usage.InputTokens))
		res.OutputTokens = int(aws.ToInt32(out.Usage.OutputTokens))
	}
	var latency int64
	if out.Metrics != nil {
		latency = aws.ToInt64(out.Metrics.LatencyMs)
	}
	slog.Info("LLM_CLIENT: Bedrock converse succeeded",
		"agent", prompt.Agent,
		"stop_reason", out.StopReason,
		"latency_ms", latency,
		"input_tokens", res.InputTokens,
		"output_tokens", res.OutputTokens,
	)

	switch out.StopReason {
	case types.StopReasonMaxTokens:
		return reasoning.Result{}, fmt.Errorf("model hit MaxTokens limit (%d)", r.opts.MaxTokens)
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		return reasoning.Result{}, fmt.Errorf("model response blocked by Bedrock safety filters")
	}

	res.Text = textFromOutput(out)
	if res.Text == "" {
		return reasoning.Result{}, fmt.Errorf("model returned no text")
	}
	return res, nil
}

// textFromOutput prefers the last text block that is a JSON object, otherwise joins all text blocks.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	var texts []string
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s
		}
	}
	return strings.Join(texts, "\n")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/samber/oops"
)

// DefaultBaseURL is the OpenRouter endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrMissingAPIKey is returned when the client is configured without a key.
var ErrMissingAPIKey = errors.New("generation API key is required")

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	// JSONMode asks the endpoint to constrain output to a JSON object. Not
	// every model behind an aggregator supports it.
	JSONMode bool
	// MaxRetries is the number of transport-level retries inside one call.
	MaxRetries int
}

// Client implements Service against an OpenAI-compatible chat completions API.
type Client struct {
	api openai.Client
	cfg Config
}

var _ Service = (*Client)(nil)

// NewClient creates a generation client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		return nil, oops.Errorf("generation model is required")
	}
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	)
	return &Client{api: api, cfg: cfg}, nil
}

// ProposeLocations implements Service.
func (c *Client) ProposeLocations(ctx context.Context, target RoomContext) (LocationProposal, error) {
	data, err := c.complete(ctx, StageLocations, locationsPrompt, target)
	if err != nil {
		return LocationProposal{}, err
	}
	return DecodeLocations(data)
}

// ProposeInternalConnections implements Service.
func (c *Client) ProposeInternalConnections(ctx context.Context, rooms []Location, target RoomContext) (InternalConnections, error) {
	input := struct {
		Original RoomContext `json:"original"`
		Rooms    []Location  `json:"new_locations"`
	}{target, rooms}
	data, err := c.complete(ctx, StageInternal, internalPrompt, input)
	if err != nil {
		return InternalConnections{}, err
	}
	return DecodeInternalConnections(data)
}

// DistributeConnections implements Service.
func (c *Client) DistributeConnections(ctx context.Context, rooms []Location, conns []ExternalConnection) (Distribution, error) {
	input := struct {
		Rooms       []Location           `json:"new_locations"`
		Connections []ExternalConnection `json:"connections"`
	}{rooms, conns}
	data, err := c.complete(ctx, StageDistribution, distributionPrompt, input)
	if err != nil {
		return Distribution{}, err
	}
	return DecodeDistribution(data)
}

// complete sends one chat completion and returns the JSON object in the reply.
func (c *Client) complete(ctx context.Context, stage, prompt string, input any) ([]byte, error) {
	body, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, oops.With("stage", stage).Wrapf(err, "encode generation input")
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt + string(body)),
		},
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	RecordRequest(stage, err, time.Since(start))
	if err != nil {
		return nil, oops.With("stage", stage).
			With("model", c.cfg.Model).
			Wrapf(fmt.Errorf("%w: %w", ErrUnavailable, err), "chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, invalid(stage, errors.New("empty completion"))
	}
	slog.DebugContext(ctx, "generation response",
		"stage", stage,
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return ExtractJSON(resp.Choices[0].Message.Content), nil
}

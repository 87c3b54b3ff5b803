package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/sdg-pulse/internal/constants"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// CompletionProvider sends one prompt to one backend.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

// CompletionRequest is a prompt with params already resolved against the model spec.
type CompletionRequest struct {
	Model    string
	Endpoint string
	Prompt   string
	Params   Params
}

type ProviderResult struct {
	Text  string
	Model string
}

// OpenRouterConfig configures the OpenAI-compatible OpenRouter backend.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
	// HTTPClient is shared by every request; nil builds a pooled client.
	HTTPClient *http.Client
}

// OpenRouterProvider posts chat completions through openai-go pointed at OpenRouter.
type OpenRouterProvider struct {
	client     openai.Client
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenRouterProvider(cfg OpenRouterConfig, logger *zap.Logger) *OpenRouterProvider {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        constants.LLMConfig.MaxIdleConns,
				MaxIdleConnsPerHost: constants.LLMConfig.MaxIdleConns,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", cfg.Referer),
		option.WithHeader("X-Title", cfg.Title),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenRouterProvider{
		client:     openai.NewClient(opts...),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (o *OpenRouterProvider) Name() string {
	return "OpenRouter"
}

func (o *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (ProviderResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	extra := applyChatParams(&params, req.Params)

	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = "chat/completions"
	}

	o.logger.Debug("Requesting completion",
		zap.String("model", req.Model),
		zap.String("endpoint", endpoint),
		zap.Int("params", len(req.Params)),
	)

	var resp openai.ChatCompletion
	if err := o.client.Post(ctx, endpoint, params, &resp, extra...); err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return ProviderResult{}, apperrors.NewAPIError("completion request failed", req.Model, status, err)
	}

	if len(resp.Choices) == 0 {
		return ProviderResult{}, apperrors.NewAPIError("no choices in completion response", req.Model, http.StatusOK, nil)
	}

	text := resp.Choices[0].Message.Content
	o.logger.Debug("Completion received",
		zap.String("model", req.Model),
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return ProviderResult{Text: text, Model: req.Model}, nil
}

// Ping lists models, which costs no tokens.
func (o *OpenRouterProvider) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out map[string]any
	if err := o.client.Get(ctx, "models", nil, &out); err != nil {
		o.logger.Debug("OpenRouter ping failed", zap.Error(err))
		return false
	}
	return true
}

// Close releases pooled idle connections.
func (o *OpenRouterProvider) Close() {
	o.httpClient.CloseIdleConnections()
}

// applyChatParams sets typed fields for known params and returns JSON overrides
// for the rest (top_k, repetition_penalty, ...), which OpenRouter accepts as-is.
func applyChatParams(params *openai.ChatCompletionNewParams, values Params) []option.RequestOption {
	var extra []option.RequestOption
	for key, value := range values {
		switch key {
		case "temperature":
			if f, ok := toFloat(value); ok {
				params.Temperature = openai.Float(f)
			}
		case "top_p":
			if f, ok := toFloat(value); ok {
				params.TopP = openai.Float(f)
			}
		case "presence_penalty":
			if f, ok := toFloat(value); ok {
				params.PresencePenalty = openai.Float(f)
			}
		case "frequency_penalty":
			if f, ok := toFloat(value); ok {
				params.FrequencyPenalty = openai.Float(f)
			}
		case "max_tokens":
			if n, ok := toInt(value); ok {
				params.MaxTokens = openai.Int(n)
			}
		case "seed":
			if n, ok := toInt(value); ok {
				params.Seed = openai.Int(n)
			}
		case "response_format":
			if isJSONFormat(value) {
				params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
					OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
				}
			}
		default:
			extra = append(extra, option.WithJSONSet(key, value))
		}
	}
	return extra
}

// GeminiProvider is the optional fallback backend. It ignores the requested
// OpenRouter model id and uses its own default model.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
		logger:       logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	genConfig := &genai.GenerateContentConfig{}
	if f, ok := toFloat(req.Params["temperature"]); ok {
		temp := float32(f)
		genConfig.Temperature = &temp
	}
	if f, ok := toFloat(req.Params["top_p"]); ok {
		topP := float32(f)
		genConfig.TopP = &topP
	}
	if n, ok := toInt(req.Params["max_tokens"]); ok {
		genConfig.MaxOutputTokens = int32(n)
	}
	if isJSONFormat(req.Params["response_format"]) {
		genConfig.ResponseMIMEType = "application/json"
	}

	g.logger.Info("Fallback: Generating with Gemini",
		zap.String("model", g.defaultModel),
		zap.String("requested_model", req.Model),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: req.Prompt}}},
	}, genConfig)
	if err != nil {
		return ProviderResult{}, apperrors.NewAPIError("gemini generation failed", g.defaultModel, 0, err)
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		return ProviderResult{}, apperrors.NewAPIError("empty response from Gemini", g.defaultModel, http.StatusOK, nil)
	}
	return ProviderResult{Text: text, Model: g.defaultModel}, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	temp := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, &genai.GenerateContentConfig{Temperature: &temp, MaxOutputTokens: 10})
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}
	return extractTextFromGeminiResponse(resp) != ""
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

func isJSONFormat(value any) bool {
	switch v := value.(type) {
	case string:
		return v == "json" || v == "json_object"
	case map[string]any:
		return v["type"] == "json_object"
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

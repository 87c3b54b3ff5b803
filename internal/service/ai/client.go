package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/kapu/sdg-pulse/internal/util"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoResult marks a call that produced nothing usable. Callers treat it as a
// soft failure of the item, never as a reason to abort the batch.
var ErrNoResult = errors.New("no result")

// Request is one completion call. Overrides win over the model defaults and
// are filtered down to the model's supported params.
type Request struct {
	Model     string
	Prompt    string
	Overrides Params
}

// CompletionCache stores raw completion text by request fingerprint.
type CompletionCache interface {
	GetCompletion(ctx context.Context, key string) (string, bool, error)
	SetCompletion(ctx context.Context, key, text string) error
	DeleteCompletion(ctx context.Context, key string) error
}

// Forgetter is implemented by completers that cache replies. Drivers call
// Forget on replies they reject.
type Forgetter interface {
	Forget(ctx context.Context, reply *Reply)
}

// ForgetRejected forgets reply when completer supports it.
func ForgetRejected(ctx context.Context, completer any, reply *Reply) {
	if f, ok := completer.(Forgetter); ok {
		f.Forget(ctx, reply)
	}
}

type ClientConfig struct {
	Timeout  time.Duration
	Primary  CompletionProvider
	Fallback CompletionProvider
	Cache    CompletionCache
}

// Client is the one completion client a pipeline run holds. It owns the
// outbound connection pool; call Close once batch work is done.
type Client struct {
	registry       *Registry
	primary        CompletionProvider
	fallback       CompletionProvider
	cache          CompletionCache
	timeout        time.Duration
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

func NewClient(registry *Registry, cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if registry == nil {
		return nil, fmt.Errorf("model registry must not be nil")
	}
	if cfg.Primary == nil {
		return nil, fmt.Errorf("primary completion provider must not be nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.LLMConfig.RequestTimeout
	}

	c := &Client{
		registry: registry,
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		cache:    cfg.Cache,
		timeout:  timeout,
		logger:   logger,
	}
	c.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		c.healthCheckPing,
		logger,
	)

	if c.fallback != nil {
		logger.Info("Completion fallback enabled", zap.String("provider", c.fallback.Name()))
	}

	return c, nil
}

func (c *Client) Registry() *Registry {
	return c.registry
}

// Call issues one completion. Any transport error, non-2xx reply or timeout is
// logged and returned wrapped in ErrNoResult. The fallback provider, when set,
// is tried after a primary failure, or first while the circuit is open.
func (c *Client) Call(ctx context.Context, req Request) (*Reply, error) {
	spec, err := c.registry.Model(req.Model)
	if err != nil {
		return nil, err
	}

	params, dropped := spec.Resolve(req.Overrides)
	if len(dropped) > 0 {
		c.logger.Debug("Dropping unsupported params",
			zap.String("model", req.Model),
			zap.Strings("params", dropped),
		)
	}

	cacheKey := ""
	if c.cache != nil {
		cacheKey = fingerprint(req.Model, req.Prompt, params)
		if text, ok, err := c.cache.GetCompletion(ctx, cacheKey); err == nil && ok {
			reply := NewReply(text)
			reply.Metadata = GenerateMetadata{Provider: "cache", Model: req.Model, Cached: true, CacheKey: cacheKey}
			return reply, nil
		}
	}

	creq := CompletionRequest{
		Model:    req.Model,
		Endpoint: spec.Endpoint,
		Prompt:   req.Prompt,
		Params:   params,
	}

	var errs []error
	for _, provider := range c.route(req.Model) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := provider.Complete(callCtx, creq)
		cancel()

		isPrimary := provider == c.primary
		if err != nil {
			if isPrimary {
				c.recordFailure(err)
			}
			c.logger.Warn("LLM call error",
				zap.String("provider", provider.Name()),
				zap.String("model", req.Model),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}

		if isPrimary {
			c.circuitBreaker.RecordSuccess()
		}

		if c.cache != nil {
			if err := c.cache.SetCompletion(ctx, cacheKey, result.Text); err != nil {
				c.logger.Debug("Completion cache write failed", zap.Error(err))
			}
		}

		reply := NewReply(result.Text)
		reply.Metadata = GenerateMetadata{
			Provider:     provider.Name(),
			Model:        result.Model,
			UsedFallback: !isPrimary,
			CacheKey:     cacheKey,
		}
		return reply, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoResult, errors.Join(errs...))
}

// route orders the providers for one call. An open circuit moves the fallback
// ahead of the primary but never removes the primary, so sibling failures can
// delay an item's primary attempt and never replace it.
func (c *Client) route(model string) []CompletionProvider {
	if c.fallback == nil {
		return []CompletionProvider{c.primary}
	}
	if c.circuitBreaker.CanExecute() {
		return []CompletionProvider{c.primary, c.fallback}
	}

	status := c.circuitBreaker.GetStatus()
	nextRetry := "unknown"
	if status.NextRetryTime != nil {
		nextRetry = status.NextRetryTime.Format(time.RFC3339)
	}
	c.logger.Debug("Circuit OPEN, trying fallback first",
		zap.String("model", model),
		zap.String("fallback", c.fallback.Name()),
		zap.Int("failure_count", status.FailureCount),
		zap.String("next_retry", nextRetry),
	)
	return []CompletionProvider{c.fallback, c.primary}
}

// Forget drops the cached copy of a reply the caller rejected, so a later run
// of the same prompt reaches the model again.
func (c *Client) Forget(ctx context.Context, reply *Reply) {
	if c.cache == nil || reply == nil || reply.Metadata.CacheKey == "" {
		return
	}
	if err := c.cache.DeleteCompletion(ctx, reply.Metadata.CacheKey); err != nil {
		c.logger.Debug("Completion cache delete failed", zap.Error(err))
	}
}

// CallTask resolves a task and calls its model with the task params, letting
// extra override them.
func (c *Client) CallTask(ctx context.Context, task string, prompt string, extra Params) (*Reply, error) {
	resolved, err := c.registry.Resolve(task)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{
		Model:     resolved.Model,
		Prompt:    prompt,
		Overrides: resolved.Params.Merge(extra),
	})
}

// CallSync blocks on a fresh context bounded by the request timeout. It is for
// top-level callers only; code running inside a batch must pass its own context to Call.
func (c *Client) CallSync(req Request) (*Reply, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.Call(ctx, req)
}

// Close releases pooled connections held by the providers.
func (c *Client) Close() {
	for _, p := range []CompletionProvider{c.primary, c.fallback} {
		if closer, ok := p.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

func (c *Client) CircuitStatus() util.CircuitBreakerStatus {
	return c.circuitBreaker.GetStatus()
}

func (c *Client) recordFailure(err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			c.circuitBreaker.RecordFailure(0)
		}
		return
	}
	if !apiErr.IsServerSide() {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if apiErr.IsRateLimited() {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	c.circuitBreaker.RecordFailure(timeout)
}

// healthCheckPing probes the primary only; the circuit tracks its health.
func (c *Client) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	ok := c.primary.Ping(ctx)
	c.logger.Info("Health Check: Result", zap.String("provider", c.primary.Name()), zap.Bool("healthy", ok))
	return ok
}

func fingerprint(model, prompt string, params Params) string {
	encoded, _ := json.Marshal(params)
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil))
}

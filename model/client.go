package model

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sygra-go/sygra/metrics"
	"github.com/sygra-go/sygra/structured"
	"github.com/sygra-go/sygra/types"
)

var tracer = otel.Tracer("github.com/sygra-go/sygra/model")

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

// WithLogger attaches a zap logger; nil defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps dispatch to qps requests/sec per model, supplementing
// the retry loop's delay-based pacing (not part of the original source;
// a natural extension of the load balancer's per-URL bookkeeping, see
// SPEC_FULL.md DOMAIN STACK).
func WithRateLimit(qps float64) ClientOption {
	return func(c *Client) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), int(math.Max(1, qps)))
		}
	}
}

// WithProcessExiter overrides the server-down breaker's trip action; tests
// substitute a non-exiting stub.
func WithProcessExiter(exit ProcessExiter) ClientOption {
	return func(c *Client) { c.exit = exit }
}

// Client is the vendor-agnostic callable wrapping one model's retry loop,
// load balancing, structured-output coercion, stats, and circuit breaker
// (spec §4.2).
type Client struct {
	cfg       *Config
	adapter   Adapter
	transport Transport
	logger    *zap.Logger
	limiter   *rate.Limiter
	exit      ProcessExiter

	lb      *loadBalancer
	stats   *stats
	breaker *serverDownBreaker

	schema    *structured.JSONSchema
	validator structured.Validator
	// structuredMu serializes structured-output attempts for this model
	// instance (spec §4.2 point 4; replaces the source's per-call
	// asyncio.Lock — see SPEC_FULL/DESIGN "Design Notes" on this point).
	structuredMu sync.Mutex
}

// NewClient builds a Client for one model. seed deterministically seeds the
// load balancer's tie-break RNG (tests pass a fixed seed for reproducible
// fairness checks; production passes a value derived from process start).
func NewClient(cfg *Config, adapter Adapter, transport Transport, seed int64, opts ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()

	c := &Client{
		cfg:       cfg,
		adapter:   adapter,
		transport: transport,
		logger:    zap.NewNop(),
		lb:        newLoadBalancer(cfg, seed),
		validator: structured.NewValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats = newStats(cfg.Name, cfg.StatsInterval, c.logger)
	c.breaker = newServerDownBreaker(cfg.Name, cfg.ServerDownEnabled(), c.logger, c.exit)

	if cfg.StructuredOutput.Enabled && cfg.StructuredOutput.Schema != nil {
		schema, err := structured.FromConfigValue(cfg.StructuredOutput.Schema)
		if err != nil {
			return nil, types.NewError(types.ErrConfigInvalid, "invalid structured_output.schema").WithCause(err)
		}
		c.schema = schema
	}
	return c, nil
}

// Call issues one logical model call: native-or-plain generation depending
// on whether structured output is configured, through the retry loop.
func (c *Client) Call(ctx context.Context, messages []types.Message, params GenerationParams) (*types.ModelResponse, error) {
	ctx, span := tracer.Start(ctx, "model.Call", trace.WithAttributes(attribute.String("model", c.cfg.Name)))
	defer span.End()

	metrics.ModelPromptTokens.WithLabelValues(c.cfg.Name).Observe(float64(EstimateTokens(messages)))

	var resp *types.ModelResponse
	var err error
	if c.schema != nil {
		resp, err = c.callStructured(ctx, messages, params)
	} else {
		resp, err = c.callWithRetry(ctx, messages, params, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

// callStructured implements spec §4.2 "Structured output": native attempt
// first when supported, schema-validate, and fall back to instruction-based
// prompting plus post-hoc parsing on any failure. Serialized per model
// instance.
func (c *Client) callStructured(ctx context.Context, messages []types.Message, params GenerationParams) (*types.ModelResponse, error) {
	c.structuredMu.Lock()
	defer c.structuredMu.Unlock()

	if c.adapter.NativeStructuredOutputSupported() {
		schemaBytes, err := c.schema.ToJSON()
		if err == nil {
			resp, callErr := c.callWithRetry(ctx, messages, params, schemaBytes)
			if callErr == nil && resp.OK() {
				if verr := c.validator.Validate([]byte(resp.Text), c.schema); verr == nil {
					return resp, nil
				}
			}
		}
	}

	// Fallback: append format instructions to the final user message and
	// re-invoke the plain generation path through the same retry loop.
	fallbackMessages := appendFormatInstructions(messages, c.schema)
	resp, err := c.callWithRetry(ctx, fallbackMessages, params, nil)
	if err != nil {
		return resp, err
	}
	if !resp.OK() {
		return resp, nil
	}

	canonical, ok, perr := structured.ParseFallback(resp.Text, c.schema, c.validator)
	if !ok {
		c.logger.Warn("structured-output fallback exhausted, returning raw text",
			zap.String("model", c.cfg.Name), zap.Error(perr))
		return resp, nil
	}
	resp.Text = string(canonical)
	return resp, nil
}

func appendFormatInstructions(messages []types.Message, schema *structured.JSONSchema) []types.Message {
	out := make([]types.Message, len(messages))
	copy(out, messages)
	instructions := structured.FormatInstructions(schema)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == types.RoleUser {
			out[i].Content = out[i].Text() + "\n\n" + instructions
			return out
		}
	}
	return append(out, types.NewUserMessage(instructions))
}

// callWithRetry runs the exponential-backoff retry loop (spec §4.2 "Retry
// loop"; ported from custom_models.py's _call_with_retry /
// tenacity.AsyncRetrying configuration).
func (c *Client) callWithRetry(ctx context.Context, messages []types.Message, params GenerationParams, schema []byte) (*types.ModelResponse, error) {
	var resp *types.ModelResponse
	var err error

	attempts := c.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if sleepErr := sleepCtx(ctx, c.cfg.Delay); sleepErr != nil {
			return nil, sleepErr
		}
		if c.limiter != nil {
			if waitErr := c.limiter.Wait(ctx); waitErr != nil {
				return nil, waitErr
			}
		}

		resp, err = c.doOnce(ctx, messages, params, schema)
		if err != nil {
			return nil, err
		}
		resp.Attempts = attempt

		if resp.StatusCode == 200 || !types.RetryableStatusSet[resp.StatusCode] {
			metrics.ModelRetryAttempts.WithLabelValues(c.cfg.Name).Observe(float64(attempt))
			return resp, nil
		}
		if attempt == attempts {
			metrics.ModelRetryAttempts.WithLabelValues(c.cfg.Name).Observe(float64(attempt))
			break
		}

		backoff := exponentialJitterBackoff(attempt)
		if sleepErr := sleepCtx(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return resp, nil
}

// exponentialJitterBackoff returns a duration uniformly distributed in
// [0, 2^attempt) seconds, bounding total wait by Σ 2^i for i in
// [0, attempts-1] (spec §8 invariant 5).
func exponentialJitterBackoff(attempt int) time.Duration {
	maxSeconds := math.Pow(2, float64(attempt))
	jittered := rand.Float64() * maxSeconds
	return time.Duration(jittered * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// doOnce performs exactly one attempt: acquire a URL via the load balancer,
// build and dispatch the request, parse the response, update stats and the
// circuit breaker, release the URL, and apply post-processing on success.
func (c *Client) doOnce(ctx context.Context, messages []types.Message, params GenerationParams, schema []byte) (*types.ModelResponse, error) {
	modelParams, err := c.lb.Acquire()
	if err != nil {
		return nil, err
	}
	defer c.lb.Release(modelParams.URL)

	wireReq, err := c.adapter.BuildRequest(messages, params, schema)
	if err != nil {
		return nil, err
	}

	status, body, transportErr := c.transport.Do(ctx, modelParams, wireReq)
	if transportErr != nil {
		if recovered, ok := statusFromBody(body); ok {
			status = recovered
		} else if status == 0 {
			status = types.ParseErrorStatus
		}
	}

	resp, parseErr := c.adapter.ParseResponse(body, status)
	if parseErr != nil {
		resp = &types.ModelResponse{StatusCode: types.ParseErrorStatus, ErrorText: parseErr.Error()}
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = status
	}

	c.stats.Record(resp.StatusCode, resp.ErrorText)
	c.breaker.Observe(resp.StatusCode)

	if resp.OK() {
		resp.Text = applyPostProcess(resp.Text, c.cfg)
	}
	return resp, nil
}

// Ping sends a trivial message to every configured URL and returns the
// worst (highest, non-200-prioritized) status observed, used by the batch
// orchestrator's startup check (spec §4.5 "Startup").
func (c *Client) Ping(ctx context.Context) int {
	worst := 200
	for _, url := range c.cfg.URL {
		params := types.ModelParams{URL: url}
		if len(c.cfg.AuthToken) == 1 {
			params.AuthToken = c.cfg.AuthToken[0]
		}
		wireReq, err := c.adapter.BuildRequest([]types.Message{types.NewUserMessage("hello")}, GenerationParams{}, nil)
		if err != nil {
			c.logger.Error("ping: build request failed", zap.String("url", url), zap.Error(err))
			worst = 599
			continue
		}
		status, _, err := c.transport.Do(ctx, params, wireReq)
		if err != nil || status != 200 {
			c.logger.Error("ping failed for model url", zap.String("model", c.cfg.Name), zap.String("url", url), zap.Int("status", status))
			if status > worst || worst == 200 {
				worst = status
				if worst == 0 {
					worst = 599
				}
			}
		}
	}
	return worst
}

// Stats exposes the model's call-count/response-code snapshot for the
// metrics package.
func (c *Client) Stats() (total int64, codes map[int]int64, errs map[errorCategory]int64) {
	return c.stats.Snapshot()
}

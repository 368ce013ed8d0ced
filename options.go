package matchengine

import (
	"go.uber.org/zap"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	dimension    int
	maxBatchSize int

	embedder     Embedder
	openAI       *OpenAIConfig
	instruction  string
	budget       *BudgetConfig
	cacheAddr    string
	cachePass    string
	enableCache  bool
	enableMetric bool

	logger *zap.Logger
}

// OpenAIConfig configures an OpenAI-compatible embedding provider.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // empty = api.openai.com
	Model      string // empty = default model
	Dimensions int    // 0 = provider default
	Provider   string // metrics label, e.g. "nebius" (default "openai")
}

// BudgetConfig limits embedding token spend. A limit of 0 means unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64
	MonthlyTokenLimit int64
	Reject            bool // true: block requests over budget; false: warn only
}

// WithDimension fixes the vector dimension up front. Without it the
// dimension is inferred from the first upserted record.
func WithDimension(dim int) Option {
	return optionFunc(func(c *engineConfig) {
		c.dimension = dim
	})
}

// WithMaxBatchSize sets the maximum number of items per batch operation.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *engineConfig) {
		c.maxBatchSize = size
	})
}

// WithEmbedder sets a custom text embedding provider. Without an embedder
// option the engine uses a deterministic hash embedder, suitable for
// development and tests only.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *engineConfig) {
		c.embedder = e
	})
}

// WithOpenAI wires an OpenAI-compatible embedding API as the provider.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *engineConfig) {
		c.openAI = &cfg
	})
}

// WithInstruction prepends an instruction prefix to every embedded text.
// Instruction-tuned models (e.g. Qwen3-Embedding) rank better with it.
func WithInstruction(instruction string) Option {
	return optionFunc(func(c *engineConfig) {
		c.instruction = instruction
	})
}

// WithBudget enforces a token budget on the embedding provider.
func WithBudget(cfg BudgetConfig) Option {
	return optionFunc(func(c *engineConfig) {
		c.budget = &cfg
	})
}

// WithRedisCache caches embeddings (and persists budget counters) in
// Redis or Valkey. The index itself stays in memory.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *engineConfig) {
		c.enableCache = true
		c.cacheAddr = addr
		c.cachePass = password
	})
}

// WithLogger enables structured logging for engine operations.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithMetrics registers engine and embedding Prometheus metrics on the
// default registry. Call at most once per process.
func WithMetrics() Option {
	return optionFunc(func(c *engineConfig) {
		c.enableMetric = true
	})
}

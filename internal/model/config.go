package model

import (
	"fmt"
	"time"
)

// Config is the complete pipeline configuration. It is constructed once
// from defaults, config file, environment and flags, validated, and then
// passed into component constructors. Components never read process-wide
// state at call time.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Risk        RiskConfig        `yaml:"risk" mapstructure:"risk"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Patient     PatientConfig     `yaml:"patient" mapstructure:"patient"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// StoreConfig configures the SQLite-backed triple store
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Database file path
}

// RetrievalConfig tunes the retrieval layer
type RetrievalConfig struct {
	TopK          int           `yaml:"top_k" mapstructure:"top_k"`                     // Ranked evidence cap after merging
	MaxPerVariant int           `yaml:"max_per_variant" mapstructure:"max_per_variant"` // Result cap per query variant
	MinEvidence   int           `yaml:"min_evidence" mapstructure:"min_evidence"`       // Below this, the lexical path triggers
	UnionVariants bool          `yaml:"union_variants" mapstructure:"union_variants"`   // Union all variants instead of stopping at first hit
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`                 // Per-retriever-call timeout
}

// VerifyConfig tunes the claim verifier
type VerifyConfig struct {
	MinOverlap int `yaml:"min_overlap" mapstructure:"min_overlap"` // Shared content words required for support
}

// RiskConfig tunes the risk gate. Threshold is tau, supplied externally
// and tuned on held-out data; the gate never mutates it.
type RiskConfig struct {
	Threshold        float64 `yaml:"threshold" mapstructure:"threshold"`
	VerdictWeight    float64 `yaml:"verdict_weight" mapstructure:"verdict_weight"`       // Unsupported-claim fraction term
	EvidenceWeight   float64 `yaml:"evidence_weight" mapstructure:"evidence_weight"`     // Evidence-strength term
	ConfidenceWeight float64 `yaml:"confidence_weight" mapstructure:"confidence_weight"` // Model self-confidence term
}

// CacheConfig configures query-result caching in front of the store
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// LLMConfig configures the generation collaborator
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // grounded, openai, ollama, anthropic
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"-" mapstructure:"-"` // From environment only, never persisted
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
	RewriteQueries bool    `yaml:"rewrite_queries" mapstructure:"rewrite_queries"` // Enrich questions with patient context via the provider
}

// PatientConfig configures the patient-record collaborator
type PatientConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file; empty disables patient context
}

// ConcurrencyConfig limits parallel work
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // Batch evaluation workers
	VerifyWorkers int `yaml:"verify_workers" mapstructure:"verify_workers"` // Parallel claim verifications per answer
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path: "graphgate.db",
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MaxPerVariant: 50,
			MinEvidence:   1,
			UnionVariants: false,
			Timeout:       10 * time.Second,
		},
		Verify: VerifyConfig{
			MinOverlap: 3,
		},
		Risk: RiskConfig{
			Threshold:        0.5,
			VerdictWeight:    0.6,
			EvidenceWeight:   0.4,
			ConfidenceWeight: 0,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     15 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:       "grounded",
			Timeout:        30,
			MaxTokens:      1000,
			RequestsPerSec: 2,
			Burst:          5,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       4,
			VerifyWorkers: 8,
		},
	}
}

// Validate rejects misconfiguration up front so per-question processing
// never has to
func (c Config) Validate() error {
	if c.Risk.Threshold < 0 || c.Risk.Threshold > 1 {
		return fmt.Errorf("risk threshold must be in [0,1], got %v", c.Risk.Threshold)
	}
	if c.Risk.VerdictWeight < 0 || c.Risk.EvidenceWeight < 0 || c.Risk.ConfidenceWeight < 0 {
		return fmt.Errorf("risk weights must be non-negative")
	}
	if c.Risk.VerdictWeight+c.Risk.EvidenceWeight+c.Risk.ConfidenceWeight == 0 {
		return fmt.Errorf("at least one risk weight must be positive")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxPerVariant <= 0 {
		return fmt.Errorf("retrieval max_per_variant must be positive, got %d", c.Retrieval.MaxPerVariant)
	}
	if c.Retrieval.MinEvidence < 0 {
		return fmt.Errorf("retrieval min_evidence must be non-negative, got %d", c.Retrieval.MinEvidence)
	}
	if c.Verify.MinOverlap <= 0 {
		return fmt.Errorf("verify min_overlap must be positive, got %d", c.Verify.MinOverlap)
	}
	switch c.Cache.Backend {
	case "", "memory", "disk", "layered", "redis":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	return nil
}

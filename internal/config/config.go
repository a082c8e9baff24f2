// Package config loads and validates the Veritas process configuration:
// store backends, ingest feeds, the orchestrator's concurrency knobs, the
// lexicon/router/scorer/adapter overrides, and the ambient logging section,
// in a load-then-default-then-override-then-validate pass.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obelus-labs/veritas/internal/adapter"
	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/obelus-labs/veritas/internal/scorer"
)

// Config is the process-wide configuration tree.
type Config struct {
	Store        StoreConfig            `yaml:"store"`
	Redis        RedisConfig            `yaml:"redis"`
	Kafka        KafkaConfig            `yaml:"kafka"`
	SSE          SSEConfig              `yaml:"sse"`
	Orchestrator OrchestratorConfig     `yaml:"orchestrator"`
	RateLimit    RateLimitConfig        `yaml:"rate_limit"`
	Logging      Logging                `yaml:"logging"`
	Lexicons     LexiconConfig          `yaml:"lexicons"`
	Router       RouterConfig           `yaml:"router"`
	Scorer       ScorerConfig           `yaml:"scorer"`
	Adapters     map[string]AdapterEntry `yaml:"adapters"`
}

// LexiconConfig selects the word lists the deterministic core consults.
// An empty Path keeps the built-in lexicon.Default() table; a non-empty
// Path is loaded as a YAML lexicon.Lexicon document instead.
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// RouterConfig overrides the Smart Router's data-driven routing table
// (§4.E). Every field is optional; an empty/zero field keeps
// router.DefaultConfig()'s corresponding value. CategoryDefaults and
// SignalBoosts are keyed by the router's string-backed Category/Signal/
// SourceID constants so they round-trip through YAML without a custom
// unmarshaler.
type RouterConfig struct {
	Cap              int                         `yaml:"cap"`
	CategoryDefaults map[string][]string         `yaml:"category_defaults"`
	SignalBoosts     map[string]map[string]int    `yaml:"signal_boosts"`
}

// ScorerConfig overrides the §4.G weight table (scorer.Weights). A zero
// field keeps scorer.DefaultWeights()'s corresponding value, so an operator
// only needs to name the weights they want to retune.
type ScorerConfig struct {
	TokenOverlap           float64 `yaml:"token_overlap"`
	EntityMatch            float64 `yaml:"entity_match"`
	NumberMatch            float64 `yaml:"number_match"`
	NumberUnitBonus        float64 `yaml:"number_unit_bonus"`
	KeyphraseAlignment     float64 `yaml:"keyphrase_alignment"`
	EvidenceTypeWeight     float64 `yaml:"evidence_type_weight"`
	TemporalAlignment      float64 `yaml:"temporal_alignment"`
	SupportedMinScore      float64 `yaml:"supported_min_score"`
	PartialMinScore        float64 `yaml:"partial_min_score"`
	PartialMaxScore        float64 `yaml:"partial_max_score"`
	TemporalFullWindowDays float64 `yaml:"temporal_full_window_days"`
	TemporalDecayYears     float64 `yaml:"temporal_decay_years"`
	TemporalStalePenalty   float64 `yaml:"temporal_stale_penalty"`
}

// AdapterEntry overrides one reference evidence adapter's base URL,
// credential, timeout and rate limit (§4.F/§10 "Adapters: per-source base
// URL, API key env var name, timeout, rate-limit refill/burst"), keyed in
// Config.Adapters by the adapter's source_api string ("sec_edgar", "fred",
// ...).
type AdapterEntry struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	TimeoutS       float64 `yaml:"timeout_s"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// StoreConfig selects and configures the system-of-record backend plus the
// optional Elasticsearch enrichment index (§6: SQLite is the system of
// record, Elasticsearch is never).
type StoreConfig struct {
	Backend       string              `yaml:"backend"` // "sqlite" or "memory"
	SQLitePath    string              `yaml:"sqlite_path"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
}

// ElasticsearchConfig configures the optional claim-search enrichment index.
type ElasticsearchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	IndexName string `yaml:"index_name"`
}

// RedisConfig configures the distributed completion buffer (§5 [EXPANSION]).
type RedisConfig struct {
	URL string `yaml:"url"`
}

// KafkaConfig configures the transcript-segments ingest feed.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
	Topic   string   `yaml:"topic"`
}

// SSEConfig configures the plain-text live-stream ingest feed.
type SSEConfig struct {
	URL              string  `yaml:"url"`
	SegmentDurationS float64 `yaml:"segment_duration_s"`
	MaxSegments      int     `yaml:"max_segments"`
}

// OrchestratorConfig configures the per-claim adapter fan-out and the
// per-source run deadline (§5).
type OrchestratorConfig struct {
	FanoutConcurrency int           `yaml:"fanout_concurrency"`
	PerSourceDeadline time.Duration `yaml:"per_source_deadline"`
}

// RateLimitConfig configures the shared per-adapter token-bucket defaults
// (§5), applied to every source id registered in the adapter registry.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Logging configures the root zerolog logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads configPath, applies defaults and environment overrides,
// and validates the result. Any failure here is a ConfigError-class
// condition: callers fail fast at startup rather than run with a partially
// valid configuration (§7).
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/veritas.db"
	}
	if cfg.Store.Elasticsearch.URL == "" {
		cfg.Store.Elasticsearch.URL = "http://localhost:9200"
	}
	if cfg.Store.Elasticsearch.IndexName == "" {
		cfg.Store.Elasticsearch.IndexName = "veritas-claims"
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "veritas"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "veritas.transcript-segments"
	}

	if cfg.SSE.SegmentDurationS == 0 {
		cfg.SSE.SegmentDurationS = 5.0
	}
	if cfg.SSE.MaxSegments == 0 {
		cfg.SSE.MaxSegments = 200
	}

	if cfg.Orchestrator.FanoutConcurrency == 0 {
		cfg.Orchestrator.FanoutConcurrency = 4
	}

	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 1
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func overrideWithEnv(cfg *Config) {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if esURL := os.Getenv("ES_URL"); esURL != "" {
		cfg.Store.Elasticsearch.URL = esURL
	}
	if sqlitePath := os.Getenv("SQLITE_PATH"); sqlitePath != "" {
		cfg.Store.SQLitePath = sqlitePath
	}
	if sseURL := os.Getenv("SSE_URL"); sseURL != "" {
		cfg.SSE.URL = sseURL
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if fanout := os.Getenv("FANOUT_CONCURRENCY"); fanout != "" {
		if n, err := strconv.Atoi(fanout); err == nil {
			cfg.Orchestrator.FanoutConcurrency = n
		}
	}
	if deadline := os.Getenv("PER_SOURCE_DEADLINE"); deadline != "" {
		if d, err := time.ParseDuration(deadline); err == nil {
			cfg.Orchestrator.PerSourceDeadline = d
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Store.Backend != "sqlite" && cfg.Store.Backend != "memory" {
		return fmt.Errorf("store backend must be 'sqlite' or 'memory', got %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.SQLitePath == "" {
		return fmt.Errorf("sqlite_path must not be empty when store backend is sqlite")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers must not be empty")
	}
	if cfg.Orchestrator.FanoutConcurrency <= 0 {
		return fmt.Errorf("orchestrator fanout_concurrency must be positive")
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit requests_per_second must be positive")
	}
	return nil
}

// Load builds a *lexicon.Lexicon from this configuration: the built-in
// lexicon.Default() table when Path is empty, or the YAML document at Path
// otherwise.
func (c LexiconConfig) Load() (*lexicon.Lexicon, error) {
	if c.Path == "" {
		return lexicon.Default(), nil
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	return lexicon.Load(data)
}

// ToRouterConfig converts this section into a router.Config, starting from
// router.DefaultConfig() and overlaying any fields this section sets.
func (c RouterConfig) ToRouterConfig() router.Config {
	cfg := router.DefaultConfig()

	if c.Cap > 0 {
		cfg.Cap = c.Cap
	}

	if len(c.CategoryDefaults) > 0 {
		overridden := make(map[model.Category][]router.SourceID, len(c.CategoryDefaults))
		for cat, sources := range c.CategoryDefaults {
			ids := make([]router.SourceID, len(sources))
			for i, s := range sources {
				ids[i] = router.SourceID(s)
			}
			overridden[model.Category(cat)] = ids
		}
		cfg.CategoryDefaults = overridden
	}

	if len(c.SignalBoosts) > 0 {
		overridden := make(map[router.Signal]map[router.SourceID]int, len(c.SignalBoosts))
		for sig, boosts := range c.SignalBoosts {
			bySource := make(map[router.SourceID]int, len(boosts))
			for src, boost := range boosts {
				bySource[router.SourceID(src)] = boost
			}
			overridden[router.Signal(sig)] = bySource
		}
		cfg.SignalBoosts = overridden
	}

	return cfg
}

// ToWeights converts this section into a scorer.Weights, starting from
// scorer.DefaultWeights() and overlaying any non-zero field this section
// sets.
func (c ScorerConfig) ToWeights() scorer.Weights {
	w := scorer.DefaultWeights()

	overlay := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	overlay(&w.TokenOverlap, c.TokenOverlap)
	overlay(&w.EntityMatch, c.EntityMatch)
	overlay(&w.NumberMatch, c.NumberMatch)
	overlay(&w.NumberUnitBonus, c.NumberUnitBonus)
	overlay(&w.KeyphraseAlignment, c.KeyphraseAlignment)
	overlay(&w.EvidenceTypeWeight, c.EvidenceTypeWeight)
	overlay(&w.TemporalAlignment, c.TemporalAlignment)
	overlay(&w.SupportedMinScore, c.SupportedMinScore)
	overlay(&w.PartialMinScore, c.PartialMinScore)
	overlay(&w.PartialMaxScore, c.PartialMaxScore)
	overlay(&w.TemporalFullWindowDays, c.TemporalFullWindowDays)
	overlay(&w.TemporalDecayYears, c.TemporalDecayYears)
	overlay(&w.TemporalStalePenalty, c.TemporalStalePenalty)

	return w
}

// ToAdapterOverrides converts Config.Adapters into the
// map[string]adapter.AdapterOverride shape adapter.
// RegisterDefaultsResilientWithOverrides expects, resolving each entry's
// APIKeyEnv through the process environment.
func (c Config) ToAdapterOverrides() map[string]adapter.AdapterOverride {
	if len(c.Adapters) == 0 {
		return nil
	}
	out := make(map[string]adapter.AdapterOverride, len(c.Adapters))
	for sourceAPI, entry := range c.Adapters {
		var apiKey string
		if entry.APIKeyEnv != "" {
			apiKey = os.Getenv(entry.APIKeyEnv)
		}
		out[sourceAPI] = adapter.AdapterOverride{
			BaseURL:        entry.BaseURL,
			APIKey:         apiKey,
			TimeoutS:       entry.TimeoutS,
			RateLimitRPS:   entry.RateLimitRPS,
			RateLimitBurst: entry.RateLimitBurst,
		}
	}
	return out
}

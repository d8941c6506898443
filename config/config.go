package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/Ajay-Krishna00/CosmoGraph/chunking"
	"github.com/Ajay-Krishna00/CosmoGraph/retrieval"
	"github.com/Ajay-Krishna00/CosmoGraph/scrape"
	"github.com/Ajay-Krishna00/CosmoGraph/tagging"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"

	TieBreakLonger    = "longer"
	TieBreakFirstSeen = "first_seen"

	envPrefix = "COSMOGRAPH_"
)

// Config holds every tunable setting.
type Config struct {
	Store     StoreConfig     `toml:"store" yaml:"store"`
	AI        AIConfig        `toml:"ai" yaml:"ai"`
	Chunking  ChunkingConfig  `toml:"chunking" yaml:"chunking"`
	Tagging   TaggingConfig   `toml:"tagging" yaml:"tagging"`
	Retrieval RetrievalConfig `toml:"retrieval" yaml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest" yaml:"ingest"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	Driver string `toml:"driver" yaml:"driver"`
	Path   string `toml:"path" yaml:"path"`
}

// AIConfig locates the embedding, phrase and summary models.
type AIConfig struct {
	EmbeddingHost  string   `toml:"embedding_host" yaml:"embedding_host"`
	EmbeddingModel string   `toml:"embedding_model" yaml:"embedding_model"`
	ExtractorHost  string   `toml:"extractor_host" yaml:"extractor_host"`
	ExtractorModel string   `toml:"extractor_model" yaml:"extractor_model"`
	SummaryModel   string   `toml:"summary_model" yaml:"summary_model"`
	APIKey         string   `toml:"api_key" yaml:"api_key"`
	RequestTimeout Duration `toml:"request_timeout" yaml:"request_timeout"`
}

// ChunkingConfig is the chunk window in characters.
type ChunkingConfig struct {
	Size    int `toml:"size" yaml:"size"`
	Overlap int `toml:"overlap" yaml:"overlap"`
}

// TaggingConfig tunes the tag ranker.
type TaggingConfig struct {
	TopN          int    `toml:"top_n" yaml:"top_n"`
	MaxInputChars int    `toml:"max_input_chars" yaml:"max_input_chars"`
	MinTagLength  int    `toml:"min_tag_length" yaml:"min_tag_length"`
	TieBreak      string `toml:"tie_break" yaml:"tie_break"`
}

// RetrievalConfig tunes similarity queries.
type RetrievalConfig struct {
	TopK            int      `toml:"top_k" yaml:"top_k"`
	MinSimilarity   float32  `toml:"min_similarity" yaml:"min_similarity"`
	PrimaryTimeout  Duration `toml:"primary_timeout" yaml:"primary_timeout"`
	FallbackTimeout Duration `toml:"fallback_timeout" yaml:"fallback_timeout"`
}

// IngestConfig tunes the ingestion pipeline and page fetching.
type IngestConfig struct {
	PoolSize       int      `toml:"pool_size" yaml:"pool_size"`
	Politeness     Duration `toml:"politeness" yaml:"politeness"`
	FetchTimeout   Duration `toml:"fetch_timeout" yaml:"fetch_timeout"`
	FetchRetries   int      `toml:"fetch_retries" yaml:"fetch_retries"`
	RetryDelay     Duration `toml:"retry_delay" yaml:"retry_delay"`
	WriteBatchSize int      `toml:"write_batch_size" yaml:"write_batch_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Store: StoreConfig{Driver: DriverBadger, Path: "cosmograph.db"},
		AI: AIConfig{
			EmbeddingHost:  aiDefaults.EmbeddingHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			ExtractorHost:  aiDefaults.ExtractorHost,
			ExtractorModel: aiDefaults.ExtractorModel,
			APIKey:         aiDefaults.APIKey,
			RequestTimeout: Duration(aiDefaults.RequestTimeout),
		},
		Chunking: ChunkingConfig{Size: chunking.DefaultSize, Overlap: chunking.DefaultOverlap},
		Tagging: TaggingConfig{
			TopN:          tagging.DefaultTopN,
			MaxInputChars: tagging.DefaultMaxInputChars,
			MinTagLength:  tagging.DefaultMinTagLength,
			TieBreak:      TieBreakLonger,
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			MinSimilarity:   retrieval.DefaultMinSimilarity,
			PrimaryTimeout:  Duration(retrieval.DefaultPrimaryTimeout),
			FallbackTimeout: Duration(retrieval.DefaultFallbackTimeout),
		},
		Ingest: IngestConfig{
			PoolSize:       4,
			Politeness:     Duration(time.Second),
			FetchTimeout:   Duration(scrape.DefaultTimeout),
			FetchRetries:   scrape.DefaultMaxAttempts,
			RetryDelay:     Duration(scrape.DefaultRetryDelay),
			WriteBatchSize: 50,
		},
	}
}

// Load builds a Config from the defaults, the optional file at path, a .env
// file in the working directory, and the environment.
func Load(path string) (*Config, error) {
	return LoadFiles(path, ".env")
}

// LoadFiles is Load with an explicit .env location. Missing .env files are
// ignored; a missing config file is an error.
func LoadFiles(path, dotEnv string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotEnv, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *Duration) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			}
		}
	}

	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)

	if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
		c.AI.APIKey = v
	}
	str("API_KEY", &c.AI.APIKey)
	str("EMBEDDING_HOST", &c.AI.EmbeddingHost)
	str("EMBEDDING_MODEL", &c.AI.EmbeddingModel)
	str("EXTRACTOR_HOST", &c.AI.ExtractorHost)
	str("EXTRACTOR_MODEL", &c.AI.ExtractorModel)
	str("SUMMARY_MODEL", &c.AI.SummaryModel)
	dur("AI_TIMEOUT", &c.AI.RequestTimeout)

	num("CHUNK_SIZE", &c.Chunking.Size)
	num("CHUNK_OVERLAP", &c.Chunking.Overlap)

	num("TAG_TOP_N", &c.Tagging.TopN)
	str("TAG_TIE_BREAK", &c.Tagging.TieBreak)

	num("TOP_K", &c.Retrieval.TopK)
	if v, ok := lookup(envPrefix + "MIN_SIMILARITY"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMIN_SIMILARITY: %w", envPrefix, err))
		} else {
			c.Retrieval.MinSimilarity = float32(f)
		}
	}
	dur("PRIMARY_TIMEOUT", &c.Retrieval.PrimaryTimeout)
	dur("FALLBACK_TIMEOUT", &c.Retrieval.FallbackTimeout)

	num("POOL_SIZE", &c.Ingest.PoolSize)
	dur("POLITENESS", &c.Ingest.Politeness)
	dur("FETCH_TIMEOUT", &c.Ingest.FetchTimeout)
	num("FETCH_RETRIES", &c.Ingest.FetchRetries)
	num("WRITE_BATCH_SIZE", &c.Ingest.WriteBatchSize)

	return errors.Join(errs...)
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Store.Driver {
	case DriverBadger, DriverSQLite:
	default:
		invalid("store.driver %q must be %q or %q", c.Store.Driver, DriverBadger, DriverSQLite)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		invalid("store.path is required")
	}

	if err := c.AI.Config().Validate(); err != nil {
		invalid("%v", err)
	}

	if c.Chunking.Overlap < 0 || c.Chunking.Size <= c.Chunking.Overlap {
		invalid("chunking.size (%d) must exceed chunking.overlap (%d)", c.Chunking.Size, c.Chunking.Overlap)
	}

	if c.Tagging.TopN < 1 {
		invalid("tagging.top_n must be positive")
	}
	if _, err := c.Tagging.tieBreak(); err != nil {
		invalid("%v", err)
	}

	if c.Retrieval.TopK < 1 {
		invalid("retrieval.top_k must be positive")
	}
	if c.Retrieval.MinSimilarity < -1 || c.Retrieval.MinSimilarity > 1 {
		invalid("retrieval.min_similarity %v outside [-1, 1]", c.Retrieval.MinSimilarity)
	}

	if c.Ingest.PoolSize < 1 {
		invalid("ingest.pool_size must be positive")
	}
	if c.Ingest.FetchRetries < 1 {
		invalid("ingest.fetch_retries must be positive")
	}
	if c.Ingest.WriteBatchSize < 1 {
		invalid("ingest.write_batch_size must be positive")
	}
	if c.Ingest.Politeness < 0 {
		invalid("ingest.politeness must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Config converts the section to an ai.Config.
func (a AIConfig) Config() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(a.EmbeddingHost),
		ai.WithEmbeddingModel(a.EmbeddingModel),
		ai.WithExtractorHost(a.ExtractorHost),
		ai.WithExtractorModel(a.ExtractorModel),
		ai.WithSummaryModel(a.SummaryModel),
		ai.WithAPIKey(a.APIKey),
		ai.WithRequestTimeout(a.RequestTimeout.Std()),
	)
	cfg.Normalize()
	return cfg
}

// RankerOptions returns the tagging options for the section.
func (t TaggingConfig) RankerOptions() []tagging.Option {
	tb, _ := t.tieBreak()
	return []tagging.Option{
		tagging.WithTopN(t.TopN),
		tagging.WithMaxInputChars(t.MaxInputChars),
		tagging.WithMinTagLength(t.MinTagLength),
		tagging.WithTieBreak(tb),
	}
}

func (t TaggingConfig) tieBreak() (tagging.TieBreak, error) {
	switch t.TieBreak {
	case "", TieBreakLonger:
		return tagging.TieBreakLonger, nil
	case TieBreakFirstSeen:
		return tagging.TieBreakFirstSeen, nil
	default:
		return tagging.TieBreakLonger, fmt.Errorf("tagging.tie_break %q must be %q or %q", t.TieBreak, TieBreakLonger, TieBreakFirstSeen)
	}
}

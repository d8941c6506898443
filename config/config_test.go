package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, float32(0.4), cfg.Retrieval.MinSimilarity)
	assert.Equal(t, 10*time.Second, cfg.Retrieval.PrimaryTimeout.Std())
	assert.Equal(t, time.Second, cfg.Ingest.Politeness.Std())
	assert.Equal(t, 50, cfg.Ingest.WriteBatchSize)
}

func TestLoadFiles_TOML(t *testing.T) {
	path := writeFile(t, "cosmo.toml", `
[store]
driver = "sqlite"
path = "/tmp/cosmo.sqlite"

[retrieval]
top_k = 8
min_similarity = 0.5
primary_timeout = "2s"

[tagging]
tie_break = "first_seen"
`)

	cfg, err := LoadFiles(path, "")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/cosmo.sqlite", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.5), cfg.Retrieval.MinSimilarity)
	assert.Equal(t, 2*time.Second, cfg.Retrieval.PrimaryTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Retrieval.FallbackTimeout.Std(), "unset keys keep defaults")
	assert.Equal(t, TieBreakFirstSeen, cfg.Tagging.TieBreak)
}

func TestLoadFiles_YAML(t *testing.T) {
	path := writeFile(t, "cosmo.yaml", `
chunking:
  size: 500
  overlap: 100
ingest:
  pool_size: 8
  politeness: 250ms
ai:
  embedding_model: all-minilm
`)

	cfg, err := LoadFiles(path, "")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 8, cfg.Ingest.PoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.Politeness.Std())
	assert.Equal(t, "all-minilm", cfg.AI.EmbeddingModel)
}

func TestLoadFiles_Errors(t *testing.T) {
	_, err := LoadFiles(writeFile(t, "cosmo.ini", "x=1"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFiles(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFiles(writeFile(t, "bad.toml", "[store\n"), "")
	assert.Error(t, err)
}

func TestLoadFiles_DotEnv(t *testing.T) {
	dotEnv := writeFile(t, ".env", "COSMOGRAPH_TOP_K=11\nCOSMOGRAPH_STORE_PATH=from-dotenv\n")
	t.Setenv("COSMOGRAPH_STORE_PATH", "from-env")
	t.Setenv("COSMOGRAPH_TOP_K", "")
	os.Unsetenv("COSMOGRAPH_TOP_K")

	cfg, err := LoadFiles("", dotEnv)
	require.NoError(t, err)

	assert.Equal(t, 11, cfg.Retrieval.TopK)
	assert.Equal(t, "from-env", cfg.Store.Path, "real environment wins over .env")
}

func TestLoadFiles_MissingDotEnvIgnored(t *testing.T) {
	_, err := LoadFiles("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"OPENAI_API_KEY":              "sk-test",
		"COSMOGRAPH_STORE_DRIVER":     "sqlite",
		"COSMOGRAPH_EMBEDDING_HOST":   "http://embed:8080",
		"COSMOGRAPH_CHUNK_SIZE":       "800",
		"COSMOGRAPH_MIN_SIMILARITY":   "0.5",
		"COSMOGRAPH_FALLBACK_TIMEOUT": "45s",
		"COSMOGRAPH_POOL_SIZE":        "2",
		"COSMOGRAPH_AI_TIMEOUT":       "90s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "http://embed:8080", cfg.AI.EmbeddingHost)
	assert.Equal(t, 800, cfg.Chunking.Size)
	assert.Equal(t, float32(0.5), cfg.Retrieval.MinSimilarity)
	assert.Equal(t, 45*time.Second, cfg.Retrieval.FallbackTimeout.Std())
	assert.Equal(t, 2, cfg.Ingest.PoolSize)
	assert.Equal(t, 90*time.Second, cfg.AI.Config().RequestTimeout)
}

func TestApplyEnv_ExplicitKeyWins(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"OPENAI_API_KEY":     "shared",
		"COSMOGRAPH_API_KEY": "specific",
	})))
	assert.Equal(t, "specific", cfg.AI.APIKey)
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"COSMOGRAPH_TOP_K":          "many",
		"COSMOGRAPH_MIN_SIMILARITY": "high",
		"COSMOGRAPH_POLITENESS":     "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COSMOGRAPH_TOP_K")
	assert.Contains(t, err.Error(), "COSMOGRAPH_MIN_SIMILARITY")
	assert.Contains(t, err.Error(), "COSMOGRAPH_POLITENESS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "postgres" }, field: "store.driver"},
		{name: "blank path", mutate: func(c *Config) { c.Store.Path = " " }, field: "store.path"},
		{name: "no embedding model", mutate: func(c *Config) { c.AI.EmbeddingModel = "" }, field: "EmbeddingModel"},
		{name: "size equals overlap", mutate: func(c *Config) { c.Chunking.Size = 200 }, field: "chunking.size"},
		{name: "negative overlap", mutate: func(c *Config) { c.Chunking.Overlap = -1 }, field: "chunking.size"},
		{name: "bad tie break", mutate: func(c *Config) { c.Tagging.TieBreak = "random" }, field: "tagging.tie_break"},
		{name: "zero top k", mutate: func(c *Config) { c.Retrieval.TopK = 0 }, field: "retrieval.top_k"},
		{name: "threshold range", mutate: func(c *Config) { c.Retrieval.MinSimilarity = 2 }, field: "retrieval.min_similarity"},
		{name: "zero retries", mutate: func(c *Config) { c.Ingest.FetchRetries = 0 }, field: "ingest.fetch_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = ""
	cfg.Retrieval.TopK = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.path")
	assert.Contains(t, err.Error(), "retrieval.top_k")
}

func TestAIConfig(t *testing.T) {
	cfg := AIConfig{EmbeddingHost: "http://host:1234", EmbeddingModel: "e", ExtractorHost: "http://host:1234/v1", ExtractorModel: "x"}.Config()

	assert.Equal(t, "http://host:1234/v1", cfg.EmbeddingHost)
	assert.Equal(t, "x", cfg.SummaryModel)
	assert.Equal(t, "none", cfg.APIKey)
}

func TestRankerOptions(t *testing.T) {
	cfg := Default()
	cfg.Tagging.TopN = 1
	cfg.Tagging.TieBreak = TieBreakFirstSeen

	r := tagging.NewRanker(cfg.Tagging.RankerOptions()...)
	assert.Equal(t, 1, r.TopN())
	assert.Equal(t, []string{"Ab"}, r.Rank([]string{"ab", "abc"}))
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}

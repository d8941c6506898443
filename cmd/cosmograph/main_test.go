package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cosmograph "github.com/Ajay-Krishna00/CosmoGraph"
	"github.com/Ajay-Krishna00/CosmoGraph/ai/mock"
	"github.com/Ajay-Krishna00/CosmoGraph/config"
	"github.com/Ajay-Krishna00/CosmoGraph/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// useMockEngine makes commands open engines backed by the mock provider.
func useMockEngine(t *testing.T) {
	t.Helper()
	orig := openEngine
	openEngine = func(cfg *config.Config) (*cosmograph.Engine, error) {
		return cosmograph.OpenConfig(cfg,
			cosmograph.WithProvider(mock.NewMockProviderWithServices(nil, nil, nil)),
			cosmograph.WithPipelineOptions(ingestion.WithPoliteness(0)),
		)
	}
	t.Cleanup(func() { openEngine = orig })
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"cosmograph"}, args...))
	return stdout.String(), stderr.String(), err
}

func findFlag(t *testing.T, cmd *cli.Command, name string) cli.Flag {
	t.Helper()
	for _, flag := range cmd.Flags {
		for _, n := range flag.Names() {
			if n == name {
				return flag
			}
		}
	}
	t.Fatalf("flag %q not found on %s", name, cmd.Name)
	return nil
}

func TestCommandFlags(t *testing.T) {
	app := newApp()
	commands := map[string]*cli.Command{}
	for _, cmd := range app.Commands {
		commands[cmd.Name] = cmd
	}
	require.Contains(t, commands, "ingest")
	require.Contains(t, commands, "search")
	require.Contains(t, commands, "reembed")

	t.Run("ingest column defaults to url", func(t *testing.T) {
		f := findFlag(t, commands["ingest"], "column").(*cli.StringFlag)
		assert.Equal(t, "url", f.Value)
	})

	t.Run("ingest summary file", func(t *testing.T) {
		f := findFlag(t, commands["ingest"], "summary").(*cli.StringFlag)
		assert.Equal(t, "ingest_summary.json", f.Value)
	})

	t.Run("reembed batch-size has default value of 100", func(t *testing.T) {
		f := findFlag(t, commands["reembed"], "batch-size").(*cli.IntFlag)
		assert.Equal(t, 100, f.Value)
	})

	t.Run("search top-k has alias k", func(t *testing.T) {
		f := findFlag(t, commands["search"], "k").(*cli.IntFlag)
		assert.Zero(t, f.Value)
	})
}

func TestReadURLs(t *testing.T) {
	t.Run("selects column case-insensitively", func(t *testing.T) {
		data := "title,URL\nRoots,https://example.org/a\nBones,https://example.org/b\nShort\n"
		urls, err := readURLs(strings.NewReader(data), "url")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.org/a", "https://example.org/b", ""}, urls)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := readURLs(strings.NewReader("title,link\nx,y\n"), "url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no "url" column`)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := readURLs(strings.NewReader(""), "url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})
}

func TestIngestAndSearch(t *testing.T) {
	useMockEngine(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><title>Water on Mars</title>
<meta name="description" content="Space missions search Mars for Water."></head>
<body><article><p>Space agencies study Mars. Water ice on Mars matters for Space biology.</p></article></body></html>`)
	}))
	defer server.Close()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "pubs.csv")
	summaryPath := filepath.Join(dir, "summary.json")
	dbPath := filepath.Join(dir, "store.sqlite")
	csvData := "title,url\nMars," + server.URL + "/mars\nGone," + server.URL + "/missing\nBlank,nan\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	_, stderr, err := runApp(t, "--db", dbPath, "--driver", "sqlite", "ingest", "--summary", summaryPath, csvPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Ingested 1/2 documents (1 failed, 1 skipped")

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary ingestion.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	t.Setenv("COSMOGRAPH_MIN_SIMILARITY", "-1")
	stdout, _, err := runApp(t, "--db", dbPath, "--driver", "sqlite", "search", "--summarize", "water", "on", "mars")
	require.NoError(t, err)

	var out struct {
		Query string `json:"query"`
		Items []struct {
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		} `json:"items"`
		Graph struct {
			Nodes []struct {
				ID     string `json:"id"`
				Weight int    `json:"weight"`
			} `json:"nodes"`
		} `json:"graph"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "water on mars", out.Query)
	require.NotEmpty(t, out.Items)
	assert.NotEmpty(t, out.Graph.Nodes)
	assert.Equal(t, "summary of water on mars", out.Summary)
}

func TestSearch_RequiresQuery(t *testing.T) {
	_, _, err := runApp(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestIngest_RequiresCSV(t *testing.T) {
	_, _, err := runApp(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file is required")
}

func TestReembed_ValidatesFlags(t *testing.T) {
	_, _, err := runApp(t, "reembed", "--batch-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch-size")
}

func TestReembedCommand(t *testing.T) {
	useMockEngine(t)
	dbPath := filepath.Join(t.TempDir(), "store")

	_, stderr, err := runApp(t, "--db", dbPath, "reembed")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No chunks found")
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	useMockEngine(t)
	_, _, err := runApp(t, "--driver", "postgres", "search", "mars")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		levels := []string{"debug", "info", "warn", "error", "DEBUG", "Info"}
		for _, tc := range levels {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name:   "test",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}
				require.NoError(t, app.Run([]string{"test", "--log-level", tc}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		_, _, err := runApp(t, "--log-level", "loud", "search", "mars")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

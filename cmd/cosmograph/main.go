// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cosmograph "github.com/Ajay-Krishna00/CosmoGraph"
	"github.com/Ajay-Krishna00/CosmoGraph/config"
	"github.com/Ajay-Krishna00/CosmoGraph/ingestion"
	"github.com/Ajay-Krishna00/CosmoGraph/reembed"
	"github.com/Ajay-Krishna00/CosmoGraph/scrape"
	"github.com/urfave/cli/v2"
)

// openEngine is replaced in tests.
var openEngine = func(cfg *config.Config) (*cosmograph.Engine, error) {
	return cosmograph.OpenConfig(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cosmograph",
		Usage: "Knowledge graphs from space biology publications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML or YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the store (overrides the configuration)",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Store driver: badger or sqlite (overrides the configuration)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Fetch, chunk, embed and tag the publications listed in a CSV file",
				ArgsUsage: "<file.csv>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "column",
						Usage: "CSV column holding publication URLs",
						Value: "url",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Ingest at most N URLs (0 for all)",
					},
					&cli.StringFlag{
						Name:  "summary",
						Usage: "Where to write the run summary",
						Value: "ingest_summary.json",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve the chunks closest to a query and print their tag graph",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to retrieve (0 uses the configuration)",
					},
					&cli.BoolFlag{
						Name:  "summarize",
						Usage: "Also summarize the retrieved chunks",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the embeddings of all stored chunks",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// loadConfig layers the global flags over the file and environment settings.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Store.Path = db
	}
	if driver := c.String("driver"); driver != "" {
		cfg.Store.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ingestCommand(c *cli.Context) error {
	csvPath := c.Args().First()
	if csvPath == "" {
		return fmt.Errorf("a CSV file is required")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	urls, err := readURLs(f, c.String("column"))
	f.Close()
	if err != nil {
		return err
	}
	if limit := c.Int("limit"); limit > 0 && limit < len(urls) {
		urls = urls[:limit]
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	fetcher := scrape.NewHTTPFetcher(
		scrape.WithTimeout(cfg.Ingest.FetchTimeout.Std()),
		scrape.WithRetries(cfg.Ingest.FetchRetries, cfg.Ingest.RetryDelay.Std()),
	)
	pipeline, err := engine.NewPipeline(fetcher, ingestion.WithProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.ErrWriter, "Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	fmt.Fprintf(c.App.ErrWriter, "Documents: %d\n\n", len(urls))

	summary, runErr := pipeline.Run(ctx, urls)
	if summary != nil {
		if err := writeSummary(c.String("summary"), summary); err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "Ingested %d/%d documents (%d failed, %d skipped, %d chunks)\n",
			summary.Succeeded, summary.Total, summary.Failed, summary.Skipped, summary.Chunks)
	}
	if runErr != nil {
		return fmt.Errorf("ingestion stopped: %w", runErr)
	}
	return nil
}

// readURLs returns the values of column from CSV data with a header row.
func readURLs(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV file is empty")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("CSV has no %q column", column)
	}

	var urls []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if idx < len(record) {
			urls = append(urls, record[idx])
		} else {
			urls = append(urls, "")
		}
	}
	return urls, nil
}

func writeSummary(path string, summary *ingestion.RunSummary) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	if err := summary.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return f.Close()
}

type searchOutput struct {
	*cosmograph.QueryResult
	Summary string `json:"summary,omitempty"`
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx := c.Context
	result, err := engine.Search(ctx, query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := searchOutput{QueryResult: result}
	if c.Bool("summarize") {
		out.Summary, err = engine.Summarize(ctx, query, result.Items)
		if err != nil {
			return fmt.Errorf("summary failed: %w", err)
		}
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	reembedder, err := engine.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

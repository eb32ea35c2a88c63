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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/resolvit"
	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/refresh"
	"github.com/poiesic/resolvit/store"
	storebadger "github.com/poiesic/resolvit/store/badger"
)

func main() {
	app := &cli.App{
		Name:  "resolvit",
		Usage: "Hybrid entity matching and ranking engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "match",
				Usage:     "Resolve query text against the canonical record set",
				ArgsUsage: "QUERY...",
				Action:    matchCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:  "oracle-host",
						Usage: "Disambiguation service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "oracle-model",
						Usage: "Disambiguation model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "rank-model",
						Usage: "Path to an XGBoost ranking model dump (omit for the built-in weighted model)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Acceptance threshold for direct resolution",
						Value: 0.75,
					},
				),
			},
			{
				Name:   "refresh",
				Usage:  "Encode all stored records and warm the durable vector cache",
				Action: refreshCommand,
				Flags: append(sourceFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to encode in each batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
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
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB record store directory",
		},
		&cli.StringFlag{
			Name:  "records",
			Usage: "Path to a YAML record fixture (alternative to --db)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

// openSource picks the record source from flags. The Badger backend comes
// back non-nil only for --db and must be closed by the caller.
func openSource(c *cli.Context) (store.Source, store.VectorCache, *storebadger.Backend, error) {
	if dbPath := c.String("db"); dbPath != "" {
		backend, err := storebadger.OpenBackend(dbPath, false)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return storebadger.NewRecordStore(backend), storebadger.NewVectorCache(backend), backend, nil
	}
	if path := c.String("records"); path != "" {
		return store.NewFileSource(path), nil, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("either --db or --records is required")
}

func matchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one query argument is required")
	}

	source, vectors, backend, err := openSource(c)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithOracleHost(c.String("oracle-host")),
		ai.WithOracleModel(c.String("oracle-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	config := resolvit.DefaultConfig()
	config.Threshold = c.Float64("threshold")
	config.ModelPath = c.String("rank-model")

	opts := []resolvit.ResolverOption{resolvit.WithAIConfig(aiConfig)}
	if vectors != nil {
		opts = append(opts, resolvit.WithVectorCache(vectors, c.String("embedding-model")))
	}

	resolver, err := resolvit.NewResolver(source, config, opts...)
	if err != nil {
		return err
	}
	defer resolver.Close()

	ctx := context.Background()
	if err := resolver.Refresh(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	for _, query := range c.Args().Slice() {
		result, err := resolver.Resolve(ctx, query)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", query, err)
		}
		printResult(query, result)
	}

	return nil
}

func printResult(query string, result *core.MatchResult) {
	if result.NoMatch() {
		fmt.Printf("%q -> no match (via %s)\n", query, result.Resolved)
		return
	}

	top := result.Top()
	flags := ""
	if result.LowConfidence {
		flags += " low-confidence"
	}
	if result.TimedOut {
		flags += " timed-out"
	}
	fmt.Printf("%q -> %s (id %d, confidence %.3f, via %s%s)\n",
		query, top.DisplayName, top.RecordId, result.Confidence, result.Resolved, flags)

	for i, candidate := range result.Candidates {
		if i == 0 {
			continue
		}
		if i >= 3 {
			break
		}
		fmt.Printf("    runner-up: %s (fused %.3f, fuzzy %.3f, cosine %.3f)\n",
			candidate.DisplayName, candidate.FusedScore, candidate.FuzzyScore, candidate.EmbeddingScore)
	}
}

func refreshCommand(c *cli.Context) error {
	source, vectors, backend, err := openSource(c)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithOracleHost(c.String("embedding-host")),
		ai.WithOracleModel("unused"),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	config := resolvit.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.MaxRetries = c.Int("max-retries")
	config.RetryBaseDelay = c.Duration("retry-delay")
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	progress := refresh.NewProgressTracker(os.Stderr, 0, c.Int("report-interval"))

	opts := []resolvit.ResolverOption{
		resolvit.WithAIConfig(aiConfig),
		resolvit.WithProgress(progress),
	}
	if vectors != nil {
		opts = append(opts, resolvit.WithVectorCache(vectors, c.String("embedding-model")))
	}

	resolver, err := resolvit.NewResolver(source, config, opts...)
	if err != nil {
		return err
	}
	defer resolver.Close()

	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))

	if err := resolver.Refresh(context.Background()); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	snapshot := resolver.Snapshot()
	fmt.Fprintf(os.Stderr, "Indexed %d records (dim %d, snapshot %s)\n",
		snapshot.Len(), snapshot.Dim(), snapshot.Version())
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

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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/sift"
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/backfill"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sift",
		Usage: "Conversational message indexing with ranked semantic search",
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
				Name:   "ingest",
				Usage:  "Ingest messages into a session, one per input line",
				Action: ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Author role for the ingested lines (user, assistant)",
						Value: "user",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read messages from this file instead of stdin",
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Back-fill adjacency and solution/feedback metadata",
				Action: backfillCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of sessions processed concurrently",
						Value: 4,
					},
					&cli.DurationFlag{
						Name:  "session-budget",
						Usage: "Wall-clock budget per session",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for store writes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N sessions",
						Value: 10,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search indexed messages",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (semantic, validated_only, failed_only, recent_only, by_topic)",
						Value: "semantic",
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Topic focus, required by by_topic mode",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Project path for affinity boosting",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "health",
				Usage:  "Report indexing coverage and validation health",
				Action: healthCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Report one session instead of the aggregate",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "nomic-embed-text",
		},
	}
}

func openDatabase(c *cli.Context) (*sift.Database, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	return sift.NewDatabase(c.String("db"), sift.WithAIConfig(config))
}

func ingestCommand(c *cli.Context) error {
	role, err := core.ParseRole(c.String("role"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	input := os.Stdin
	if path := c.String("file"); path != "" {
		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()
		input = f
	}

	ctx := context.Background()
	sessionID := c.String("session")
	count := 0

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := pipeline.Push(ctx, sessionID, role, line, time.Time{}); err != nil {
			return fmt.Errorf("failed to ingest message: %w", err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Ingested %d messages into session %s\n", count, sessionID)
	return nil
}

func backfillCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	config := &backfill.Config{
		PoolSize:       c.Int("pool-size"),
		SessionBudget:  c.Duration("session-budget"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		ReportInterval: c.Int("report-interval"),
	}

	runner, err := db.NewBackfillRunner(config, os.Stderr)
	if err != nil {
		return err
	}

	report, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("back-fill failed: %w", err)
	}

	fmt.Printf("run %s: %d candidates, %d patches applied\n",
		report.RunID, report.Candidates, report.PatchesApplied)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query text is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	mode, err := search.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	qctx, err := search.ContextForMode(mode, c.String("topic"))
	if err != nil {
		return err
	}
	qctx.Project = c.String("project")

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Search(context.Background(), query, qctx, c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n",
			i, hit.Message.Contents, hit.Message.Id, hit.Breakdown.FinalScore)
	}
	return nil
}

func healthCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	report, err := db.Health(context.Background(), c.String("session"))
	if err != nil {
		return err
	}

	fmt.Printf("Sessions:            %d\n", report.Sessions)
	fmt.Printf("  fully covered:     %d\n", report.FullyCovered)
	fmt.Printf("  partially covered: %d\n", report.PartiallyCovered)
	fmt.Printf("  unprocessed:       %d\n", report.Unprocessed)
	fmt.Printf("  needs retry:       %d\n", report.NeedsRetry)
	fmt.Printf("  manual review:     %d\n", report.NeedsManualReview)
	fmt.Printf("Chain coverage:      %.1f%%\n", report.ChainCoverage*100)
	fmt.Printf("Feedback coverage:   %.1f%%\n", report.FeedbackCoverage*100)
	fmt.Printf("Validated solutions: %d\n", report.ValidatedCount)
	fmt.Printf("Refuted solutions:   %d\n", report.RefutedCount)
	fmt.Printf("Avg run duration:    %v\n", report.AvgRunDuration.Round(time.Millisecond))
	fmt.Printf("Embedding mode:      %s\n", report.EmbeddingMode)
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

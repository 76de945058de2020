// Copyright 2025 The medlit authors
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
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/medlit/medlit"
	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/bot"
	"github.com/medlit/medlit/pubmed"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "medlit",
		Usage: "Biomedical literature assistant backed by PubMed",
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
				Name:   "bot",
				Usage:  "Run the Telegram bot",
				Action: botCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "telegram-token",
						Usage:   "Telegram bot API token",
						EnvVars: []string{"TELEGRAM_BOT_TOKEN"},
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a single search and print the results",
				ArgsUsage: "<query, optionally with from:/to:/journal: filters>",
				Action:    searchCommand,
				Flags:     serviceFlags(),
			},
			{
				Name:   "recent",
				Usage:  "Print recent searches recorded in the local database",
				Action: recentCommand,
				Flags: append(serviceFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of queries to list",
						Value: 10,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// serviceFlags are shared by every command that constructs a Service.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Path to the local database directory",
			Value:   "./medlit-data",
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
		&cli.StringFlag{
			Name:  "summary-host",
			Usage: "Summary service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "summary-model",
			Usage: "Summary model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token for the AI services (\"none\" for unauthenticated)",
			Value:   "none",
			EnvVars: []string{"MEDLIT_AI_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "email",
			Usage:   "Contact email sent with PubMed requests",
			EnvVars: []string{"MEDLIT_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "pubmed-api-key",
			Usage:   "NCBI API key for a higher request rate",
			EnvVars: []string{"MEDLIT_PUBMED_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "max-results",
			Usage: "Maximum articles retrieved per search",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Articles selected as context for follow-up questions",
			Value: 3,
		},
	}
}

func newService(c *cli.Context) (*medlit.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithSummaryHost(c.String("summary-host")),
		ai.WithSummaryModel(c.String("summary-model")),
		ai.WithToken(c.String("ai-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	pubmedOpts := []pubmed.Option{
		pubmed.WithMaxResults(c.Int("max-results")),
	}
	if email := c.String("email"); email != "" {
		pubmedOpts = append(pubmedOpts, pubmed.WithEmail(email))
	}
	if key := c.String("pubmed-api-key"); key != "" {
		pubmedOpts = append(pubmedOpts, pubmed.WithAPIKey(key))
	}

	return medlit.NewService(c.String("data-dir"),
		medlit.WithAIConfig(aiConfig),
		medlit.WithPubMedOptions(pubmedOpts...),
		medlit.WithTopK(c.Int("top-k")),
	)
}

func botCommand(c *cli.Context) error {
	token := c.String("telegram-token")
	if token == "" {
		return fmt.Errorf("telegram token is required (set TELEGRAM_BOT_TOKEN or --telegram-token)")
	}

	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	b, err := bot.New(token, svc)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutdown signal received")
		cancel()
	}()

	slog.Info("starting bot")
	b.Start(ctx)
	slog.Info("bot stopped")
	return nil
}

func searchCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("a query is required")
	}

	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	entry, _, err := svc.Search(c.Context, bot.ParseQuery(text))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(entry.Results.Articles) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	findingsByPMID := make(map[string][]string, len(entry.Findings))
	for _, f := range entry.Findings {
		if f.Unavailable {
			continue
		}
		findingsByPMID[f.PMID] = f.Claims
	}

	for i, article := range entry.Results.Articles {
		fmt.Printf("%d. %s\n", i+1, article.Title)
		fmt.Printf("   %s (%s)\n", article.Journal, article.PubDate)
		for _, claim := range findingsByPMID[article.PMID] {
			fmt.Printf("   - %s\n", claim)
		}
		fmt.Printf("   %s\n", article.URL)
	}
	if entry.Results.Dropped > 0 {
		fmt.Printf("\n%d records could not be parsed and were skipped.\n", entry.Results.Dropped)
	}
	return nil
}

func recentCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	summaries, err := svc.RecentSearches(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to load search history: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No searches recorded yet.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  (%d searches, last %s)\n", s.Query, s.Count, s.LastSearched.Format("2006-01-02 15:04"))
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

// Copyright 2026 Charla Labs
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
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/charlabot/charla"
	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/ai/dialogflow"
	"github.com/charlabot/charla/config"
	"github.com/charlabot/charla/ingestion"
	"github.com/charlabot/charla/webhook"
)

func main() {
	// Secrets (AI tokens, GOOGLE_APPLICATION_CREDENTIALS) come from the
	// environment; a missing .env is fine.
	godotenv.Load()

	app := &cli.App{
		Name:  "charla",
		Usage: "WhatsApp customer-service bot with a local knowledge base",
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
				Usage:   "Path to YAML config file",
				Value:   "config.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the WhatsApp webhook server",
				Action: serveCommand,
			},
			{
				Name:      "add",
				Usage:     "Register a text knowledge source and ingest it",
				ArgsUsage: "<id> <title> <text>",
				Action:    addCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Re-run ingestion for a registered source",
				ArgsUsage: "<id>",
				Action:    ingestCommand,
			},
			{
				Name:   "watch",
				Usage:  "Mirror a directory of documents into the knowledge base",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory to watch (defaults to the configured file store)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newBot builds a Bot from the YAML config. The classifier is wired only
// when a Dialogflow project is configured; withClassifier turns a missing
// project into an error for commands that need the conversation surface.
func newBot(c *cli.Context, withClassifier bool) (*charla.Bot, *config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	aiOpts := []ai.ConfigOption{
		ai.WithHost(cfg.AI.Host),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithCompletionModel(cfg.AI.CompletionModel),
		ai.WithTemperature(cfg.AI.Temperature),
		ai.WithMaxTokens(cfg.AI.MaxTokens),
	}
	if cfg.AI.EmbeddingHost != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingHost(cfg.AI.EmbeddingHost))
	}
	if cfg.AI.CompletionHost != "" {
		aiOpts = append(aiOpts, ai.WithCompletionHost(cfg.AI.CompletionHost))
	}
	if token := os.Getenv(cfg.AI.TokenEnv); token != "" {
		aiOpts = append(aiOpts, ai.WithToken(token))
	}

	botOpts := []charla.Option{
		charla.WithAIConfig(ai.NewConfig(aiOpts...)),
		charla.WithRetrieval(cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity),
		charla.WithChunking(cfg.Chunking.WindowSize, cfg.Chunking.Overlap),
	}
	if cfg.Store.InMemory {
		botOpts = append(botOpts, charla.WithInMemory())
	}
	if cfg.Files.Dir != "" {
		if err := os.MkdirAll(cfg.Files.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create file store directory: %w", err)
		}
		botOpts = append(botOpts, charla.WithFileDir(cfg.Files.Dir))
	}

	if withClassifier {
		if cfg.Dialogflow.ProjectID == "" {
			return nil, nil, fmt.Errorf("dialogflow.project_id is required to serve conversations")
		}
		dfOpts := []dialogflow.Option{dialogflow.WithLanguage(cfg.Dialogflow.Language)}
		if cfg.Dialogflow.CredentialsFile != "" {
			dfOpts = append(dfOpts, dialogflow.WithCredentialsFile(cfg.Dialogflow.CredentialsFile))
		}
		botOpts = append(botOpts, charla.WithDialogflow(cfg.Dialogflow.ProjectID, dfOpts...))
	}

	bot, err := charla.New(cfg.Store.Path, botOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open bot: %w", err)
	}
	return bot, cfg, nil
}

func serveCommand(c *cli.Context) error {
	bot, cfg, err := newBot(c, true)
	if err != nil {
		return err
	}
	defer bot.Close()

	server, err := webhook.NewServer(turnHandler{bot}, bot.Pipeline(), slog.Default())
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: server}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("webhook server listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// turnHandler adapts the Bot facade (which reports a wiring error) to the
// webhook's never-failing turn contract.
type turnHandler struct {
	bot *charla.Bot
}

func (h turnHandler) HandleTurn(ctx context.Context, query, sender string) string {
	reply, err := h.bot.HandleTurn(ctx, query, sender)
	if err != nil {
		slog.Error("turn unavailable", "err", err)
		return "Lo siento, el servicio no está disponible en este momento."
	}
	return reply
}

func addCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: charla add <id> <title> <text>")
	}

	bot, _, err := newBot(c, false)
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx := context.Background()
	id := c.Args().Get(0)

	if err := bot.AddTextSource(ctx, id, c.Args().Get(1), c.Args().Get(2)); err != nil {
		return fmt.Errorf("failed to register source: %w", err)
	}
	if err := bot.Ingest(ctx, id); err != nil {
		return fmt.Errorf("failed to ingest source: %w", err)
	}

	chunks, err := bot.Repository().GetChunksBySource(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Source %s ingested: %d chunks\n", id, len(chunks))
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: charla ingest <id>")
	}

	bot, _, err := newBot(c, false)
	if err != nil {
		return err
	}
	defer bot.Close()

	return bot.Ingest(context.Background(), c.Args().Get(0))
}

func watchCommand(c *cli.Context) error {
	bot, cfg, err := newBot(c, false)
	if err != nil {
		return err
	}
	defer bot.Close()

	dir := c.String("dir")
	if dir == "" {
		dir = cfg.Files.Dir
	}

	watcher, err := ingestion.NewWatcher(bot.Repository(), bot.Pipeline(), dir, slog.Default())
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Sync(ctx); err != nil {
		return err
	}
	watcher.Run(ctx)
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

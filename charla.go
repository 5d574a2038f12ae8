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


package charla

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/ai/dialogflow"
	"github.com/charlabot/charla/ai/openai"
	"github.com/charlabot/charla/conversation"
	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/ingestion"
	"github.com/charlabot/charla/storage"
	"github.com/charlabot/charla/storage/badger"
)

// ErrClassifierNotConfigured is returned by HandleTurn when the bot was
// built without a classifier (ingestion-only setups).
var ErrClassifierNotConfigured = errors.New("classifier not configured")

// Bot wires the whole stack: knowledge store, model services, ingestion
// pipeline and the conversation turn.
type Bot struct {
	backend      *badger.Backend
	repo         storage.KnowledgeRepository
	files        storage.FileStore
	provider     ai.Provider
	classifier   ai.Classifier
	pipeline     *ingestion.Pipeline
	orchestrator *conversation.Orchestrator
	logger       *slog.Logger

	closeClassifier func() error
}

// Option configures a Bot.
type Option func(*botOptions)

type botOptions struct {
	aiConfig          *ai.Config
	provider          ai.Provider
	classifier        ai.Classifier
	inMemory          bool
	fileDir           string
	dialogflowProject string
	dialogflowOpts    []dialogflow.Option
	topK              int
	minSimilarity     float32
	windowSize        int
	overlap           int
	logger            *slog.Logger
}

// WithAIConfig sets the configuration of the OpenAI-compatible services.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) Option {
	return func(o *botOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built provider instead of constructing the
// OpenAI-compatible one. Meant for tests.
func WithProvider(provider ai.Provider) Option {
	return func(o *botOptions) {
		o.provider = provider
	}
}

// WithClassifier injects a pre-built classifier. Meant for tests and for
// deployments with a non-Dialogflow classifier.
func WithClassifier(classifier ai.Classifier) Option {
	return func(o *botOptions) {
		o.classifier = classifier
	}
}

// WithDialogflow constructs the classifier against the Dialogflow agent of
// the given GCP project.
func WithDialogflow(projectID string, opts ...dialogflow.Option) Option {
	return func(o *botOptions) {
		o.dialogflowProject = projectID
		o.dialogflowOpts = opts
	}
}

// WithInMemory uses an in-memory knowledge store. The store path is ignored.
func WithInMemory() Option {
	return func(o *botOptions) {
		o.inMemory = true
	}
}

// WithFileDir sets the directory backing file-typed knowledge sources.
// Without it, only text sources can be ingested.
func WithFileDir(dir string) Option {
	return func(o *botOptions) {
		o.fileDir = dir
	}
}

// WithRetrieval sets the similarity query parameters of a turn.
func WithRetrieval(topK int, minSimilarity float32) Option {
	return func(o *botOptions) {
		o.topK = topK
		o.minSimilarity = minSimilarity
	}
}

// WithChunking sets the ingestion chunk window and overlap, in runes.
func WithChunking(windowSize, overlap int) Option {
	return func(o *botOptions) {
		o.windowSize = windowSize
		o.overlap = overlap
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *botOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New opens the knowledge store at storePath and wires the bot. Without a
// classifier option the conversation surface is disabled and only the
// ingestion surface works.
func New(storePath string, opts ...Option) (*Bot, error) {
	options := &botOptions{
		aiConfig:      ai.DefaultConfig(),
		topK:          conversation.DefaultTopK,
		minSimilarity: conversation.DefaultMinSimilarity,
		windowSize:    ingestion.DefaultWindowSize,
		overlap:       ingestion.DefaultOverlap,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(storePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var files storage.FileStore
	if options.fileDir != "" {
		files, err = storage.NewDirFileStore(options.fileDir)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	bot := &Bot{
		backend:  backend,
		repo:     repo,
		files:    files,
		provider: provider,
		logger:   options.logger,
	}

	bot.pipeline, err = ingestion.NewPipeline(repo, files, provider.Embedder(),
		ingestion.WithChunking(options.windowSize, options.overlap),
		ingestion.WithLogger(options.logger),
	)
	if err != nil {
		bot.Close()
		return nil, err
	}

	bot.classifier = options.classifier
	if bot.classifier == nil && options.dialogflowProject != "" {
		classifier, err := dialogflow.NewClassifier(context.Background(), options.dialogflowProject, options.dialogflowOpts...)
		if err != nil {
			bot.Close()
			return nil, err
		}
		bot.classifier = classifier
		bot.closeClassifier = classifier.Close
	}

	if bot.classifier != nil {
		if err := bot.wireConversation(options); err != nil {
			bot.Close()
			return nil, err
		}
	}

	return bot, nil
}

func (b *Bot) wireConversation(options *botOptions) error {
	filter, err := conversation.NewIntentFilter(b.classifier, options.logger)
	if err != nil {
		return err
	}

	retriever, err := conversation.NewRetriever(b.provider.Embedder(), b.repo,
		conversation.WithTopK(options.topK),
		conversation.WithMinSimilarity(options.minSimilarity),
		conversation.WithRetrieverLogger(options.logger),
	)
	if err != nil {
		return err
	}

	generator, err := conversation.NewGenerator(b.provider.Completer(), options.logger)
	if err != nil {
		return err
	}

	b.orchestrator, err = conversation.NewOrchestrator(filter, retriever, generator, options.logger)
	return err
}

// HandleTurn processes one inbound message and returns the reply text,
// which may be the handoff sentinel.
func (b *Bot) HandleTurn(ctx context.Context, query, sender string) (string, error) {
	if b.orchestrator == nil {
		return "", ErrClassifierNotConfigured
	}
	return b.orchestrator.HandleTurn(ctx, query, sender), nil
}

// AddTextSource registers (or replaces) a text knowledge source.
// Ingestion is not triggered; call Ingest or StartIngestion separately.
func (b *Bot) AddTextSource(ctx context.Context, id, title, content string) error {
	return b.repo.PutSource(ctx, &core.KnowledgeSource{
		ID:        id,
		Title:     title,
		Type:      core.SourceTypeText,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	})
}

// AddFileSource registers (or replaces) a file-backed knowledge source.
// The locator is resolved against the configured file directory.
func (b *Bot) AddFileSource(ctx context.Context, id, title, locator string) error {
	return b.repo.PutSource(ctx, &core.KnowledgeSource{
		ID:          id,
		Title:       title,
		Type:        core.SourceTypeFile,
		FileLocator: locator,
		UpdatedAt:   time.Now().UTC(),
	})
}

// Ingest runs the ingestion pipeline for the source synchronously.
func (b *Bot) Ingest(ctx context.Context, sourceID string) error {
	return b.pipeline.Ingest(ctx, sourceID)
}

// StartIngestion schedules a detached ingestion run for the source.
func (b *Bot) StartIngestion(sourceID string) {
	b.pipeline.Start(sourceID)
}

// Repository exposes the knowledge repository for listing and inspection.
func (b *Bot) Repository() storage.KnowledgeRepository {
	return b.repo
}

// Pipeline exposes the ingestion pipeline, e.g. for the directory watcher.
func (b *Bot) Pipeline() *ingestion.Pipeline {
	return b.pipeline
}

// Close releases every resource of the bot. Detached ingestion runs already
// in flight finish first-come first-served; new ones cannot be scheduled.
func (b *Bot) Close() error {
	if b.pipeline != nil {
		b.pipeline.Release()
	}

	if b.closeClassifier != nil {
		if err := b.closeClassifier(); err != nil {
			b.logger.Error("error closing classifier", "err", err)
		}
	}

	if err := b.provider.Close(); err != nil {
		b.logger.Error("error closing provider", "err", err)
	}

	if err := b.repo.Close(); err != nil {
		b.logger.Error("error closing repository", "err", err)
		return err
	}

	if err := b.backend.Close(); err != nil {
		b.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

package ingestion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
)

// Watcher keeps a directory of documents mirrored into the knowledge base.
// Every .txt and .md file becomes a text source with the file's content
// inline; every .pdf becomes a file source pointing at its own path. A
// created or modified file triggers a detached re-ingestion of its source.
type Watcher struct {
	repository storage.KnowledgeRepository
	pipeline   *Pipeline
	dir        string
	fsw        *fsnotify.Watcher
	logger     *slog.Logger
	done       chan struct{}
}

// NewWatcher creates a watcher over dir. Call Run to process events and
// Close to stop watching.
func NewWatcher(repository storage.KnowledgeRepository, pipeline *Pipeline, dir string, logger *slog.Logger) (*Watcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		repository: repository,
		pipeline:   pipeline,
		dir:        dir,
		fsw:        fsw,
		logger:     logger.With("component", "watcher"),
		done:       make(chan struct{}),
	}, nil
}

// Sync registers every supported file already present in the directory and
// schedules its ingestion. Meant to run once before Run.
func (w *Watcher) Sync(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.register(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// Run processes filesystem events until Close is called.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("watching directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.register(ctx, event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

// register upserts the source for one file and schedules its ingestion.
// Unsupported extensions are ignored.
func (w *Watcher) register(ctx context.Context, path string) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))

	source := &core.KnowledgeSource{
		ID:        sourceIDFromFilename(base),
		Title:     strings.TrimSuffix(base, filepath.Ext(base)),
		UpdatedAt: time.Now().UTC(),
	}

	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			w.logger.Error("error reading file", "path", path, "err", err)
			return
		}
		source.Type = core.SourceTypeText
		source.Content = string(data)

	case ".pdf":
		source.Type = core.SourceTypeFile
		source.FileLocator = base

	default:
		return
	}

	if err := w.repository.PutSource(ctx, source); err != nil {
		w.logger.Error("error registering source", "source", source.ID, "err", err)
		return
	}

	w.logger.Info("source registered", "source", source.ID, "file", base)
	w.pipeline.Start(source.ID)
}

// sourceIDFromFilename derives a stable source ID from a file name so
// repeated writes to the same file update the same source.
func sourceIDFromFilename(name string) string {
	id := strings.TrimSuffix(name, filepath.Ext(name))
	id = strings.ToLower(id)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

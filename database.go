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


package sift

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/ai/local"
	"github.com/poiesic/sift/ai/openai"
	"github.com/poiesic/sift/backfill"
	"github.com/poiesic/sift/ingestion"
	"github.com/poiesic/sift/search"
	"github.com/poiesic/sift/storage"
	"github.com/poiesic/sift/storage/badger"
)

// Database is the process-wide handle over the store and the embedding
// stack. Build it once at startup and pass it by reference; the gate's
// online/offline decision and the badger handles live here.
type Database struct {
	backend     *badger.Backend
	messageRepo storage.MessageRepository
	sessionRepo storage.SessionRepository
	vectorStore storage.VectorStore
	provider    ai.Provider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig overrides the embedding configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the store in memory, mainly for tests.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath and wires the embedding
// stack: the remote embedder behind the availability gate, with the
// deterministic local embedder as the offline fallback.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	remote, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}
	fallback := local.NewEmbedder(options.aiConfig.Dimensions)
	provider := ai.NewGate(remote, fallback, options.aiConfig.ProbeTimeout)

	return &Database{
		backend:     backend,
		messageRepo: badger.NewMessageRepository(backend),
		sessionRepo: badger.NewSessionRepository(backend),
		vectorStore: badger.NewVectorStore(backend),
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing embedding provider", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) MessageRepository() storage.MessageRepository {
	return db.messageRepo
}

func (db *Database) SessionRepository() storage.SessionRepository {
	return db.sessionRepo
}

func (db *Database) VectorStore() storage.VectorStore {
	return db.vectorStore
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.messageRepo, db.sessionRepo, db.provider, opts...)
}

// NewBackfillRunner builds a runner over this database's stores.
// progress may be nil to suppress output.
func (db *Database) NewBackfillRunner(config *backfill.Config, progress io.Writer) (*backfill.Runner, error) {
	return backfill.NewRunner(db.messageRepo, db.sessionRepo, db.vectorStore, config, progress)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.messageRepo, db.vectorStore, db.provider, opts...)
}

// Health reports aggregate indexing health, or one session's health
// when sessionID is non-empty.
func (db *Database) Health(ctx context.Context, sessionID string) (*backfill.HealthReport, error) {
	reporter, err := backfill.NewReporter(db.sessionRepo, db.provider)
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		return reporter.SessionHealth(ctx, sessionID)
	}
	return reporter.Health(ctx)
}

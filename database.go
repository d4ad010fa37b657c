// Copyright 2026 Quire Systems
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

// Package quire is the library entry point: a Database bundles the storage
// backend, AI provider, and vector store behind one handle, with factory
// methods for the ingestion pipeline, retriever, answer streamer, and
// reembedder.
package quire

import (
	"io"
	"log/slog"

	"github.com/quireio/quire/ai"
	"github.com/quireio/quire/ai/openai"
	"github.com/quireio/quire/chunker"
	"github.com/quireio/quire/ingestion"
	"github.com/quireio/quire/loader"
	"github.com/quireio/quire/ocr"
	"github.com/quireio/quire/rag"
	"github.com/quireio/quire/reembed"
	"github.com/quireio/quire/retrieval"
	"github.com/quireio/quire/storage"
	"github.com/quireio/quire/storage/badger"
	"github.com/quireio/quire/vectorstore"
)

// Database bundles everything opened against one database directory.
type Database struct {
	backend   *badger.Backend
	chunks    storage.ChunkRepository
	documents storage.DocumentRegistry
	progress  storage.ProgressStore
	provider  ai.AIProvider
	store     *vectorstore.Store
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// NewDatabase opens the database directory and wires the component stack.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	documents, err := badger.NewDocumentRegistry(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	progress, err := badger.NewProgressStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	store, err := vectorstore.NewStore(chunks, provider.Embedder())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		chunks:    chunks,
		documents: documents,
		progress:  progress,
		provider:  provider,
		store:     store,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.chunks.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document registry", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunks
}

func (db *Database) DocumentRegistry() storage.DocumentRegistry {
	return db.documents
}

func (db *Database) ProgressStore() storage.ProgressStore {
	return db.progress
}

func (db *Database) VectorStore() *vectorstore.Store {
	return db.store
}

// NewIngestionPipeline builds a pipeline with the full loader table and
// default chunking. The OCR engine and word restorer are constructed here,
// not lazily inside the PDF loader.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	loaders, err := loader.NewRegistry(ocr.NewExecEngine(), ocr.NewRestorer())
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New()
	if err != nil {
		return nil, err
	}

	return ingestion.NewPipeline(loaders, splitter, db.store, db.documents, db.progress, opts...)
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.store, opts...)
}

// NewStreamer builds an answer streamer over a default retriever.
func (db *Database) NewStreamer(opts ...rag.Option) (*rag.Streamer, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}
	return rag.NewStreamer(retriever, db.provider.Generator(), opts...)
}

// NewReembedder builds a reembedder that rewrites every stored vector
// with the current embedding model.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.chunks, db.documents, db.provider.Embedder(), config, progress)
}

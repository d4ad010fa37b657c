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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/quireio/quire/ai"
	"github.com/quireio/quire/ai/openai"
	"github.com/quireio/quire/chunker"
	"github.com/quireio/quire/core"
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

func main() {
	aiFlags := []cli.Flag{
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
			Name:  "chat-host",
			Usage: "Chat service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "qwen2.5:3b",
		},
	}

	dbFlag := &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}

	app := &cli.App{
		Name:  "quire",
		Usage: "Document ingestion and retrieval-augmented question answering",
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
				Name:      "ingest",
				Usage:     "Ingest documents into the database",
				ArgsUsage: "<files...>",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in characters",
						Value: chunker.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Character overlap between adjacent chunks",
						Value: chunker.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks embedded per provider call",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.Float64Flag{
						Name:  "batch-rate",
						Usage: "Allowed embedding batches per second (0 disables)",
						Value: ingestion.DefaultBatchRate,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Documents processed concurrently",
						Value: ingestion.DefaultPoolSize,
					},
				}, aiFlags...),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question over the ingested documents",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     append(append([]cli.Flag{dbFlag}, retrievalFlags()...), aiFlags...),
			},
			{
				Name:      "search",
				Usage:     "Find the document chunks most relevant to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     append(append([]cli.Flag{dbFlag}, retrievalFlags()...), aiFlags...),
			},
			{
				Name:  "documents",
				Usage: "Manage ingested documents",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List all ingested documents",
						Action: documentsListCommand,
						Flags:  []cli.Flag{dbFlag},
					},
					{
						Name:      "delete",
						Usage:     "Delete a document and all of its chunks",
						ArgsUsage: "<file-hash>",
						Action:    documentsDeleteCommand,
						Flags:     []cli.Flag{dbFlag},
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show ingestion status for a document",
				ArgsUsage: "<file-hash>",
				Action:    statusCommand,
				Flags:     []cli.Flag{dbFlag},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks with new embeddings",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					dbFlag,
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
				}, aiFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func retrievalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of chunks kept after reranking",
			Value: retrieval.DefaultRerankKeepK,
		},
		&cli.IntFlag{
			Name:  "rerank-k",
			Usage: "Number of candidates considered for reranking",
			Value: retrieval.DefaultRerankK,
		},
		&cli.Float64Flag{
			Name:  "score-threshold",
			Usage: "Minimum relevance score for retrieved chunks",
			Value: 0,
		},
	}
}

// stores bundles everything opened against one database directory.
type stores struct {
	backend   *badger.Backend
	chunks    storage.ChunkRepository
	documents storage.DocumentRegistry
	progress  storage.ProgressStore
}

func openStores(dbPath string) (*stores, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create chunk repository: %w", err)
	}

	documents, err := badger.NewDocumentRegistry(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create document registry: %w", err)
	}

	progress, err := badger.NewProgressStore(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create progress store: %w", err)
	}

	return &stores{backend: backend, chunks: chunks, documents: documents, progress: progress}, nil
}

func (s *stores) Close() {
	s.backend.Close()
}

func buildAIConfig(c *cli.Context) (*ai.Config, error) {
	chatHost := c.String("chat-host")
	if chatHost == "" {
		chatHost = c.String("embedding-host")
	}

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(chatHost),
		ai.WithChatModel(c.String("chat-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func buildRetriever(c *cli.Context, store *vectorstore.Store) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(store,
		retrieval.WithRerank(c.Int("rerank-k"), c.Int("top-k")),
		retrieval.WithScoreThreshold(float32(c.Float64("score-threshold"))),
	)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	config, err := buildAIConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := vectorstore.NewStore(st.chunks, embedder)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}

	loaders, err := loader.NewRegistry(ocr.NewExecEngine(), ocr.NewRestorer())
	if err != nil {
		return fmt.Errorf("failed to create loader registry: %w", err)
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(c.Int("chunk-size")),
		chunker.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(loaders, splitter, store, st.documents, st.progress,
		ingestion.WithPoolSize(c.Int("workers")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithBatchRate(c.Float64("batch-rate")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	// Submit everything, then poll progress until all documents settle.
	hashes := make(map[string]string)
	for _, path := range c.Args().Slice() {
		fileHash, err := pipeline.Submit(ctx, ingestion.Job{Path: path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		hashes[fileHash] = path
	}
	if len(hashes) == 0 {
		return fmt.Errorf("no documents accepted")
	}

	pollProgress(ctx, st.progress, hashes)
	pipeline.Wait()

	var failed int
	for fileHash, path := range hashes {
		record, err := st.documents.GetDocument(ctx, fileHash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		switch record.Status {
		case core.StatusCompleted:
			fmt.Printf("%s: %d chunks (%s)\n", record.Filename, record.ChunkCount, fileHash)
		default:
			fmt.Fprintf(os.Stderr, "%s: %s %s\n", record.Filename, record.Status, record.ErrorMessage)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(hashes))
	}
	return nil
}

// pollProgress prints progress lines until every tracked document reports
// a terminal status.
func pollProgress(ctx context.Context, progress storage.ProgressStore, hashes map[string]string) {
	pending := make(map[string]int)
	for fileHash := range hashes {
		pending[fileHash] = -1
	}

	for len(pending) > 0 {
		time.Sleep(250 * time.Millisecond)

		for fileHash, lastPercent := range pending {
			entry, err := progress.Get(ctx, fileHash)
			if err != nil {
				continue
			}
			if entry.Percent != lastPercent {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s\n", entry.Percent, hashes[fileHash], entry.Message)
				pending[fileHash] = entry.Percent
			}
			if entry.Status == "completed" || entry.Status == "failed" {
				delete(pending, fileHash)
			}
		}
	}
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	config, err := buildAIConfig(c)
	if err != nil {
		return err
	}
	provider, err := openai.NewProvider(config)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	store, err := vectorstore.NewStore(st.chunks, provider.Embedder())
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	retriever, err := buildRetriever(c, store)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}
	streamer, err := rag.NewStreamer(retriever, provider.Generator())
	if err != nil {
		return fmt.Errorf("failed to create streamer: %w", err)
	}

	var sources []rag.Source
	err = streamer.Stream(ctx, question, func(ctx context.Context, event rag.Event) error {
		switch event.Type {
		case rag.EventRetrieving:
			fmt.Fprintln(os.Stderr, "Searching documents...")
		case rag.EventSources:
			sources = event.Sources
		case rag.EventToken:
			fmt.Print(event.Token)
		case rag.EventDone:
			fmt.Println()
		case rag.EventError:
			fmt.Fprintln(os.Stderr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range sources {
			fmt.Printf("  [%d] %s, page %d (score %.2f)\n",
				source.Citation, source.Filename, source.Page+1, source.Score)
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	config, err := buildAIConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := vectorstore.NewStore(st.chunks, embedder)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	retriever, err := buildRetriever(c, store)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	results, err := retriever.Retrieve(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No matching chunks found.")
		return nil
	}

	for i, result := range results {
		source := result.Chunk.Metadata[core.MetaSource]
		if source == "" {
			source = result.Chunk.FileHash
		}
		preview := strings.Join(strings.Fields(result.Chunk.Content), " ")
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		fmt.Printf("%d. %s, page %d (score %.3f)\n   %s\n",
			i+1, source, result.Chunk.Page+1, result.Score, preview)
	}
	return nil
}

func documentsListCommand(c *cli.Context) error {
	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.documents.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	for _, record := range records {
		line := fmt.Sprintf("%s  %-10s  %s  %d chunks",
			record.FileHash, record.Status, record.Filename, record.ChunkCount)
		if record.ErrorMessage != "" {
			line += "  (" + record.ErrorMessage + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func documentsDeleteCommand(c *cli.Context) error {
	fileHash := c.Args().First()
	if fileHash == "" {
		return fmt.Errorf("a file hash is required")
	}

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.documents.DeleteDocument(context.Background(), fileHash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no document with hash %s", fileHash)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	fmt.Printf("Deleted %s\n", fileHash)
	return nil
}

func statusCommand(c *cli.Context) error {
	fileHash := c.Args().First()
	if fileHash == "" {
		return fmt.Errorf("a file hash is required")
	}

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	// Live progress wins over the persisted record while ingestion runs.
	if entry, err := st.progress.Get(ctx, fileHash); err == nil {
		fmt.Printf("%s: %d%% %s (%s)\n", fileHash, entry.Percent, entry.Message, entry.Status)
		return nil
	}

	record, err := st.documents.GetDocument(ctx, fileHash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no document with hash %s", fileHash)
		}
		return fmt.Errorf("failed to read document: %w", err)
	}

	fmt.Printf("%s: %s %s", record.FileHash, record.Status, record.Filename)
	if record.Status == core.StatusCompleted {
		fmt.Printf(", %d chunks, %d bytes", record.ChunkCount, record.FileSize)
	}
	if record.ErrorMessage != "" {
		fmt.Printf(", error: %s", record.ErrorMessage)
	}
	fmt.Println()
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	st, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	config, err := buildAIConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

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

	reembedder := reembed.NewReembedder(st.chunks, st.documents, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
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

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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/quireio/quire/chunker"
	"github.com/quireio/quire/core"
	"github.com/quireio/quire/loader"
	"github.com/quireio/quire/storage"
	"github.com/quireio/quire/vectorstore"
)

const (
	// DefaultPoolSize bounds how many documents process concurrently.
	DefaultPoolSize = 2

	// DefaultBatchSize is the number of chunks embedded per provider call.
	DefaultBatchSize = 10

	// DefaultBatchRate is the allowed batches per second against the
	// embedding provider.
	DefaultBatchRate = 1.0

	// DefaultProgressTTL bounds how long a stale progress entry from a
	// crashed job can linger.
	DefaultProgressTTL = time.Hour
)

// Pipeline orchestrates document ingestion on a bounded worker pool.
type Pipeline struct {
	loaders     *loader.Registry
	splitter    *chunker.Chunker
	store       *vectorstore.Store
	documents   storage.DocumentRegistry
	progress    storage.ProgressStore
	pool        *ants.Pool
	batchSize   int
	batchRate   float64
	progressTTL time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent documents.
// Default is DefaultPoolSize, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per provider call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithBatchRate sets the allowed batches per second. Zero or below
// disables the inter-batch wait.
func WithBatchRate(perSecond float64) Option {
	return func(p *Pipeline) error {
		p.batchRate = perSecond
		return nil
	}
}

// WithProgressTTL sets how long progress entries live in the store.
func WithProgressTTL(ttl time.Duration) Option {
	return func(p *Pipeline) error {
		p.progressTTL = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	loaders *loader.Registry,
	splitter *chunker.Chunker,
	store *vectorstore.Store,
	documents storage.DocumentRegistry,
	progress storage.ProgressStore,
	opts ...Option,
) (*Pipeline, error) {
	if loaders == nil {
		return nil, ErrLoaderRegistryRequired
	}
	if splitter == nil {
		return nil, ErrChunkerRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if documents == nil {
		return nil, ErrRegistryRequired
	}
	if progress == nil {
		return nil, ErrProgressRequired
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		loaders:     loaders,
		splitter:    splitter,
		store:       store,
		documents:   documents,
		progress:    progress,
		pool:        pool,
		batchSize:   DefaultBatchSize,
		batchRate:   DefaultBatchRate,
		progressTTL: DefaultProgressTTL,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Job describes one document to ingest.
type Job struct {
	// Path is the file to ingest.
	Path string

	// Filename overrides the display name recorded for the document.
	// Defaults to the base name of Path.
	Filename string

	// RemoveAfter deletes Path once the job finishes, success or not.
	// Used for uploads spooled to temp files.
	RemoveAfter bool
}

// Submit registers the document and queues it for processing. The returned
// file hash identifies the document for status polling. Registration errors
// (unsupported format, duplicate upload) are returned synchronously;
// processing failures are recorded on the document record.
func (p *Pipeline) Submit(ctx context.Context, job Job) (string, error) {
	fileHash, err := p.register(ctx, &job)
	if err != nil {
		if job.RemoveAfter {
			os.Remove(job.Path)
		}
		return "", err
	}

	p.wg.Add(1)
	submitErr := p.pool.Submit(func() {
		defer p.wg.Done()
		p.run(context.Background(), job, fileHash)
	})
	if submitErr != nil {
		p.wg.Done()
		p.fail(ctx, fileHash, submitErr)
		if job.RemoveAfter {
			os.Remove(job.Path)
		}
		return fileHash, submitErr
	}
	return fileHash, nil
}

// Ingest processes the document synchronously, bypassing the pool.
// Returns the file hash once the document is COMPLETED or FAILED.
func (p *Pipeline) Ingest(ctx context.Context, job Job) (string, error) {
	fileHash, err := p.register(ctx, &job)
	if err != nil {
		if job.RemoveAfter {
			os.Remove(job.Path)
		}
		return "", err
	}
	if err := p.run(ctx, job, fileHash); err != nil {
		return fileHash, err
	}
	return fileHash, nil
}

// Wait blocks until all submitted jobs have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release releases the worker pool after draining in-flight jobs.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}

// register validates the file, derives its hash, and creates the
// PROCESSING document record.
func (p *Pipeline) register(ctx context.Context, job *Job) (string, error) {
	if _, err := p.loaders.Dispatch(job.Path); err != nil {
		return "", err
	}

	info, err := os.Stat(job.Path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", job.Path, err)
	}
	if job.Filename == "" {
		job.Filename = info.Name()
	}

	fileHash := core.FileHash(job.Filename, strconv.FormatInt(info.Size(), 10))

	record := &core.DocumentRecord{
		FileHash: fileHash,
		Filename: job.Filename,
		Status:   core.StatusProcessing,
	}
	if err := p.documents.CreateDocument(ctx, record); err != nil {
		return "", err
	}
	return fileHash, nil
}

// newLimiter builds the inter-batch limiter. A nil limiter means no wait.
// The initial burst token is drained so the first wait already spaces the
// batches 1/rate apart.
func (p *Pipeline) newLimiter() *rate.Limiter {
	if p.batchRate <= 0 {
		return nil
	}
	limiter := rate.NewLimiter(rate.Limit(p.batchRate), 1)
	limiter.Allow()
	return limiter
}

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
	"os"

	"github.com/quireio/quire/core"
)

// Progress checkpoints for one document. Batch ingestion fills the band
// between progressChunked and progressDone proportionally.
const (
	progressLoading = 10
	progressLoaded  = 30
	progressSplit   = 40
	progressChunked = 60
	progressDone    = 100
	ingestBandWidth = 35
)

// run processes one registered document end-to-end. The returned error is
// also recorded on the document record; callers running async only log it.
func (p *Pipeline) run(ctx context.Context, job Job, fileHash string) error {
	logger := p.logger.With("file_hash", fileHash, "filename", job.Filename)

	defer func() {
		if job.RemoveAfter {
			if err := os.Remove(job.Path); err != nil && !os.IsNotExist(err) {
				logger.Warn("removing temp file", "path", job.Path, "err", err)
			}
		}
	}()

	p.setProgress(ctx, fileHash, progressLoading, "Loading document", "running")

	units, err := p.loaders.Load(ctx, job.Path)
	if err != nil {
		logger.Error("loading document", "err", err)
		p.fail(ctx, fileHash, err)
		return err
	}
	p.setProgress(ctx, fileHash, progressLoaded,
		fmt.Sprintf("Loaded %d pages", len(units)), "running")

	p.setProgress(ctx, fileHash, progressSplit, "Splitting into chunks", "running")
	chunks := p.splitter.Split(units, fileHash)
	if len(chunks) == 0 {
		logger.Error("no chunks produced")
		p.fail(ctx, fileHash, ErrNoContent)
		return ErrNoContent
	}
	p.setProgress(ctx, fileHash, progressChunked,
		fmt.Sprintf("Created %d chunks", len(chunks)), "running")

	limiter := p.newLimiter()
	total := len(chunks)
	ingested := 0

	for start := 0; start < total; start += p.batchSize {
		end := start + p.batchSize
		if end > total {
			end = total
		}

		batch := make([]*core.Chunk, end-start)
		for i := range batch {
			batch[i] = &chunks[start+i]
		}

		if _, err := p.store.Upsert(ctx, batch); err != nil {
			logger.Error("ingesting batch", "batch_start", start, "err", err)
			p.fail(ctx, fileHash, err)
			return err
		}
		ingested = end

		percent := progressChunked + ingested*ingestBandWidth/total
		p.setProgress(ctx, fileHash, percent,
			fmt.Sprintf("Ingested %d/%d chunks", ingested, total), "running")

		// No wait after the final batch.
		if limiter != nil && end < total {
			if err := limiter.Wait(ctx); err != nil {
				logger.Error("rate limit wait", "err", err)
				p.fail(ctx, fileHash, err)
				return err
			}
		}
	}

	var estimatedSize int64
	for i := range chunks {
		estimatedSize += int64(len(chunks[i].Content))
	}

	if err := p.documents.MarkCompleted(ctx, fileHash, total, estimatedSize); err != nil {
		logger.Error("marking document completed", "err", err)
		p.fail(ctx, fileHash, err)
		return err
	}
	p.setProgress(ctx, fileHash, progressDone, "Ingestion complete", "completed")

	logger.Info("document ingested", "chunks", total, "size", estimatedSize)
	return nil
}

// fail records the failure on the document record and in the progress
// store. Best effort: bookkeeping errors are logged, never propagated.
func (p *Pipeline) fail(ctx context.Context, fileHash string, cause error) {
	if err := p.documents.MarkFailed(ctx, fileHash, cause.Error()); err != nil {
		p.logger.Error("marking document failed", "file_hash", fileHash, "err", err)
	}
	p.setProgress(ctx, fileHash, 0, cause.Error(), "failed")
}

func (p *Pipeline) setProgress(ctx context.Context, fileHash string, percent int, message, status string) {
	entry := &core.Progress{Percent: percent, Message: message, Status: status}
	if err := p.progress.Set(ctx, fileHash, entry, p.progressTTL); err != nil {
		p.logger.Error("writing progress", "file_hash", fileHash, "err", err)
	}
}

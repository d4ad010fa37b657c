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

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/quireio/quire/ai"
	"github.com/quireio/quire/core"
	"github.com/quireio/quire/storage"
)

const (
	// DefaultFetchK is how many candidates MMR reranking considers before
	// selecting the final k.
	DefaultFetchK = 20

	// DefaultLambda balances relevance against diversity in MMR selection.
	// 1.0 is pure relevance, 0.0 is pure diversity.
	DefaultLambda = 0.5
)

// ScoreTransform maps a raw cosine similarity onto the score reported to
// callers. The default is NormalizedCosine.
type ScoreTransform func(similarity float32) float32

// NormalizedCosine maps cosine similarity in [-1, 1] onto [0, 1]. This is
// the same value as 1 - d/2 over the cosine distance d, so identical
// vectors score 1.0 and opposite vectors 0.0.
func NormalizedCosine(similarity float32) float32 {
	return (1 + similarity) / 2
}

// Store embeds chunk content and persists the result. It is the only
// component that turns document text into vectors.
type Store struct {
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	transform ScoreTransform
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithScoreTransform sets the mapping from raw similarity to reported score.
func WithScoreTransform(transform ScoreTransform) Option {
	return func(s *Store) error {
		s.transform = transform
		return nil
	}
}

// NewStore creates a vector store over the given repository and embedder.
func NewStore(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if chunks == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	s := &Store{
		chunks:    chunks,
		embedder:  embedder,
		transform: NormalizedCosine,
		logger:    slog.Default().With("component", "vectorstore"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Upsert embeds the chunks' content and persists them. Chunk IDs are
// derived from file hash and content, so re-upserting a document's chunk
// overwrites in place. Returns the IDs of the stored chunks.
func (s *Store) Upsert(ctx context.Context, chunks []*core.Chunk) ([]core.ID, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			ErrEmbeddingCountMismatch, len(vectors), len(chunks))
	}
	for i, chunk := range chunks {
		chunk.Vector = vectors[i]
	}

	stored, err := s.chunks.AddChunks(ctx, chunks...)
	if err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	ids := make([]core.ID, len(stored))
	for i, chunk := range stored {
		ids[i] = chunk.Id
	}
	s.logger.DebugContext(ctx, "upserted chunks", "count", len(ids))
	return ids, nil
}

// SimilaritySearchWithScore embeds the query and returns up to k chunks
// with transformed score >= minScore, ordered best first.
func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, k int, minScore float32) ([]*core.SearchResult, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}

	results, err := s.chunks.FindSimilar(ctx, vector, -1, k*4)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	out := make([]*core.SearchResult, 0, k)
	for _, result := range results {
		score := s.transform(result.Score)
		if score < minScore {
			continue
		}
		result.Score = score
		out = append(out, result)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// MaxMarginalRelevanceSearch embeds the query, fetches fetchK candidates
// and greedily selects k of them trading off query relevance against
// diversity among the already selected results. lambda weights relevance;
// pass DefaultLambda for a balanced selection.
func (s *Store) MaxMarginalRelevanceSearch(ctx context.Context, query string, k, fetchK int, lambda float32) ([]*core.SearchResult, error) {
	if fetchK < k {
		fetchK = k
	}
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}

	candidates, err := s.chunks.FindSimilar(ctx, vector, -1, fetchK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(candidates) <= k {
		for _, result := range candidates {
			result.Score = s.transform(result.Score)
		}
		return candidates, nil
	}

	selected := make([]*core.SearchResult, 0, k)
	remaining := make([]*core.SearchResult, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := float32(math.Inf(-1))
		for i, candidate := range remaining {
			redundancy := float32(0)
			for _, picked := range selected {
				sim := cosineSimilarity(candidate.Chunk.Vector, picked.Chunk.Vector)
				if sim > redundancy {
					redundancy = sim
				}
			}
			mmr := lambda*candidate.Score - (1-lambda)*redundancy
			if mmr > bestScore {
				bestScore = mmr
				bestIdx = i
			}
		}
		picked := remaining[bestIdx]
		picked.Score = s.transform(picked.Score)
		selected = append(selected, picked)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected, nil
}

// DeleteByFileHash removes every stored chunk belonging to one uploaded
// document. Returns the number of chunks removed.
func (s *Store) DeleteByFileHash(ctx context.Context, fileHash string) (int, error) {
	return s.chunks.DeleteByFileHash(ctx, fileHash)
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.chunks.Count(ctx)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

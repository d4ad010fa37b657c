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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quireio/quire/core"
	"github.com/quireio/quire/vectorstore"
)

// SearchType selects the candidate ranking strategy.
type SearchType string

const (
	// SearchSimilarity ranks purely by similarity to the query.
	SearchSimilarity SearchType = "similarity"

	// SearchMMR ranks by maximal marginal relevance, trading some
	// relevance for diversity among the results.
	SearchMMR SearchType = "mmr"

	// SearchSimilarityScoreThreshold is an accepted alias for similarity
	// search; the score threshold applies to both.
	SearchSimilarityScoreThreshold SearchType = "similarity_score_threshold"
)

const (
	// DefaultK is the number of results returned without reranking.
	DefaultK = 4

	// DefaultRerankK is how many candidates reranking considers.
	DefaultRerankK = 20

	// DefaultRerankKeepK is how many candidates survive reranking.
	DefaultRerankKeepK = 5
)

// Retriever applies search policy on top of the vector store.
type Retriever struct {
	store          *vectorstore.Store
	k              int
	fetchK         int
	searchType     SearchType
	scoreThreshold float32
	rerankEnabled  bool
	rerankK        int
	rerankKeepK    int
	logger         *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithK sets the number of results returned without reranking.
func WithK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidParameter, k)
		}
		r.k = k
		return nil
	}
}

// WithFetchK sets the MMR candidate pool size.
func WithFetchK(fetchK int) Option {
	return func(r *Retriever) error {
		if fetchK <= 0 {
			return fmt.Errorf("%w: fetchK must be positive, got %d", ErrInvalidParameter, fetchK)
		}
		r.fetchK = fetchK
		return nil
	}
}

// WithSearchType sets the ranking strategy.
func WithSearchType(searchType SearchType) Option {
	return func(r *Retriever) error {
		switch searchType {
		case SearchSimilarity, SearchMMR, SearchSimilarityScoreThreshold:
			r.searchType = searchType
			return nil
		default:
			return fmt.Errorf("%w: unknown search type %q", ErrInvalidParameter, searchType)
		}
	}
}

// WithScoreThreshold drops similarity results scoring below the threshold.
func WithScoreThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		r.scoreThreshold = threshold
		return nil
	}
}

// WithRerank enables threshold reranking: rerankK candidates are fetched
// and at most keepK survive.
func WithRerank(rerankK, keepK int) Option {
	return func(r *Retriever) error {
		if rerankK <= 0 || keepK <= 0 {
			return fmt.Errorf("%w: rerank sizes must be positive", ErrInvalidParameter)
		}
		if keepK > rerankK {
			return fmt.Errorf("%w: keepK %d exceeds rerankK %d", ErrInvalidParameter, keepK, rerankK)
		}
		r.rerankEnabled = true
		r.rerankK = rerankK
		r.rerankKeepK = keepK
		return nil
	}
}

// WithoutRerank disables reranking; similarity search returns k results.
func WithoutRerank() Option {
	return func(r *Retriever) error {
		r.rerankEnabled = false
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the given vector store. Reranking
// is enabled by default with DefaultRerankK and DefaultRerankKeepK.
func NewRetriever(store *vectorstore.Store, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	r := &Retriever{
		store:         store,
		k:             DefaultK,
		fetchK:        vectorstore.DefaultFetchK,
		searchType:    SearchSimilarity,
		rerankEnabled: true,
		rerankK:       DefaultRerankK,
		rerankKeepK:   DefaultRerankKeepK,
		logger:        slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Retrieve returns the chunks most relevant to the query, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*core.SearchResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	switch r.searchType {
	case SearchMMR:
		// MMR already balances relevance against diversity, so threshold
		// reranking is skipped.
		results, err := r.store.MaxMarginalRelevanceSearch(ctx, query, r.k, r.fetchK, vectorstore.DefaultLambda)
		if err != nil {
			return nil, err
		}
		r.logger.DebugContext(ctx, "retrieved chunks", "strategy", "mmr", "count", len(results))
		return results, nil

	default:
		if !r.rerankEnabled {
			results, err := r.store.SimilaritySearchWithScore(ctx, query, r.k, r.scoreThreshold)
			if err != nil {
				return nil, err
			}
			r.logger.DebugContext(ctx, "retrieved chunks", "strategy", "similarity", "count", len(results))
			return results, nil
		}

		fetch := r.rerankK
		if r.k > fetch {
			fetch = r.k
		}
		results, err := r.store.SimilaritySearchWithScore(ctx, query, fetch, r.scoreThreshold)
		if err != nil {
			return nil, err
		}
		if len(results) > r.rerankKeepK {
			results = results[:r.rerankKeepK]
		}
		r.logger.DebugContext(ctx, "retrieved chunks",
			"strategy", "similarity+rerank", "fetched", fetch, "kept", len(results))
		return results, nil
	}
}

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

package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/quireio/quire/ai"
)

// MockEmbedder is a configurable test double for ai.Embedder.
// When the function fields are nil, deterministic vectors derived from the
// input text are returned, so tests get stable similarity orderings
// without a live model.
type MockEmbedder struct {
	// EmbedTextFunc allows custom behavior injection for single text embedding.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc allows custom behavior injection for batch embedding.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions controls the length of generated vectors. Zero means 16.
	Dimensions int

	mu         sync.Mutex
	embedCalls int
	batchSizes []int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText implements ai.Embedder.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.generateDeterministicVector(text), nil
}

// EmbedTexts implements ai.Embedder.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.generateDeterministicVector(text)
	}
	return vectors, nil
}

// CallCount returns how many times EmbedText or EmbedTexts was invoked.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// BatchSizes returns the sizes of every batch passed to EmbedTexts,
// in call order.
func (m *MockEmbedder) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.batchSizes))
	copy(out, m.batchSizes)
	return out
}

// generateDeterministicVector produces a stable unit-length vector from
// the text. Identical inputs always map to identical vectors.
func (m *MockEmbedder) generateDeterministicVector(text string) []float32 {
	dims := m.Dimensions
	if dims <= 0 {
		dims = 16
	}
	vector := make([]float32, dims)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var sum float64
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		// Map the top 32 bits to [-1, 1).
		vector[i] = float32(int32(seed>>32)) / float32(1<<31)
		sum += float64(vector[i]) * float64(vector[i])
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}

var _ ai.Embedder = (*MockEmbedder)(nil)

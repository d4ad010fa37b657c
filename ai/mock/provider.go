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

import "github.com/quireio/quire/ai"

// MockProvider aggregates a MockEmbedder and MockGenerator behind the
// ai.AIProvider interface.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockGenerator
	closed    bool
}

// NewMockProvider creates a provider with default mock components.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		generator: NewMockGenerator(),
	}
}

// Embedder implements ai.AIProvider.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator implements ai.AIProvider.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Close implements ai.AIProvider.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock for behavior injection.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the underlying mock for behavior injection.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

var _ ai.AIProvider = (*MockProvider)(nil)

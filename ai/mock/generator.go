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
	"strings"
	"sync"

	"github.com/quireio/quire/ai"
)

// MockGenerator is a configurable test double for ai.Generator. It streams
// a scripted sequence of tokens and can be told to fail partway through,
// which lets tests exercise partial-stream error handling.
type MockGenerator struct {
	// Tokens is the scripted stream emitted by StreamCompletion and joined
	// to form the Complete result.
	Tokens []string

	// FailAfter, when non-negative, causes StreamCompletion to return Err
	// after emitting that many tokens. A negative value disables failure
	// injection.
	FailAfter int

	// Err is the error returned when failure injection triggers. It is also
	// returned by Complete when set together with FailAfter >= 0.
	Err error

	// CompleteFunc allows custom behavior injection for Complete.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// StreamFunc allows custom behavior injection for StreamCompletion.
	StreamFunc func(ctx context.Context, prompt string, onToken ai.TokenFunc) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockGenerator creates a mock generator that streams the given tokens.
func NewMockGenerator(tokens ...string) *MockGenerator {
	return &MockGenerator{Tokens: tokens, FailAfter: -1}
}

// Complete implements ai.Generator.
func (m *MockGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	m.recordPrompt(prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.FailAfter >= 0 && m.Err != nil {
		return "", m.Err
	}
	return strings.Join(m.Tokens, ""), nil
}

// StreamCompletion implements ai.Generator. Tokens are delivered one at a
// time through onToken. When failure injection is configured the scripted
// error is returned along with the text streamed so far.
func (m *MockGenerator) StreamCompletion(ctx context.Context, prompt string, onToken ai.TokenFunc) (string, error) {
	m.recordPrompt(prompt)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, onToken)
	}

	var sb strings.Builder
	for i, token := range m.Tokens {
		if m.FailAfter >= 0 && i >= m.FailAfter {
			return sb.String(), m.Err
		}
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}
		if onToken != nil {
			if err := onToken(ctx, token); err != nil {
				return sb.String(), err
			}
		}
		sb.WriteString(token)
	}
	if m.FailAfter >= 0 && m.FailAfter >= len(m.Tokens) {
		return sb.String(), m.Err
	}
	return sb.String(), nil
}

// Prompts returns every prompt the generator has seen, in call order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

func (m *MockGenerator) recordPrompt(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

var _ ai.Generator = (*MockGenerator)(nil)

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

package rag

import (
	"fmt"
	"strings"

	"github.com/quireio/quire/core"
)

const answerPromptTemplate = `You are a helpful assistant that answers questions using the user's documents.

Answer the question using only the context below. If the context does not contain enough information, say that you cannot answer from the available documents. When you use information from a document, cite it inline as [Document N].

Context:
%s

Question: %s

Answer:`

// buildPrompt assembles the generation prompt. Each retrieved chunk is
// prefixed with its citation marker so the model can cite it back.
func buildPrompt(question string, docs []core.RetrievedDocument) string {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		source := doc.Chunk.Metadata[core.MetaSource]
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&sb, "[Document %d] (%s, page %d)\n%s",
			doc.Citation, source, doc.Chunk.Page+1, doc.Chunk.Content)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no relevant documents found)")
	}
	return fmt.Sprintf(answerPromptTemplate, sb.String(), question)
}

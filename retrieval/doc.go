// Package retrieval selects the chunks that ground an answer.
//
// The Retriever sits above the vector store and adds search policy:
// similarity search with score-threshold reranking, or maximal marginal
// relevance for diversity. Reranking over-fetches candidates, drops those
// below the score threshold and keeps only the strongest few, which keeps
// prompts short without starving the model of context.
package retrieval

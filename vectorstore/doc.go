// Package vectorstore combines chunk persistence with embedding generation.
//
// The Store is the single place where text becomes vectors: it embeds chunk
// content through an ai.Embedder and persists the result through a
// storage.ChunkRepository. Retrieval layers above never call the embedder
// for documents themselves; they only embed queries through the Store.
//
// Similarity search supports plain nearest-neighbor ranking and maximal
// marginal relevance reranking for result diversity.
package vectorstore

// Package rag answers questions over the ingested corpus.
//
// The Streamer drives one question through retrieval, prompt assembly and
// streamed generation, emitting a typed event sequence the whole way:
// start, retrieving, sources, thinking, then one token event per generated
// token and a final done event carrying the full answer. Failures surface
// as a terminal error event instead of done.
//
// Retrieved chunks are numbered with 1-based citations. The model sees each
// chunk prefixed with its citation marker so it can reference sources in
// the answer; clients get the same numbering in the sources event together
// with a short content preview.
package rag

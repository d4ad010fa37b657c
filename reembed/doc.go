// Package reembed regenerates vectors for chunks already in the database,
// used after switching to a new or updated embedding model.
//
// Chunks are walked document by document and re-embedded in batches with
// retry and exponential backoff; chunks keep their IDs so the rewrite
// happens in place. Progress is reported to a configurable writer.
package reembed

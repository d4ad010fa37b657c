// Package ingestion orchestrates document processing from file to vectors.
//
// The Pipeline runs each submitted document end-to-end on a bounded worker
// pool: load, chunk, embed in batches, persist. The document registry
// tracks lifecycle (PROCESSING, COMPLETED, FAILED) while the progress store
// holds ephemeral percent-complete entries that status pollers read.
//
// Failures are localized to one document. A bad file marks its own record
// FAILED and never aborts a sibling job; an embedding-provider failure
// aborts the document's remaining batches but keeps the batches already
// ingested.
package ingestion

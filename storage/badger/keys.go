package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/quireio/quire/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkFileHashPrefix = "chkfh"
	documentPrefix      = "docrec"
	progressPrefix      = "prog"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkFileHashKey generates a composite key for the file-hash index.
// Format: prefix:fileHash:id
func makeChunkFileHashKey(fileHash string, id core.ID) []byte {
	prefix := chunkFileHashPrefix + ":" + fileHash + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkFileHashKey generates the prefix covering every index
// entry of one file hash.
func makePartialChunkFileHashKey(fileHash string) []byte {
	return []byte(chunkFileHashPrefix + ":" + fileHash + ":")
}

// makeDocumentKey generates a key for a document record by file hash.
func makeDocumentKey(fileHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, fileHash))
}

// makeProgressKey generates a key for an ingestion progress entry.
func makeProgressKey(fileHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", progressPrefix, fileHash))
}

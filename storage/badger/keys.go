package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	sourcePrefix = "knsrc"
	chunkPrefix  = "knchk"
)

// makeSourceKey generates a key for a knowledge source by ID.
func makeSourceKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sourcePrefix, id))
}

// makeChunkKey generates a composite key for a chunk row.
// Format: prefix:sourceID:seq, with seq in BigEndian order so a prefix scan
// over one source returns chunks in document order.
func makeChunkKey(sourceID string, seq int) []byte {
	prefix := makeChunkSourcePrefix(sourceID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makeChunkSourcePrefix generates the scan prefix for one source's chunks.
// Format: prefix:sourceID:
func makeChunkSourcePrefix(sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, sourceID))
}

// chunkScanPrefix is the scan prefix covering every chunk row.
func chunkScanPrefix() []byte {
	return []byte(chunkPrefix + ":")
}

// sourceScanPrefix is the scan prefix covering every source row.
func sourceScanPrefix() []byte {
	return []byte(sourcePrefix + ":")
}

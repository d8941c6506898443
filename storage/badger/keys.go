package badger

import (
	"encoding/binary"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
)

// Key prefixes for different data types
const (
	publicationPrefix = "pubrec:"
	chunkPrefix       = "chunkrec:"
	chunkPubPrefix    = "chunkpub:"
)

// makePublicationKey generates a key for a publication by ID.
func makePublicationKey(id string) []byte {
	return append([]byte(publicationPrefix), id...)
}

// makeChunkKey generates a key for a chunk by ID.
// Format: prefix + 8-byte big endian ID
func makeChunkKey(id core.ID) []byte {
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkPubKey generates the prefix shared by all index entries of
// a publication.
// Format: prefix + publicationID + 0x00
func makePartialChunkPubKey(publicationID string) []byte {
	buf := make([]byte, 0, len(chunkPubPrefix)+len(publicationID)+1)
	buf = append(buf, chunkPubPrefix...)
	buf = append(buf, publicationID...)
	return append(buf, 0)
}

// makeChunkPubKey generates a composite key for the publication index.
// Format: prefix + publicationID + 0x00 + 4-byte big endian chunk index
// Big endian keeps entries in chunk order under lexicographic iteration.
func makeChunkPubKey(publicationID string, index int) []byte {
	buf := makePartialChunkPubKey(publicationID)
	return binary.BigEndian.AppendUint32(buf, uint32(index))
}

package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/medlit/medlit/core"
)

// Key prefixes for different data types
const (
	articlePrefix      = "artrec"
	articleQueryPrefix = "artq"
	searchEventPrefix  = "hisrec"
	searchEventIDSeq   = "hisrecseq"
)

// makeArticleKey generates a key for an archived article by PMID.
func makeArticleKey(pmid string) []byte {
	return []byte(fmt.Sprintf("%s:%s", articlePrefix, pmid))
}

// makeArticleQueryKey generates a composite key for the query index.
// Format: prefix:queryID:pmid
func makeArticleQueryKey(queryID core.ID, pmid string) []byte {
	prefix := articleQueryPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(pmid) // 8 bytes for queryID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(queryID))
	offset += 8
	copy(buf[offset:], pmid)
	return buf
}

// makePartialArticleQueryKey generates a partial key for query index scans.
// Format: prefix:queryID
func makePartialArticleQueryKey(queryID core.ID) []byte {
	prefix := articleQueryPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for queryID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(queryID))
	return buf
}

// makeSearchEventKey generates a key for a search event by ID.
func makeSearchEventKey(id core.ID) []byte {
	prefix := searchEventPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

package vgraph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Checksum returns a SHA-256 hex digest of the graph's canonical form: the
// sorted node identifiers with their lengths followed by the sorted,
// deduplicated edge list. Two adapters describing the same graph produce the
// same checksum regardless of insertion order.
func Checksum(a Adapter) string {
	h := sha256.New()
	var buf [8]byte
	put := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	nodes := a.Nodes()
	put(int64(len(nodes)))
	for _, id := range nodes {
		put(int64(id))
		put(a.Length(id))
	}

	edges := CollectEdges(a)
	put(int64(len(edges)))
	for _, e := range edges {
		put(int64(e[0].Node))
		put(int64(e[0].End))
		put(int64(e[1].Node))
		put(int64(e[1].End))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package domain

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a content hash of the snapshot. Two topologies with the same
// nodes, links, positions and routes in the same order share a digest.
func Digest(t *Topology) string {
	h, _ := blake2b.New256(nil)
	if t == nil {
		return hex.EncodeToString(h.Sum(nil))[:16]
	}

	writeString(h, t.Key)
	writeString(h, t.Name)
	writeString(h, t.Description)
	for _, n := range t.Nodes {
		writeString(h, n.ID)
		writeFloat(h, n.Position.X)
		writeFloat(h, n.Position.Y)
		for _, nb := range n.Neighbors {
			writeString(h, nb)
		}
		for _, dest := range n.Routes.Destinations() {
			hop, dist := n.Routes[dest].Encode()
			writeString(h, dest)
			writeString(h, hop)
			writeFloat(h, dist)
		}
	}
	for _, l := range t.Links {
		writeString(h, l.Source)
		writeString(h, l.Target)
		writeFloat(h, l.Weight)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func writeString(h hash.Hash, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func writeFloat(h hash.Hash, f float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	h.Write(b[:])
}

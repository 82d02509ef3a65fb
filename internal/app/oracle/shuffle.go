// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package oracle

import (
	"crypto/sha256"
	"encoding/binary"
)

// Shuffle permutes candidates with a Fisher–Yates walk driven by a
// single random seed: for i from n down to 2, position i-1 is swapped
// with position hash(seed, i) mod i. The same seed always yields the
// same order, which is what makes the draw verifiable after the fact.
func Shuffle(candidates []string, seed []byte) []string {
	out := make([]string, len(candidates))
	copy(out, candidates)
	for i := len(out); i >= 2; i-- {
		j := drawIndex(seed, uint64(i)) % uint64(i)
		out[i-1], out[j] = out[j], out[i-1]
	}
	return out
}

func drawIndex(seed []byte, i uint64) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], i)
	h := sha256.New()
	h.Write(seed)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

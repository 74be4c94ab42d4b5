// Package fingerprint derives word counts, exact content hashes and 64-bit
// SimHash values from normalized page text.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint is the identity of one normalized text block.
type Fingerprint struct {
	WordCount      int    `json:"word_count"`
	ExactHash      string `json:"exact_hash"`
	SimilarityHash uint64 `json:"similarity_hash,string"`
}

// Bands returns the LSH lookup keys for the similarity hash.
func (f Fingerprint) Bands() Bands {
	return BandsOf(f.SimilarityHash)
}

// Compute fingerprints an already normalized string.
func Compute(normalized string) Fingerprint {
	tokens := strings.Fields(normalized)
	return Fingerprint{
		WordCount:      len(tokens),
		ExactHash:      ExactHash(normalized),
		SimilarityHash: simhash64(tokens),
	}
}

func WordCount(normalized string) int {
	return len(strings.Fields(normalized))
}

// ExactHash is the lowercase hex SHA-256 of the text.
func ExactHash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SimHash computes the 64-bit SimHash over whitespace-delimited tokens.
// Empty input yields 0.
func SimHash(normalized string) uint64 {
	return simhash64(strings.Fields(normalized))
}

// Distance is the Hamming distance between two similarity hashes.
func Distance(left, right uint64) int {
	return bits.OnesCount64(left ^ right)
}

// FormatHash renders a similarity hash as 16 lowercase hex digits.
func FormatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

func simhash64(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var bitWeights [64]int
	for _, token := range tokens {
		h := hashToken64(token)
		for bit := 0; bit < 64; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				bitWeights[bit]++
			} else {
				bitWeights[bit]--
			}
		}
	}

	var result uint64
	for bit := 0; bit < 64; bit++ {
		if bitWeights[bit] > 0 {
			result |= uint64(1) << bit
		}
	}
	return result
}

func hashToken64(token string) uint64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(token))
	return hasher.Sum64()
}

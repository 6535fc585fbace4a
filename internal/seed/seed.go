// Package seed derives independent PRNG keys from a master seed with
// SHAKE-256, so that parallel trials stay reproducible.
package seed

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// KeyLen is the length of derived keys in bytes.
const KeyLen = 32

// Derive returns SHAKE-256(label || len(master) || master || parts...) truncated to KeyLen.
func Derive(master []byte, label string, parts ...uint64) []byte {
	h := sha3.NewShake256()
	var word [8]byte
	if _, err := h.Write([]byte(label)); err != nil {
		panic(fmt.Errorf("seed: write label: %w", err))
	}
	binary.LittleEndian.PutUint64(word[:], uint64(len(master)))
	_, _ = h.Write(word[:])
	_, _ = h.Write(master)
	for _, p := range parts {
		binary.LittleEndian.PutUint64(word[:], p)
		_, _ = h.Write(word[:])
	}
	out := make([]byte, KeyLen)
	if _, err := h.Read(out); err != nil {
		panic(fmt.Errorf("seed: read output: %w", err))
	}
	return out
}

// Parse turns a user supplied seed into bytes. A "hex:" prefix decodes the
// rest as hex; anything else is taken literally.
func Parse(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "hex:"); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("decode hex seed: %w", err)
		}
		return b, nil
	}
	return []byte(s), nil
}

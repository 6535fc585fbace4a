package attack

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Vector is an exponent vector: a secret or an ephemeral draw.
type Vector []int64

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Sampler draws vectors with entries uniform in a symmetric interval. The
// byte source is injected so that a keyed PRNG, a system PRNG or a fast
// non-cryptographic generator can be swapped in without touching callers.
//
// A Sampler is not safe for concurrent use.
type Sampler struct {
	src io.Reader
	buf [8]byte
}

// NewSampler wraps src.
func NewSampler(src io.Reader) *Sampler {
	return &Sampler{src: src}
}

// Sample returns a length-n vector with entries drawn independently and
// uniformly from [-bound, bound].
func (s *Sampler) Sample(n int, bound int64) (Vector, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: dimension must be > 0, got %d", ErrInvalidInput, n)
	}
	out := make(Vector, n)
	if err := s.fill(out, bound); err != nil {
		return nil, err
	}
	return out, nil
}

// fill overwrites dst with fresh uniform entries in [-bound, bound].
func (s *Sampler) fill(dst Vector, bound int64) error {
	if s == nil || s.src == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidInput)
	}
	if len(dst) == 0 {
		return fmt.Errorf("%w: dimension must be > 0", ErrInvalidInput)
	}
	if bound < 0 || bound > (1<<61) {
		return fmt.Errorf("%w: bound %d out of range", ErrInvalidInput, bound)
	}

	rangeSize := uint64(2*bound + 1)
	// Largest multiple of rangeSize that fits; words above it are redrawn.
	threshold := (^uint64(0) / rangeSize) * rangeSize

	for i := range dst {
		var word uint64
		for {
			if _, err := io.ReadFull(s.src, s.buf[:]); err != nil {
				return fmt.Errorf("source read: %w", err)
			}
			word = binary.LittleEndian.Uint64(s.buf[:])
			if word < threshold {
				break
			}
		}
		dst[i] = int64(word%rangeSize) - bound
	}
	return nil
}

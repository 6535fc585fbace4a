package attack

import (
	"math/rand"

	"github.com/tuneinsight/lattigo/v4/utils"
)

// NewKeyedSource returns a deterministic byte source keyed by key. Two
// sources built from the same key produce the same stream.
func NewKeyedSource(key []byte) (*utils.KeyedPRNG, error) {
	return utils.NewKeyedPRNG(key)
}

// NewSystemSource returns a PRNG keyed from the operating system's entropy.
func NewSystemSource() (*utils.KeyedPRNG, error) {
	return utils.NewPRNG()
}

// MathRandSource adapts math/rand to io.Reader.
//
// It is NOT cryptographically secure. It is only meant for fast simulations
// and tests where reproducibility matters more than unpredictability.
type MathRandSource struct {
	r *rand.Rand
}

// NewMathRandSource creates a math/rand backed source with the given seed.
func NewMathRandSource(seed int64) *MathRandSource {
	return &MathRandSource{r: rand.New(rand.NewSource(seed))}
}

// Read fills p with pseudo-random bytes. It never fails.
func (m *MathRandSource) Read(p []byte) (int, error) {
	return m.r.Read(p)
}

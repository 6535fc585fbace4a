package attack

import (
	"fmt"
	"math"
	"strings"
)

// Params fixes the shape of the attacked scheme: dimension N, secret bound B,
// bias delta and the number T of repetitions per signature.
type Params struct {
	Name  string `json:"name,omitempty"`
	N     int    `json:"n"`
	B     int64  `json:"b"`
	Delta int64  `json:"delta"`
	T     int    `json:"t"`
}

// NewParams validates and returns a parameter set.
func NewParams(name string, n int, b, delta int64, t int) (Params, error) {
	p := Params{Name: name, N: n, B: b, Delta: delta, T: t}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks that every parameter is positive and that the sampling
// window fits comfortably in an int64.
func (p Params) Validate() error {
	if p.N <= 0 {
		return fmt.Errorf("%w: dimension must be > 0, got %d", ErrInvalidInput, p.N)
	}
	if p.B <= 0 {
		return fmt.Errorf("%w: secret bound must be > 0, got %d", ErrInvalidInput, p.B)
	}
	if p.Delta <= 0 {
		return fmt.Errorf("%w: delta must be > 0, got %d", ErrInvalidInput, p.Delta)
	}
	if p.T <= 0 {
		return fmt.Errorf("%w: repetitions must be > 0, got %d", ErrInvalidInput, p.T)
	}
	// 2*(δ+1)*B+1 must not overflow.
	if p.Delta+1 > (math.MaxInt64/4)/p.B {
		return fmt.Errorf("%w: (delta+1)*B overflows (delta=%d, B=%d)", ErrInvalidInput, p.Delta, p.B)
	}
	return nil
}

// SampleBound is the half-width (δ+1)B of the raw ephemeral draw.
func (p Params) SampleBound() int64 { return (p.Delta + 1) * p.B }

// AcceptBound is the half-width δB of the acceptance window around the secret.
func (p Params) AcceptBound() int64 { return p.Delta * p.B }

// OptimalSigs estimates the number of signatures after which most
// coordinates are saturated on both sides: floor(4δB/t).
func (p Params) OptimalSigs() int {
	return int(4 * p.Delta * p.B / int64(p.T))
}

// BatchSize returns floor(knownSigs * t * fraction), the number of biased
// ephemeral vectors leaked by knownSigs signatures when only the given
// fraction of repetitions carries the bias.
func (p Params) BatchSize(knownSigs int, fraction float64) int {
	if knownSigs <= 0 || fraction <= 0 {
		return 0
	}
	return int(math.Floor(float64(knownSigs) * float64(p.T) * fraction))
}

// KeyspaceBits is log2 of the full secret space, n*log2(2B+1).
func (p Params) KeyspaceBits() float64 {
	return float64(p.N) * math.Log2(float64(2*p.B+1))
}

// CheckSecret verifies that s has length N and entries in [-B,B].
func (p Params) CheckSecret(s Vector) error {
	if len(s) != p.N {
		return fmt.Errorf("%w: secret length %d, want %d", ErrInvalidInput, len(s), p.N)
	}
	for i, v := range s {
		if v < -p.B || v > p.B {
			return fmt.Errorf("%w: secret[%d]=%d outside [-%d,%d]", ErrInvalidInput, i, v, p.B, p.B)
		}
	}
	return nil
}

func (p Params) String() string {
	name := p.Name
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("%s(n=%d, B=%d, delta=%d, t=%d)", name, p.N, p.B, p.Delta, p.T)
}

// ParameterSetI returns the published set with δ=9472 and t=128.
func ParameterSetI() Params {
	return Params{Name: "I", N: 74, B: 5, Delta: 9472, T: 128}
}

// ParameterSetII returns the published set with δ=114 and t=337.
func ParameterSetII() Params {
	return Params{Name: "II", N: 74, B: 5, Delta: 114, T: 337}
}

// PresetByName resolves "I"/"II" (also "1"/"2", "set-i"/"set-ii").
func PresetByName(name string) (Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "i", "1", "set-i", "seti":
		return ParameterSetI(), nil
	case "ii", "2", "set-ii", "setii":
		return ParameterSetII(), nil
	}
	return Params{}, fmt.Errorf("%w: unknown parameter set %q", ErrInvalidInput, name)
}

// fixedSecret is a reference secret for n=74, B=5.
var fixedSecret = [74]int64{
	3, -2, 5, 0, -4, 1, -1, 2, -5, 4,
	0, -3, 2, 5, -1, -2, 3, 0, 4, -5,
	1, -4, 2, -3, 5, 0, -1, 3, -2, 4,
	-5, 1, 0, 2, -4, 3, 5, -3, -1, 0,
	4, -2, 1, -5, 2, 3, -4, 0, 5, -1,
	2, -3, 4, 1, -2, 0, -5, 3, 1, -4,
	5, 2, -1, 0, 3, -3, 4, -2, 1, -5,
	0, 2, -4, 3,
}

// FixedSecret returns a copy of the reference length-74 secret, usable with
// both published parameter sets for deterministic runs.
func FixedSecret() Vector {
	out := make(Vector, len(fixedSecret))
	copy(out, fixedSecret[:])
	return out
}

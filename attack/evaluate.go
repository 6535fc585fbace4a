package attack

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// Evaluation compares a guess with the true secret.
type Evaluation struct {
	Matched bool
	// Known is the number of Determined coordinates, -1 when not matched.
	Known int
	// Keyspace is the product of candidate-set sizes over the Ambiguous
	// coordinates, -1 when not matched.
	Keyspace *big.Int
}

func inconsistent() Evaluation {
	return Evaluation{Matched: false, Known: -1, Keyspace: big.NewInt(-1)}
}

// Evaluate checks guess against secret. The first coordinate whose candidate
// set misses the secret ends the evaluation with ErrInconsistentGuess.
func Evaluate(guess Guess, secret Vector) (Evaluation, error) {
	if len(guess) != len(secret) {
		return inconsistent(), fmt.Errorf("%w: guess length %d, secret length %d", ErrInvalidInput, len(guess), len(secret))
	}
	keyspace := big.NewInt(1)
	known := 0
	factor := new(big.Int)
	for i, c := range guess {
		if !c.Contains(secret[i]) {
			return inconsistent(), fmt.Errorf("%w: coordinate %d guessed %s, secret is %d", ErrInconsistentGuess, i, c, secret[i])
		}
		if c.Kind == Determined {
			known++
			continue
		}
		keyspace.Mul(keyspace, factor.SetInt64(c.Size()))
	}
	return Evaluation{Matched: true, Known: known, Keyspace: keyspace}, nil
}

// EntropyBits is log2 of the residual keyspace, NaN when not matched.
func (e Evaluation) EntropyBits() float64 {
	if !e.Matched || e.Keyspace == nil {
		return math.NaN()
	}
	return log2Int(e.Keyspace)
}

const logPrec = 128

var ln2 = bigfloat.Log(new(big.Float).SetPrec(logPrec).SetInt64(2))

// log2Int returns log2(x) for x >= 1.
func log2Int(x *big.Int) float64 {
	switch x.Sign() {
	case -1, 0:
		return math.NaN()
	}
	if x.IsInt64() && x.Int64() == 1 {
		return 0
	}
	f := new(big.Float).SetPrec(logPrec).SetInt(x)
	bits, _ := new(big.Float).Quo(bigfloat.Log(f), ln2).Float64()
	return bits
}

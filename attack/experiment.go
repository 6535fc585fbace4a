package attack

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"seasign-bias/prof"
)

// DefaultBiasedFraction is the share of repetitions per signature that use
// the zero challenge and therefore publish a biased ephemeral vector.
const DefaultBiasedFraction = 0.5

// Experiment wires sampler, generator, recoverer and evaluator into one
// end-to-end attack run.
type Experiment struct {
	Params Params
	// Source feeds the sampler. Nil means a freshly keyed system PRNG.
	Source io.Reader
	// MaxAttempts caps the rejection loop per ephemeral vector (0 = no cap).
	MaxAttempts int
	// BiasedFraction overrides DefaultBiasedFraction when > 0.
	BiasedFraction float64
	// KeepBatch stores the generated samples in the Result.
	KeepBatch bool
	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger
}

// Result is the outcome of one Run.
type Result struct {
	Params     Params
	KnownSigs  int
	Secret     Vector
	Guess      Guess
	Evaluation Evaluation
	BatchSize  int
	// Attempts counts every raw draw, accepted or rejected.
	Attempts int
	Batch    []Vector
	// ResidualBits is log2 of the remaining keyspace.
	ResidualBits float64
	// RecoveredBits is the secret entropy removed by the attack.
	RecoveredBits float64
	Timings       []prof.Entry
}

// DefaultKnownSigs is the tunable default signature count, OptimalSigs
// clamped to at least one.
func DefaultKnownSigs(p Params) int {
	return max(1, p.OptimalSigs())
}

func (x *Experiment) fraction() float64 {
	if x.BiasedFraction > 0 {
		return x.BiasedFraction
	}
	return DefaultBiasedFraction
}

func (x *Experiment) logger() *slog.Logger {
	if x.Logger != nil {
		return x.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run attacks secret using the biased samples leaked by knownSigs
// signatures. A nil secret is replaced by a fresh uniform one. When the
// evaluation fails the Result is still returned together with an error
// wrapping ErrInconsistentGuess.
func (x *Experiment) Run(knownSigs int, secret Vector) (*Result, error) {
	p := x.Params
	if err := p.Validate(); err != nil {
		return nil, err
	}
	frac := x.fraction()
	if frac > 1 {
		return nil, fmt.Errorf("%w: biased fraction %g > 1", ErrInvalidInput, frac)
	}
	batchSize := p.BatchSize(knownSigs, frac)
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d signatures leak no biased samples", ErrInvalidInput, knownSigs)
	}

	src := x.Source
	if src == nil {
		sys, err := NewSystemSource()
		if err != nil {
			return nil, fmt.Errorf("system source: %w", err)
		}
		src = sys
	}
	sampler := NewSampler(src)
	log := x.logger().With("params", p.String(), "known_sigs", knownSigs)

	var rec prof.Recorder
	start := time.Now()
	if secret == nil {
		s, err := sampler.Sample(p.N, p.B)
		if err != nil {
			return nil, fmt.Errorf("sample secret: %w", err)
		}
		secret = s
	} else {
		if err := p.CheckSecret(secret); err != nil {
			return nil, err
		}
		secret = secret.Clone()
	}
	rec.Track(start, prof.PhaseSecret)

	res := &Result{Params: p, KnownSigs: knownSigs, Secret: secret, BatchSize: batchSize}

	gen := NewGenerator(sampler, p)
	gen.MaxAttempts = x.MaxAttempts
	recoverer := NewRecoverer(p)
	if x.KeepBatch {
		res.Batch = make([]Vector, 0, batchSize)
	}

	log.Debug("sampling biased ephemerals", "batch", batchSize)
	start = time.Now()
	for j := 0; j < batchSize; j++ {
		e := make(Vector, p.N)
		attempts, err := gen.sampleInto(secret, e)
		res.Attempts += attempts
		if err != nil {
			res.Timings = rec.Snapshot()
			return res, fmt.Errorf("sample %d/%d: %w", j+1, batchSize, err)
		}
		if err := recoverer.Observe(e); err != nil {
			return res, err
		}
		if x.KeepBatch {
			res.Batch = append(res.Batch, e)
		}
	}
	rec.Track(start, prof.PhaseSampling)

	start = time.Now()
	guess, err := recoverer.Guess()
	if err != nil {
		return res, err
	}
	res.Guess = guess
	rec.Track(start, prof.PhaseRecovery)

	start = time.Now()
	ev, evalErr := Evaluate(guess, secret)
	rec.Track(start, prof.PhaseEval)
	res.Evaluation = ev
	res.Timings = rec.Snapshot()

	if evalErr != nil {
		res.ResidualBits = ev.EntropyBits()
		if errors.Is(evalErr, ErrInconsistentGuess) {
			log.Warn("recovered guess excludes the secret", "err", evalErr)
		}
		return res, evalErr
	}
	res.ResidualBits = ev.EntropyBits()
	res.RecoveredBits = p.KeyspaceBits() - res.ResidualBits
	log.Info("attack finished",
		"batch", batchSize,
		"attempts", res.Attempts,
		"known", ev.Known,
		"residual_bits", res.ResidualBits,
	)
	return res, nil
}

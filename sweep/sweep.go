// Package sweep repeats the attack over a range of leaked-signature counts
// and aggregates the residual entropy per point.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"

	"seasign-bias/attack"
	"seasign-bias/internal/seed"
)

// Config describes one sweep.
type Config struct {
	Params attack.Params
	// From, To and Step bound the known-signature counts (inclusive).
	From, To, Step int
	Trials         int
	// Workers running trials in parallel; 0 means GOMAXPROCS.
	Workers int
	// Seed is the master key every trial key is derived from.
	Seed []byte
	// Secret, when set, is attacked in every trial. Otherwise each trial
	// draws its own secret.
	Secret         attack.Vector
	MaxAttempts    int
	BiasedFraction float64
	Logger         *slog.Logger
}

// Row aggregates the trials of one sweep point.
type Row struct {
	KnownSigs      int
	BatchSize      int
	Trials         int
	MeanBits       float64
	StdDevBits     float64
	MedianBits     float64
	MinBits        float64
	MaxBits        float64
	MeanKnown      float64
	FullRecoveries int
	Inconsistent   int
}

// Sink consumes rows as they are produced.
type Sink interface {
	WriteRow(Row) error
	Flush() error
}

// Validate checks the sweep bounds and parameters.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.From <= 0 || c.Step <= 0 || c.To < c.From {
		return fmt.Errorf("%w: sweep range from=%d to=%d step=%d", attack.ErrInvalidInput, c.From, c.To, c.Step)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be > 0", attack.ErrInvalidInput)
	}
	if c.Secret != nil {
		if err := c.Params.CheckSecret(c.Secret); err != nil {
			return err
		}
	}
	return nil
}

// Points lists the known-signature counts visited by the sweep.
func (c Config) Points() []int {
	var out []int
	for k := c.From; k <= c.To; k += c.Step {
		out = append(out, k)
	}
	return out
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run executes the sweep, handing each row to sink (which may be nil) and
// returning all rows. It stops early when ctx is cancelled.
func Run(ctx context.Context, cfg Config, sink Sink) ([]Row, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()
	var rows []Row
	for _, k := range cfg.Points() {
		row, err := RunPoint(ctx, cfg, k)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
		log.Info("sweep point",
			"known_sigs", row.KnownSigs,
			"mean_bits", row.MeanBits,
			"full", row.FullRecoveries,
			"inconsistent", row.Inconsistent,
		)
		if sink != nil {
			if err := sink.WriteRow(row); err != nil {
				return rows, fmt.Errorf("write row: %w", err)
			}
		}
	}
	if sink != nil {
		if err := sink.Flush(); err != nil {
			return rows, fmt.Errorf("flush: %w", err)
		}
	}
	return rows, nil
}

type trial struct {
	bits  float64
	known int
	bad   bool
	err   error
}

// RunPoint runs cfg.Trials experiments at knownSigs and aggregates them.
// Trial i is keyed by Derive(Seed, "trial", knownSigs, i), so the result
// does not depend on how trials are scheduled.
func RunPoint(ctx context.Context, cfg Config, knownSigs int) (Row, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Trials)

	results := make([]trial, cfg.Trials)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runTrial(cfg, knownSigs, i)
			}
		}()
	}

	var ctxErr error
feed:
	for i := 0; i < cfg.Trials; i++ {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if ctxErr != nil {
		return Row{}, ctxErr
	}

	row := Row{
		KnownSigs: knownSigs,
		BatchSize: cfg.Params.BatchSize(knownSigs, fraction(cfg.BiasedFraction)),
		Trials:    cfg.Trials,
	}
	var bits, known []float64
	for i, r := range results {
		switch {
		case r.err != nil:
			return Row{}, fmt.Errorf("known_sigs=%d trial=%d: %w", knownSigs, i, r.err)
		case r.bad:
			row.Inconsistent++
			continue
		}
		bits = append(bits, r.bits)
		known = append(known, float64(r.known))
		if r.bits == 0 {
			row.FullRecoveries++
		}
	}
	fillStats(&row, bits, known)
	return row, nil
}

func runTrial(cfg Config, knownSigs, i int) trial {
	src, err := attack.NewKeyedSource(seed.Derive(cfg.Seed, "trial", uint64(knownSigs), uint64(i)))
	if err != nil {
		return trial{err: err}
	}
	x := &attack.Experiment{
		Params:         cfg.Params,
		Source:         src,
		MaxAttempts:    cfg.MaxAttempts,
		BiasedFraction: cfg.BiasedFraction,
	}
	res, err := x.Run(knownSigs, cfg.Secret)
	if errors.Is(err, attack.ErrInconsistentGuess) {
		return trial{bad: true}
	}
	if err != nil {
		return trial{err: err}
	}
	return trial{bits: res.ResidualBits, known: res.Evaluation.Known}
}

func fraction(f float64) float64 {
	if f > 0 {
		return f
	}
	return attack.DefaultBiasedFraction
}

func fillStats(row *Row, bits, known []float64) {
	if len(bits) == 0 {
		nan := math.NaN()
		row.MeanBits, row.StdDevBits, row.MedianBits, row.MinBits, row.MaxBits, row.MeanKnown = nan, nan, nan, nan, nan, nan
		return
	}
	row.MeanBits, _ = stats.Mean(bits)
	row.StdDevBits, _ = stats.StandardDeviation(bits)
	row.MedianBits, _ = stats.Median(bits)
	row.MinBits, _ = stats.Min(bits)
	row.MaxBits, _ = stats.Max(bits)
	row.MeanKnown, _ = stats.Mean(known)
}

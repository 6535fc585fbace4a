package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"seasign-bias/attack"
	"seasign-bias/config"
	"seasign-bias/internal/seed"
	"seasign-bias/keys"
	"seasign-bias/sweep"
)

const progressBarWidth = 40

type progressSink struct {
	total int
	done  int
	start time.Time
}

func (p *progressSink) WriteRow(r sweep.Row) error {
	p.done++
	frac := float64(p.done) / float64(p.total)
	filled := int(frac * progressBarWidth)
	elapsed := time.Since(p.start)
	eta := time.Duration(float64(elapsed) / frac * (1 - frac))
	fmt.Fprintf(os.Stderr, "\r[%s%s] %3d/%d sigs=%d mean=%.2f bits eta=%v   ",
		strings.Repeat("#", filled), strings.Repeat(".", progressBarWidth-filled),
		p.done, p.total, r.KnownSigs, r.MeanBits, eta.Round(time.Second))
	return nil
}

func (p *progressSink) Flush() error {
	fmt.Fprintln(os.Stderr)
	return nil
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	return os.Create(path)
}

func main() {
	cfgPath := flag.String("config", "", "experiment config (.toml, .json or .yaml)")
	preset := flag.String("preset", "", "parameter set: I or II (overrides config)")
	from := flag.Int("from", 0, "first known-signature count (0 = config)")
	to := flag.Int("to", 0, "last known-signature count (0 = config, or 4*optimal)")
	step := flag.Int("step", 0, "step between counts (0 = config)")
	trials := flag.Int("trials", 0, "trials per point (0 = config)")
	workers := flag.Int("workers", 0, "parallel trials (0 = config, then GOMAXPROCS)")
	seedStr := flag.String("seed", "", "master seed; \"hex:...\" for hex bytes")
	fixed := flag.Bool("fixed", false, "attack the built-in fixed secret in every trial")
	secretPath := flag.String("secret", "", "attack the secret stored in this JSON file in every trial")
	csvPath := flag.String("csv", "", "CSV output path (default from config)")
	jsonlPath := flag.String("jsonl", "", "JSONL output path (default from config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = c
	}
	if *preset != "" {
		cfg.Preset = *preset
	}
	for _, o := range []struct {
		flag int
		dst  *int
	}{{*from, &cfg.Sweep.From}, {*to, &cfg.Sweep.To}, {*step, &cfg.Sweep.Step}, {*trials, &cfg.Sweep.Trials}, {*workers, &cfg.Sweep.Workers}} {
		if o.flag > 0 {
			*o.dst = o.flag
		}
	}
	if *seedStr != "" {
		cfg.Seed = *seedStr
	}
	if *fixed {
		cfg.FixedKey = true
	}
	if *secretPath != "" {
		cfg.SecretFile = *secretPath
	}
	if *csvPath != "" {
		cfg.Output.CSV = *csvPath
	}
	if *jsonlPath != "" {
		cfg.Output.JSONL = *jsonlPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("params: %v", err)
	}

	master := []byte(fmt.Sprintf("entropy-sweep-%d", time.Now().UnixNano()))
	if cfg.Seed != "" {
		if master, err = seed.Parse(cfg.Seed); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	lo, hi, st := cfg.SweepRange(params)
	sc := sweep.Config{
		Params:         params,
		From:           lo,
		To:             hi,
		Step:           st,
		Trials:         cfg.Sweep.Trials,
		Workers:        cfg.Sweep.Workers,
		Seed:           master,
		MaxAttempts:    cfg.MaxAttempts,
		BiasedFraction: cfg.BiasedFraction,
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
	switch {
	case cfg.FixedKey:
		sc.Secret = attack.FixedSecret()
	case cfg.SecretFile != "":
		sf, err := keys.LoadSecret(cfg.SecretFile)
		if err != nil {
			log.Fatalf("load secret: %v", err)
		}
		sc.Secret = sf.Secret
	}

	var sinks sweep.MultiSink
	if cfg.Output.CSV != "" {
		f, err := create(cfg.Output.CSV)
		if err != nil {
			log.Fatalf("open csv output: %v", err)
		}
		defer f.Close()
		sinks = append(sinks, sweep.NewCSVWriter(f))
	}
	if cfg.Output.JSONL != "" {
		f, err := create(cfg.Output.JSONL)
		if err != nil {
			log.Fatalf("open jsonl output: %v", err)
		}
		defer f.Close()
		sinks = append(sinks, sweep.NewJSONLWriter(f, params.Name))
	}
	sinks = append(sinks, &progressSink{total: len(sc.Points()), start: time.Now()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Sweeping %s: sigs %d..%d step %d, %d trials each (optimal %d)\n",
		params, lo, hi, st, sc.Trials, params.OptimalSigs())
	rows, err := sweep.Run(ctx, sc, sinks)
	if err != nil {
		// Flush what we have before reporting.
		_ = sinks.Flush()
		log.Fatalf("sweep: %v (after %d points)", err, len(rows))
	}
	fmt.Println("known_sigs  mean_bits  median  stddev  full  inconsistent")
	for _, r := range rows {
		fmt.Printf("%10d  %9.3f  %6.2f  %6.2f  %4d  %12d\n",
			r.KnownSigs, r.MeanBits, r.MedianBits, r.StdDevBits, r.FullRecoveries, r.Inconsistent)
	}
	if cfg.Output.CSV != "" {
		fmt.Println("CSV:", cfg.Output.CSV)
	}
	if cfg.Output.JSONL != "" {
		fmt.Println("JSONL:", cfg.Output.JSONL)
	}
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"seasign-bias/attack"
	"seasign-bias/config"
	"seasign-bias/internal/seed"
	"seasign-bias/keys"
	"seasign-bias/prof"
)

func main() {
	cfgPath := flag.String("config", "", "experiment config (.toml, .json or .yaml)")
	preset := flag.String("preset", "", "parameter set: I or II (overrides config)")
	sigs := flag.Int("sigs", 0, "known signatures (0 = config value or optimal count)")
	seedStr := flag.String("seed", "", "PRNG seed; \"hex:...\" for hex bytes, empty for system randomness")
	fixed := flag.Bool("fixed", false, "attack the built-in fixed secret")
	secretPath := flag.String("secret", "", "load the secret from a JSON file")
	saveSecret := flag.String("save-secret", "", "write the attacked secret to this JSON file")
	saveBatch := flag.String("save-batch", "", "write the leaked samples to this JSON file")
	maxAttempts := flag.Int("max-attempts", -1, "rejection-loop cap per sample (0 = none, -1 = config value)")
	fraction := flag.Float64("fraction", 0, "biased share of repetitions (0 = config value)")
	verbose := flag.Bool("v", false, "debug logging")
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
	if *sigs > 0 {
		cfg.KnownSigs = *sigs
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
	if *maxAttempts >= 0 {
		cfg.MaxAttempts = *maxAttempts
	}
	if *fraction > 0 {
		cfg.BiasedFraction = *fraction
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("params: %v", err)
	}

	var secret attack.Vector
	switch {
	case cfg.FixedKey:
		secret = attack.FixedSecret()
	case cfg.SecretFile != "":
		sf, err := keys.LoadSecret(cfg.SecretFile)
		if err != nil {
			log.Fatalf("load secret: %v", err)
		}
		if sf.Params.N != params.N || sf.Params.B != params.B {
			log.Fatalf("secret file is for %s, attacking %s", sf.Params, params)
		}
		secret = sf.Secret
	}

	var src io.Reader
	if cfg.Seed != "" {
		master, err := seed.Parse(cfg.Seed)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		prng, err := attack.NewKeyedSource(seed.Derive(master, "attack"))
		if err != nil {
			log.Fatalf("prng: %v", err)
		}
		src = prng
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	x := &attack.Experiment{
		Params:         params,
		Source:         src,
		MaxAttempts:    cfg.MaxAttempts,
		BiasedFraction: cfg.BiasedFraction,
		KeepBatch:      *saveBatch != "",
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
	knownSigs := cfg.SignatureCount(params)

	start := time.Now()
	res, err := x.Run(knownSigs, secret)
	if err != nil && !errors.Is(err, attack.ErrInconsistentGuess) {
		log.Fatalf("attack: %v", err)
	}

	if *saveSecret != "" {
		if err := keys.SaveSecret(*saveSecret, params, res.Secret); err != nil {
			log.Fatalf("save secret: %v", err)
		}
	}
	if *saveBatch != "" {
		bf := &keys.BatchFile{Params: params, KnownSigs: knownSigs, Secret: res.Secret, Samples: res.Batch}
		if err := keys.SaveBatch(*saveBatch, bf); err != nil {
			log.Fatalf("save batch: %v", err)
		}
	}

	fmt.Printf("Parameters:        %s\n", params)
	fmt.Printf("Known signatures:  %d (optimal %d)\n", knownSigs, params.OptimalSigs())
	fmt.Printf("Biased samples:    %d (%d draws, %.2f%% accepted)\n",
		res.BatchSize, res.Attempts, 100*float64(res.BatchSize)/float64(max(1, res.Attempts)))
	if err != nil {
		fmt.Printf("Result:            INCONSISTENT (%v)\n", err)
		os.Exit(2)
	}
	fmt.Printf("Known exponents:   %d / %d\n", res.Evaluation.Known, params.N)
	fmt.Printf("Residual keyspace: %s\n", res.Evaluation.Keyspace)
	fmt.Printf("Residual entropy:  %.2f bits (of %.2f)\n", res.ResidualBits, params.KeyspaceBits())
	fmt.Printf("Recovered entropy: %.2f bits\n", res.RecoveredBits)
	fmt.Printf("Guess:             %s\n", res.Guess)
	fmt.Printf("Timings:           sampling=%v recovery=%v evaluation=%v total=%v\n",
		prof.Total(res.Timings, prof.PhaseSampling),
		prof.Total(res.Timings, prof.PhaseRecovery),
		prof.Total(res.Timings, prof.PhaseEval),
		time.Since(start))
}

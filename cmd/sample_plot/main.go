package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"seasign-bias/attack"
	"seasign-bias/internal/seed"
	"seasign-bias/keys"
	"seasign-bias/plot"
)

func parseCoords(spec string, n int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("coordinate %q: %w", part, err)
		}
		if c < 0 || c >= n {
			return nil, fmt.Errorf("coordinate %d outside [0,%d)", c, n)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no coordinates given")
	}
	return out, nil
}

func main() {
	batchPath := flag.String("batch", "", "plot a batch saved by the attack tool instead of sampling")
	preset := flag.String("preset", "II", "parameter set when sampling: I or II")
	sigs := flag.Int("sigs", 0, "known signatures when sampling (0 = optimal)")
	seedStr := flag.String("seed", "sample-plot", "PRNG seed when sampling")
	coordSpec := flag.String("coords", "0,1,2", "comma separated coordinates to plot")
	out := flag.String("out", "results/informative_samples.html", "HTML output path")
	flag.Parse()

	var (
		params attack.Params
		secret attack.Vector
		batch  []attack.Vector
	)
	if *batchPath != "" {
		bf, err := keys.LoadBatch(*batchPath)
		if err != nil {
			log.Fatalf("load batch: %v", err)
		}
		if bf.Secret == nil {
			log.Fatalf("batch %s has no secret to mark", *batchPath)
		}
		params, secret, batch = bf.Params, bf.Secret, bf.Samples
	} else {
		p, err := attack.PresetByName(*preset)
		if err != nil {
			log.Fatalf("params: %v", err)
		}
		master, err := seed.Parse(*seedStr)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		src, err := attack.NewKeyedSource(seed.Derive(master, "sample-plot"))
		if err != nil {
			log.Fatalf("prng: %v", err)
		}
		n := *sigs
		if n <= 0 {
			n = attack.DefaultKnownSigs(p)
		}
		secret = attack.FixedSecret()
		gen := attack.NewGenerator(attack.NewSampler(src), p)
		batch, _, err = gen.SampleBatch(secret, p.BatchSize(n, attack.DefaultBiasedFraction))
		if err != nil {
			log.Fatalf("sample: %v", err)
		}
		params = p
	}

	coords, err := parseCoords(*coordSpec, params.N)
	if err != nil {
		log.Fatalf("coords: %v", err)
	}
	page, err := plot.SampleHistogramPage(batch, secret, params, coords)
	if err != nil {
		log.Fatalf("plot: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create dir: %v", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := plot.RenderPage(f, page); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Printf("Wrote %s | %d samples, coordinates %v\n", *out, len(batch), coords)
}

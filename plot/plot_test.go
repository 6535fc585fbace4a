package plot

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/components"

	"seasign-bias/attack"
	"seasign-bias/sweep"
)

func tinyParams(t *testing.T) attack.Params {
	t.Helper()
	p, err := attack.NewParams("tiny", 2, 5, 2, 4)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestInformativeSamples(t *testing.T) {
	p := tinyParams(t) // δB = 10
	batch := []attack.Vector{{10, 0}, {-10, 0}, {0, 0}, {7, 0}, {-6, 0}}
	imp, err := InformativeSamples(batch, p, 0)
	if err != nil {
		t.Fatalf("InformativeSamples: %v", err)
	}
	// e-δB > -5 for e in {10, 7}; e+δB < 5 for e in {-10, -6}.
	if got := imp.Lower; len(got) != 2 || got[0] != 0 || got[1] != -3 {
		t.Fatalf("Lower = %v", got)
	}
	if got := imp.Upper; len(got) != 2 || got[0] != 0 || got[1] != 4 {
		t.Fatalf("Upper = %v", got)
	}
	if _, err := InformativeSamples(batch, p, 2); !errors.Is(err, attack.ErrInvalidInput) {
		t.Fatalf("coordinate out of range: %v", err)
	}
	if _, err := InformativeSamples([]attack.Vector{{1}}, p, 0); !errors.Is(err, attack.ErrInvalidInput) {
		t.Fatalf("short sample: %v", err)
	}
}

func TestSampleHistogramPageRenders(t *testing.T) {
	p := tinyParams(t)
	sampler := attack.NewSampler(attack.NewMathRandSource(8))
	secret := attack.Vector{2, -4}
	batch, _, err := attack.NewGenerator(sampler, p).SampleBatch(secret, 300)
	if err != nil {
		t.Fatalf("SampleBatch: %v", err)
	}
	page, err := SampleHistogramPage(batch, secret, p, []int{0, 1})
	if err != nil {
		t.Fatalf("SampleHistogramPage: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderPage(&buf, page); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"coordinate 0 (secret 2)", "coordinate 1 (secret -4)", "lower bounds"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
	if _, err := SampleHistogramPage(nil, secret, p, []int{0}); !errors.Is(err, attack.ErrInvalidInput) {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := SampleHistogramPage(batch, attack.Vector{9, 9}, p, []int{0}); !errors.Is(err, attack.ErrInvalidInput) {
		t.Fatalf("invalid secret: %v", err)
	}
}

func TestEntropyChartRenders(t *testing.T) {
	rows := []sweep.Row{
		{KnownSigs: 1, MeanBits: 250, MinBits: 248, MaxBits: 252},
		{KnownSigs: 2, MeanBits: math.NaN(), MinBits: math.NaN(), MaxBits: math.NaN()},
		{KnownSigs: 3, MeanBits: 12.5, MinBits: 10, MaxBits: 15},
	}
	page := components.NewPage()
	page.AddCharts(EntropyChart(rows, "Residual entropy"))
	var buf bytes.Buffer
	if err := RenderPage(&buf, page); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Residual entropy") {
		t.Fatal("title missing from rendered chart")
	}
	if err := RenderPage(&buf, nil); err == nil {
		t.Fatal("nil page accepted")
	}
}

package attack

import (
	"errors"
	"testing"
)

func smallParams(t *testing.T, n int, b, delta int64) Params {
	t.Helper()
	p, err := NewParams("test", n, b, delta, 4)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestSampleBiasedPostcondition(t *testing.T) {
	p := smallParams(t, 8, 5, 2)
	sampler := NewSampler(NewMathRandSource(11))
	secret, err := sampler.Sample(p.N, p.B)
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	gen := NewGenerator(sampler, p)
	batch, attempts, err := gen.SampleBatch(secret, 500)
	if err != nil {
		t.Fatalf("SampleBatch: %v", err)
	}
	if len(batch) != 500 || attempts < 500 {
		t.Fatalf("got %d samples in %d attempts", len(batch), attempts)
	}
	for j, e := range batch {
		for i := range e {
			if abs(e[i]) > p.SampleBound() {
				t.Fatalf("sample %d coord %d = %d outside draw window", j, i, e[i])
			}
			if d := e[i] - secret[i]; abs(d) > p.AcceptBound() {
				t.Fatalf("sample %d coord %d: e-s=%d outside [-%d,%d]", j, i, d, p.AcceptBound(), p.AcceptBound())
			}
		}
		if !gen.Accepts(secret, e) {
			t.Fatalf("sample %d not accepted by predicate", j)
		}
	}
}

func TestAcceptsInclusiveBounds(t *testing.T) {
	p := smallParams(t, 1, 5, 2)
	gen := NewGenerator(NewSampler(NewMathRandSource(1)), p)
	secret := Vector{0}
	cases := []struct {
		e    int64
		want bool
	}{
		{10, true}, {-10, true}, {11, false}, {-11, false}, {0, true},
	}
	for _, c := range cases {
		if got := gen.Accepts(secret, Vector{c.e}); got != c.want {
			t.Fatalf("Accepts(e=%d)=%v want %v", c.e, got, c.want)
		}
	}
	if gen.Accepts(secret, Vector{0, 0}) {
		t.Fatal("length mismatch accepted")
	}
}

func TestSampleBiasedExhaustion(t *testing.T) {
	p := smallParams(t, 1, 5, 2)
	// A zero source always draws -(δ+1)B = -15, which is 20 away from s=5.
	gen := NewGenerator(NewSampler(zeroReader{}), p)
	gen.MaxAttempts = 3
	_, attempts, err := gen.SampleBiased(Vector{5})
	if !errors.Is(err, ErrSamplingExhausted) {
		t.Fatalf("want ErrSamplingExhausted, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts=%d want 3", attempts)
	}
	// The same draw is accepted for s=-5 (difference -10).
	e, attempts, err := gen.SampleBiased(Vector{-5})
	if err != nil || attempts != 1 || e[0] != -15 {
		t.Fatalf("got e=%v attempts=%d err=%v", e, attempts, err)
	}
}

func TestGeneratorInvalidInput(t *testing.T) {
	p := smallParams(t, 2, 5, 2)
	gen := NewGenerator(NewSampler(NewMathRandSource(1)), p)
	if _, _, err := gen.SampleBiased(Vector{6, 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range secret: %v", err)
	}
	if _, _, err := gen.SampleBiased(Vector{0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short secret: %v", err)
	}
	if _, _, err := gen.SampleBatch(Vector{0, 0}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty batch: %v", err)
	}
	if _, _, err := NewGenerator(nil, p).SampleBiased(Vector{0, 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil sampler: %v", err)
	}
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

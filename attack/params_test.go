package attack

import (
	"errors"
	"math"
	"testing"
)

func TestPresets(t *testing.T) {
	cases := []struct {
		p       Params
		optimal int
		batch1  int
	}{
		{ParameterSetI(), 1480, 64},
		{ParameterSetII(), 6, 168},
	}
	for _, c := range cases {
		if err := c.p.Validate(); err != nil {
			t.Fatalf("%s: validate: %v", c.p, err)
		}
		if c.p.N != 74 || c.p.B != 5 {
			t.Fatalf("%s: want n=74 B=5", c.p)
		}
		if got := c.p.OptimalSigs(); got != c.optimal {
			t.Fatalf("%s: OptimalSigs=%d want %d", c.p, got, c.optimal)
		}
		if got := c.p.BatchSize(1, DefaultBiasedFraction); got != c.batch1 {
			t.Fatalf("%s: BatchSize(1)=%d want %d", c.p, got, c.batch1)
		}
		if got, want := c.p.KeyspaceBits(), 74*math.Log2(11); math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s: KeyspaceBits=%f want %f", c.p, got, want)
		}
	}
	if b := ParameterSetI().SampleBound(); b != 9473*5 {
		t.Fatalf("SampleBound=%d", b)
	}
	if b := ParameterSetII().AcceptBound(); b != 570 {
		t.Fatalf("AcceptBound=%d", b)
	}
}

func TestPresetByName(t *testing.T) {
	for _, name := range []string{"I", "1", "set-i"} {
		p, err := PresetByName(name)
		if err != nil || p.Delta != 9472 {
			t.Fatalf("PresetByName(%q) = %v, %v", name, p, err)
		}
	}
	for _, name := range []string{"II", "2", " Set-II "} {
		p, err := PresetByName(name)
		if err != nil || p.Delta != 114 {
			t.Fatalf("PresetByName(%q) = %v, %v", name, p, err)
		}
	}
	if _, err := PresetByName("III"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown preset: got %v", err)
	}
}

func TestNewParamsValidation(t *testing.T) {
	bad := []Params{
		{N: 0, B: 5, Delta: 2, T: 1},
		{N: 1, B: 0, Delta: 2, T: 1},
		{N: 1, B: 5, Delta: 0, T: 1},
		{N: 1, B: 5, Delta: 2, T: 0},
		{N: 1, B: math.MaxInt64 / 2, Delta: 2, T: 1},
	}
	for _, p := range bad {
		if _, err := NewParams("", p.N, p.B, p.Delta, p.T); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("NewParams(%+v): want ErrInvalidInput, got %v", p, err)
		}
	}
	if _, err := NewParams("tiny", 1, 5, 2, 2); err != nil {
		t.Fatalf("NewParams: %v", err)
	}
}

func TestBatchSizeFloors(t *testing.T) {
	p := Params{N: 1, B: 1, Delta: 1, T: 3}
	if got := p.BatchSize(3, 0.5); got != 4 {
		t.Fatalf("BatchSize(3)=%d want floor(4.5)=4", got)
	}
	if got := p.BatchSize(0, 0.5); got != 0 {
		t.Fatalf("BatchSize(0)=%d want 0", got)
	}
}

func TestFixedSecret(t *testing.T) {
	s := FixedSecret()
	for _, p := range []Params{ParameterSetI(), ParameterSetII()} {
		if err := p.CheckSecret(s); err != nil {
			t.Fatalf("%s: fixed secret rejected: %v", p, err)
		}
	}
	s[0] = 99
	if FixedSecret()[0] == 99 {
		t.Fatal("FixedSecret returned shared storage")
	}
	if err := ParameterSetI().CheckSecret(s); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range secret accepted: %v", err)
	}
	if err := ParameterSetI().CheckSecret(s[:10]); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short secret accepted: %v", err)
	}
}

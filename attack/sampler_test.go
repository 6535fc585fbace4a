package attack

import (
	"errors"
	"testing"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type failingReader struct{}

var errBroken = errors.New("broken source")

func (failingReader) Read([]byte) (int, error) { return 0, errBroken }

func TestSampleRangeAndCoverage(t *testing.T) {
	s := NewSampler(NewMathRandSource(7))
	const bound = 5
	v, err := s.Sample(2000, bound)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	seen := make(map[int64]int)
	for i, x := range v {
		if x < -bound || x > bound {
			t.Fatalf("entry %d = %d outside [-%d,%d]", i, x, bound, bound)
		}
		seen[x]++
	}
	if len(seen) != 2*bound+1 {
		t.Fatalf("saw %d distinct values, want %d", len(seen), 2*bound+1)
	}
	// 2000/11 ≈ 182 per value.
	for x, c := range seen {
		if c < 100 || c > 280 {
			t.Fatalf("value %d drawn %d times, far from uniform", x, c)
		}
	}
}

func TestSampleKeyedDeterministic(t *testing.T) {
	draw := func(key string) Vector {
		src, err := NewKeyedSource([]byte(key))
		if err != nil {
			t.Fatalf("NewKeyedSource: %v", err)
		}
		v, err := NewSampler(src).Sample(74, 47365)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		return v
	}
	a, b, c := draw("k1"), draw("k1"), draw("k2")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same key diverged at %d: %d vs %d", i, a[i], b[i])
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different keys produced identical vectors")
	}
}

func TestSampleSystemSource(t *testing.T) {
	src, err := NewSystemSource()
	if err != nil {
		t.Fatalf("NewSystemSource: %v", err)
	}
	v, err := NewSampler(src).Sample(16, 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for _, x := range v {
		if x < -3 || x > 3 {
			t.Fatalf("entry %d out of range", x)
		}
	}
}

func TestSampleZeroBound(t *testing.T) {
	v, err := NewSampler(NewMathRandSource(1)).Sample(8, 0)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for _, x := range v {
		if x != 0 {
			t.Fatalf("bound 0 produced %d", x)
		}
	}
}

func TestSampleErrors(t *testing.T) {
	s := NewSampler(NewMathRandSource(1))
	if _, err := s.Sample(0, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("n=0: %v", err)
	}
	if _, err := s.Sample(4, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative bound: %v", err)
	}
	if _, err := NewSampler(nil).Sample(4, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil source: %v", err)
	}
	if _, err := NewSampler(failingReader{}).Sample(4, 5); !errors.Is(err, errBroken) {
		t.Fatalf("failing source: %v", err)
	}
}

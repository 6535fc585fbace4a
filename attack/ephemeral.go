package attack

import "fmt"

// Generator models the flawed signer: it draws e uniformly from
// [-(δ+1)B,(δ+1)B]^n and retries until every coordinate of e-s lies in
// [-δB, δB]. The retry loop is where the secret leaks.
type Generator struct {
	sampler *Sampler
	params  Params

	// MaxAttempts caps the draws spent on one accepted vector. Zero means
	// no cap.
	MaxAttempts int
}

// NewGenerator binds a sampler to a parameter set.
func NewGenerator(sampler *Sampler, params Params) *Generator {
	return &Generator{sampler: sampler, params: params}
}

// Accepts reports whether e falls in the acceptance window around secret.
// Both bounds are inclusive.
func (g *Generator) Accepts(secret, e Vector) bool {
	return accepts(secret, e, g.params.AcceptBound())
}

func accepts(secret, e Vector, window int64) bool {
	if len(secret) != len(e) {
		return false
	}
	for i := range e {
		d := e[i] - secret[i]
		if d > window || d < -window {
			return false
		}
	}
	return true
}

// SampleBiased returns one accepted ephemeral vector and the number of draws
// it took.
func (g *Generator) SampleBiased(secret Vector) (Vector, int, error) {
	if err := g.check(secret); err != nil {
		return nil, 0, err
	}
	e := make(Vector, g.params.N)
	attempts, err := g.sampleInto(secret, e)
	if err != nil {
		return nil, attempts, err
	}
	return e, attempts, nil
}

// SampleBatch returns count accepted vectors and the total number of draws.
func (g *Generator) SampleBatch(secret Vector, count int) ([]Vector, int, error) {
	if count <= 0 {
		return nil, 0, fmt.Errorf("%w: batch size must be > 0, got %d", ErrInvalidInput, count)
	}
	if err := g.check(secret); err != nil {
		return nil, 0, err
	}
	batch := make([]Vector, 0, count)
	total := 0
	for len(batch) < count {
		e := make(Vector, g.params.N)
		attempts, err := g.sampleInto(secret, e)
		total += attempts
		if err != nil {
			return batch, total, err
		}
		batch = append(batch, e)
	}
	return batch, total, nil
}

func (g *Generator) check(secret Vector) error {
	if g == nil || g.sampler == nil {
		return fmt.Errorf("%w: generator has no sampler", ErrInvalidInput)
	}
	if err := g.params.Validate(); err != nil {
		return err
	}
	return g.params.CheckSecret(secret)
}

// sampleInto runs the rejection loop, leaving the accepted draw in e.
func (g *Generator) sampleInto(secret, e Vector) (int, error) {
	bound := g.params.SampleBound()
	window := g.params.AcceptBound()
	for attempts := 1; ; attempts++ {
		if err := g.sampler.fill(e, bound); err != nil {
			return attempts, err
		}
		if accepts(secret, e, window) {
			return attempts, nil
		}
		if g.MaxAttempts > 0 && attempts >= g.MaxAttempts {
			return attempts, fmt.Errorf("%w: no accepted draw after %d attempts", ErrSamplingExhausted, attempts)
		}
	}
}

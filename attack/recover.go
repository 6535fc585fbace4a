package attack

import "fmt"

// Recoverer narrows every coordinate of the secret from the order statistics
// of accepted ephemeral vectors. Every accepted e satisfies
// e[i]-δB <= s[i] <= e[i]+δB, so max(e[i])-δB is a lower bound and
// min(e[i])+δB an upper bound on s[i].
//
// Only the running minimum and maximum are kept, so samples can be streamed.
type Recoverer struct {
	params Params
	min    []int64
	max    []int64
	count  int
}

// NewRecoverer returns an empty recoverer for params.
func NewRecoverer(params Params) *Recoverer {
	return &Recoverer{
		params: params,
		min:    make([]int64, params.N),
		max:    make([]int64, params.N),
	}
}

// Observe folds one ephemeral vector into the running extremes.
func (r *Recoverer) Observe(e Vector) error {
	if len(e) != r.params.N {
		return fmt.Errorf("%w: sample length %d, want %d", ErrInvalidInput, len(e), r.params.N)
	}
	if r.count == 0 {
		copy(r.min, e)
		copy(r.max, e)
	} else {
		for i, v := range e {
			if v < r.min[i] {
				r.min[i] = v
			}
			if v > r.max[i] {
				r.max[i] = v
			}
		}
	}
	r.count++
	return nil
}

// Count is the number of observed samples.
func (r *Recoverer) Count() int { return r.count }

// Guess builds the current guess. It needs at least one observation.
func (r *Recoverer) Guess() (Guess, error) {
	if r.count == 0 {
		return nil, fmt.Errorf("%w: no samples observed", ErrInvalidInput)
	}
	window := r.params.AcceptBound()
	g := make(Guess, r.params.N)
	for i := range g {
		g[i] = narrow(r.min[i], r.max[i], r.params.B, window)
	}
	return g, nil
}

// narrow turns the extremes of one coordinate into a Coordinate.
func narrow(minval, maxval, bound, window int64) Coordinate {
	lower := maxval - window
	upper := minval + window
	if upper == lower {
		return Fixed(upper)
	}
	lo := max(-bound, lower)
	hi := min(bound, upper)
	if lo == hi {
		return Fixed(lo)
	}
	return Interval(lo, hi)
}

// Recover runs the recoverer over a whole batch.
func Recover(batch []Vector, params Params) (Guess, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	for j, e := range batch {
		if len(e) != params.N {
			return nil, fmt.Errorf("%w: sample %d has length %d, want %d", ErrInvalidInput, j, len(e), params.N)
		}
	}
	r := NewRecoverer(params)
	for _, e := range batch {
		if err := r.Observe(e); err != nil {
			return nil, err
		}
	}
	return r.Guess()
}

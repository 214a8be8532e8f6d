package descent

// PseudoRandom is a small linear congruential generator with a fixed
// default seed. It keeps layouts reproducible across runs and platforms.
type PseudoRandom struct {
	seed uint64
}

const (
	lcgA     = 214013
	lcgC     = 2531011
	lcgM     = 2147483648
	lcgRange = 32767
)

// NewPseudoRandom returns a generator starting from seed.
func NewPseudoRandom(seed uint64) *PseudoRandom {
	return &PseudoRandom{seed: seed}
}

// Next returns the next value in [0, 1].
func (r *PseudoRandom) Next() float64 {
	r.seed = (r.seed*lcgA + lcgC) % lcgM
	return float64(r.seed>>16) / lcgRange
}

// NextBetween returns the next value scaled into [lo, hi].
func (r *PseudoRandom) NextBetween(lo, hi float64) float64 {
	return lo + r.Next()*(hi-lo)
}

// Package sketch implements the approximate-frequency counters that back
// the heavy-hitters tracker: a Count-Min Sketch over node-update events.
package sketch

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidK is returned when the heavy-hitter target count is not positive.
var ErrInvalidK = errors.New("sketch: k must be positive")

// ErrInvalidDelta is returned when the target error probability is outside (0,1).
var ErrInvalidDelta = errors.New("sketch: delta must be in (0,1)")

// CountMin approximates the frequency of node-identifier events in
// sublinear space. It never underestimates a true count, and with
// probability at least 1-delta overestimates by no more than
// epsilon*m, where m is the number of increments observed so far.
type CountMin struct {
	k     int
	delta float64

	epsilon float64
	width   uint64 // W
	depth   uint64 // L

	p     uint64
	a     []uint64
	b     []uint64
	table [][]uint64
}

// NewCountMin derives epsilon, width and depth from k and delta as
// specified: epsilon = 1/(2k), width = ceil(e/epsilon), depth = ceil(ln(1/delta)).
func NewCountMin(k int, delta float64) (*CountMin, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if delta <= 0 || delta >= 1 {
		return nil, ErrInvalidDelta
	}

	epsilon := 1.0 / (2.0 * float64(k))
	width := uint64(math.Ceil(math.E / epsilon))
	depth := uint64(math.Ceil(math.Log(1.0 / delta)))
	if depth == 0 {
		depth = 1
	}
	if width == 0 {
		width = 1
	}

	table := make([][]uint64, depth)
	for i := range table {
		table[i] = make([]uint64, width)
	}

	p := generateRandomPrime()
	a := make([]uint64, depth)
	b := make([]uint64, depth)
	for l := uint64(0); l < depth; l++ {
		// 1 <= a <= p-2, 0 <= b <= p-1
		a[l] = uint64(rand.Int63n(int64(p-2))) + 1
		b[l] = uint64(rand.Int63n(int64(p)))
	}

	return &CountMin{
		k:       k,
		delta:   delta,
		epsilon: epsilon,
		width:   width,
		depth:   depth,
		p:       p,
		a:       a,
		b:       b,
		table:   table,
	}, nil
}

// Width returns W, the number of counters per row.
func (c *CountMin) Width() uint64 { return c.width }

// Depth returns L, the number of hash rows.
func (c *CountMin) Depth() uint64 { return c.depth }

// Epsilon returns the additive error bound derived from k.
func (c *CountMin) Epsilon() float64 { return c.epsilon }

// hash computes h_l(x) = ((a_l*x + b_l) mod p) mod W for row l.
func (c *CountMin) hash(row int, x uint64) uint64 {
	// x is reduced mod p first; then x, a and b are all < p < 2^32, so
	// a*x + b < p^2 fits in 64 bits without overflow, and the result
	// equals ((a*x + b) mod p) for every uint64 x.
	return ((c.a[row]*(x%c.p) + c.b[row]) % c.p) % c.width
}

// Increment records one occurrence of x, bumping every row's counter.
func (c *CountMin) Increment(x uint64) {
	for l := 0; l < int(c.depth); l++ {
		c.table[l][c.hash(l, x)]++
	}
}

// Estimate returns the minimum counter across all rows for x, which is
// guaranteed to be >= the true count of x.
func (c *CountMin) Estimate(x uint64) uint64 {
	min := c.table[0][c.hash(0, x)]
	for l := 1; l < int(c.depth); l++ {
		if v := c.table[l][c.hash(l, x)]; v < min {
			min = v
		}
	}
	return min
}

func (c *CountMin) String() string {
	return fmt.Sprintf("CountMin{k=%d, epsilon=%.6f, depth=%d, width=%d, delta=%.4f, p=%d}",
		c.k, c.epsilon, c.depth, c.width, c.delta, c.p)
}

// generateRandomPrime draws a prime uniformly from a large 32-bit range
// via rejection sampling. It is invoked once per CountMin construction,
// so trial division up to sqrt(x) is an acceptable cost.
func generateRandomPrime() uint64 {
	const (
		lo = uint64(1 << 20)
		hi = uint64(1<<32 - 1)
	)
	for {
		candidate := lo + uint64(rand.Int63n(int64(hi-lo)))
		if candidate%2 == 0 {
			candidate++
		}
		if isPrime(candidate) {
			return candidate
		}
	}
}

func isPrime(x uint64) bool {
	if x < 2 {
		return false
	}
	if x%2 == 0 {
		return x == 2
	}
	for i := uint64(3); i*i <= x; i += 2 {
		if x%i == 0 {
			return false
		}
	}
	return true
}

package analytics

import (
	"math"
	"sort"
)

// mean calculates the arithmetic mean.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStddev calculates sample standard deviation (n-1 denominator).
func sampleStddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// percentile computes the p-th quantile (p in [0,1]) using linear
// interpolation between order statistics. The input is copied and sorted.
func percentile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// pearson computes the Pearson correlation coefficient between two
// equal-length series. Returns false when either series has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return 0, false
	}

	mx := mean(xs)
	my := mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0, false
	}
	return cov / denom, true
}

package analytics

import "math"

// window is a fixed-size sliding window over a return series. Mean and
// variance are maintained incrementally from running sums; percentile-based
// statistics read the buffered values directly, since order statistics cannot
// be maintained from running sums.
type window struct {
	size  int
	buf   []float64
	head  int // next write position
	n     int // elements currently held
	sum   float64
	sumSq float64
}

func newWindow(size int) *window {
	return &window{size: size, buf: make([]float64, size)}
}

// push appends x, evicting the oldest element once the window is full.
func (w *window) push(x float64) {
	if w.n == w.size {
		old := w.buf[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.n++
	}
	w.buf[w.head] = x
	w.sum += x
	w.sumSq += x * x
	w.head = (w.head + 1) % w.size
}

func (w *window) full() bool {
	return w.n == w.size
}

func (w *window) mean() float64 {
	if w.n == 0 {
		return 0
	}
	return w.sum / float64(w.n)
}

// stddev returns the sample standard deviation of the held values.
func (w *window) stddev() float64 {
	if w.n < 2 {
		return 0
	}
	nf := float64(w.n)
	variance := (w.sumSq - w.sum*w.sum/nf) / (nf - 1)
	if variance < 0 {
		// running-sum cancellation can dip a zero variance slightly negative
		variance = 0
	}
	return math.Sqrt(variance)
}

// values returns the held values, oldest first.
func (w *window) values() []float64 {
	out := make([]float64, 0, w.n)
	start := w.head - w.n
	for i := 0; i < w.n; i++ {
		out = append(out, w.buf[((start+i)%w.size+w.size)%w.size])
	}
	return out
}

// Rolling helpers over a daily-return series. Index 0 carries the synthetic
// first return and never enters a window, so a statistic of window size w
// first becomes defined at index w. Undefined positions are nil, keeping
// "insufficient window" distinct from a computed zero.

// rollingMean computes the trailing mean of size samples at every index.
func rollingMean(returns []float64, size int) []*float64 {
	out := make([]*float64, len(returns))
	w := newWindow(size)
	for i := 1; i < len(returns); i++ {
		w.push(returns[i])
		if w.full() {
			v := w.mean()
			out[i] = &v
		}
	}
	return out
}

// rollingStddev computes the trailing sample standard deviation of size
// samples at every index.
func rollingStddev(returns []float64, size int) []*float64 {
	out := make([]*float64, len(returns))
	w := newWindow(size)
	for i := 1; i < len(returns); i++ {
		w.push(returns[i])
		if w.full() {
			v := w.stddev()
			out[i] = &v
		}
	}
	return out
}

// rollingApply computes fn over the trailing size samples at every index.
// Used for percentile-based statistics (VaR, CVaR, downside deviation).
func rollingApply(returns []float64, size int, fn func([]float64) float64) []*float64 {
	out := make([]*float64, len(returns))
	w := newWindow(size)
	for i := 1; i < len(returns); i++ {
		w.push(returns[i])
		if w.full() {
			v := fn(w.values())
			out[i] = &v
		}
	}
	return out
}

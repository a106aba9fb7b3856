// Package parallel runs data-parallel phases over index ranges on a fixed
// number of workers. Every call returns only after all chunks finished, so
// consecutive calls are separated by a barrier.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool splits work into at most Workers contiguous chunks.
type Pool struct {
	workers int
}

// New returns a pool with the given worker count; values below 1 select
// runtime.NumCPU().
func New(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// chunks returns the chunk count and size used for n items. The split only
// depends on n and the worker count.
func (p *Pool) chunks(n int) (count, size int) {
	count = p.workers
	if n < count {
		count = n
	}
	if count < 1 {
		count = 1
	}
	size = (n + count - 1) / count
	return count, size
}

// For executes fn over [0, n) in parallel.
func (p *Pool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	count, size := p.chunks(n)
	if count == 1 {
		fn(0, n)
		return
	}

	var g errgroup.Group
	for c := 0; c < count; c++ {
		start := c * size
		end := min(start+size, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// Sum executes fn over [0, n) in parallel and adds the per-chunk partial sums
// in chunk order, which keeps the result stable for a fixed worker count.
func (p *Pool) Sum(n int, fn func(start, end int) float64) float64 {
	if n <= 0 {
		return 0
	}
	count, size := p.chunks(n)
	partial := make([]float64, count)

	var g errgroup.Group
	for c := 0; c < count; c++ {
		start := c * size
		end := min(start+size, n)
		if start >= end {
			break
		}
		c := c
		g.Go(func() error {
			partial[c] = fn(start, end)
			return nil
		})
	}
	_ = g.Wait()

	total := 0.0
	for _, v := range partial {
		total += v
	}
	return total
}

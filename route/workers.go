package route

import "golang.org/x/sync/errgroup"

// parallel 把 [0,n) 切分为 threads 段并发执行,各段只写自己的下标
func parallel(threads, n int, fn func(lo, hi int) error) error {
	if threads <= 1 || n < 2*threads {
		return fn(0, n)
	}
	var g errgroup.Group
	g.SetLimit(threads)
	chunk := (n + threads - 1) / threads
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

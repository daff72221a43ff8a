package grid

import (
	"context"
	"runtime"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// Block - a rectangular region of a grid, in 0-based row/col offsets
type Block struct {
	Row0 int
	Col0 int
	Rows int
	Cols int
}

// Whole - the block covering an entire rows x cols grid
func Whole(rows int, cols int) Block {
	return Block{Rows: rows, Cols: cols}
}

// Chunks - splits rows x cols into blocks of at most chunk x chunk, in row-major order.
// The edge blocks take whatever is left over
func Chunks(rows int, cols int, chunk int) []Block {
	if chunk <= 0 {
		return []Block{Whole(rows, cols)}
	}

	result := []Block{}
	for r := 0; r < rows; r += chunk {
		for c := 0; c < cols; c += chunk {
			result = append(result, Block{
				Row0: r,
				Col0: c,
				Rows: minInt(chunk, rows-r),
				Cols: minInt(chunk, cols-c),
			})
		}
	}
	return result
}

// MapBlocks - runs fn on every block with at most workers running at once (NumCPU if <= 0).
// Returns the first error, blocks not yet started are skipped once one fails. fn must only
// write to the region of its own block
func MapBlocks(blocks []Block, workers int, fn func(b Block) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for _, b := range blocks {
		b := b
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return fn(b)
		})
	}

	return g.Wait()
}

// Linspace - n evenly spaced values from start to stop inclusive
func Linspace[T constraints.Float](start T, stop T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n == 1 {
		return []T{start}
	}

	result := make([]T, n)
	step := (stop - start) / T(n-1)
	for c := range result {
		result[c] = start + T(c)*step
	}
	// Avoid rounding drift on the end point
	result[n-1] = stop
	return result
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}

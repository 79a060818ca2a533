package col2im

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/col2im/internal/tensor"
)

// kernelVariants lists the four (layout, dtype) combinations every kernel test runs on.
var kernelVariants = []struct {
	layout tensor.Layout
	dtype  tensor.DataType
}{
	{tensor.Heap, tensor.Float32},
	{tensor.Heap, tensor.Float64},
	{tensor.Direct, tensor.Float32},
	{tensor.Direct, tensor.Float64},
}

// newFilled returns a contiguous tensor with element idx set to fn(idx).
func newFilled(t testing.TB, shape tensor.Shape, dtype tensor.DataType, layout tensor.Layout, fn func(idx []int) float64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, dtype, layout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Release() })
	r.Each(func(idx []int) {
		r.Set(fn(idx), idx...)
	})
	return r
}

// randomCol returns a column tensor with uniformly random values in [-1, 1).
func randomCol(t testing.TB, shape tensor.Shape, dtype tensor.DataType, layout tensor.Layout, seed uint64) *tensor.RawTensor {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return newFilled(t, shape, dtype, layout, func([]int) float64 {
		return rng.Float64()*2 - 1
	})
}

// plane returns img[ex, d] as rows.
func plane(img *tensor.RawTensor, ex, d int) [][]float64 {
	s := img.Shape()
	rows := make([][]float64, s[2])
	for i := range rows {
		rows[i] = make([]float64, s[3])
		for j := range rows[i] {
			rows[i][j] = img.At(ex, d, i, j)
		}
	}
	return rows
}

// values returns all elements of t in row-major order.
func values(t *tensor.RawTensor) []float64 {
	out := make([]float64, 0, t.NumElements())
	t.Each(func(idx []int) {
		out = append(out, t.At(idx...))
	})
	return out
}

// im2col is the reference forward transform: col[n, c, kh, kw, y, x] is the image
// pixel under kernel position (kh, kw) of patch (y, x), or 0 in the padding.
func im2col(t testing.TB, img *tensor.RawTensor, kH, kW int, p Params) *tensor.RawTensor {
	s := img.Shape()
	outH := (s[2]+2*p.PadHeight-kH)/p.StrideY + 1
	outW := (s[3]+2*p.PadWidth-kW)/p.StrideX + 1
	return newFilled(t, tensor.Shape{s[0], s[1], kH, kW, outH, outW}, img.DType(), img.Layout(), func(idx []int) float64 {
		row := idx[4]*p.StrideY - p.PadHeight + idx[2]
		col := idx[5]*p.StrideX - p.PadWidth + idx[3]
		if row < 0 || row >= s[2] || col < 0 || col >= s[3] {
			return 0
		}
		return img.At(idx[0], idx[1], row, col)
	})
}

// gatedExecutor queues submitted workers until release is called.
type gatedExecutor struct {
	mu          sync.Mutex
	queued      []func()
	parallelism int
}

func (g *gatedExecutor) Execute(task func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, task)
}

func (g *gatedExecutor) Parallelism() int {
	return g.parallelism
}

// release runs the queued workers sequentially and returns how many there were.
func (g *gatedExecutor) release() int {
	g.mu.Lock()
	queued := g.queued
	g.queued = nil
	g.mu.Unlock()
	for _, task := range queued {
		task()
	}
	return len(queued)
}

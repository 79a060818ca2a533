package col2im

import (
	"github.com/born-ml/col2im/internal/parallel"
	"github.com/born-ml/col2im/internal/tensor"
)

// Params are the convolution parameters of a Col2Im, constant for the task's lifetime.
type Params struct {
	StrideY, StrideX    int // Patch stride in image coordinates.
	PadHeight, PadWidth int // Virtual zero padding subtracted from patch placement.
	ImgHeight, ImgWidth int // Spatial dimensions of the image.
}

// hasPadding reports whether the clipping kernel path is needed.
func (p Params) hasPadding() bool {
	return p.PadHeight > 0 || p.PadWidth > 0
}

// Option configures a Task.
type Option func(*config)

type config struct {
	output            *tensor.RawTensor
	exampleRange      *[2]int
	depthRange        *[2]int
	parallelThreshold int
	executor          parallel.Executor
}

// WithOutput accumulates into img instead of a freshly allocated, zeroed tensor.
// img must be [numExamples, depth, ImgHeight, ImgWidth] with the column tensor's dtype and layout.
func WithOutput(img *tensor.RawTensor) Option {
	return func(c *config) {
		c.output = img
	}
}

// WithExampleRange restricts the task to examples in [from, to).
func WithExampleRange(from, to int) Option {
	return func(c *config) {
		c.exampleRange = &[2]int{from, to}
	}
}

// WithDepthRange restricts the task to depth channels in [from, to).
func WithDepthRange(from, to int) Option {
	return func(c *config) {
		c.depthRange = &[2]int{from, to}
	}
}

// WithParallelThreshold records the input size under which parallel execution is
// not considered worthwhile.
//
// The threshold is currently not consulted: tasks always dispatch to as many
// workers as the executor offers.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		c.parallelThreshold = n
	}
}

// WithExecutor runs the task's workers on exec.
// By default a pool sized with parallel.DefaultConfig is used.
func WithExecutor(exec parallel.Executor) Option {
	return func(c *config) {
		c.executor = exec
	}
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package col2im provides the public API of the parallel Col2Im transform:
// scattering the patches of a column tensor [examples, depth, kH, kW, outH, outW]
// back into an image tensor [examples, depth, imgHeight, imgWidth].
//
// Example:
//
//	task, err := col2im.New(col, col2im.Params{
//	    StrideY: 1, StrideX: 1,
//	    ImgHeight: 4, ImgWidth: 4,
//	})
//	if err != nil {
//	    return err
//	}
//	img, err := task.Invoke(ctx)
package col2im

import (
	internalcol2im "github.com/born-ml/col2im/internal/col2im"
	"github.com/born-ml/col2im/parallel"
	"github.com/born-ml/col2im/tensor"
)

// Task scatters a column tensor back into an image tensor, in parallel.
type Task = internalcol2im.Task

// Params are the convolution parameters of a Col2Im.
type Params = internalcol2im.Params

// Option configures a Task.
type Option = internalcol2im.Option

// State of a Task.
type State = internalcol2im.State

// Task states.
const (
	Pending   State = internalcol2im.Pending
	Running   State = internalcol2im.Running
	Completed State = internalcol2im.Completed
	Cancelled State = internalcol2im.Cancelled
	Failed    State = internalcol2im.Failed
)

// Errors returned by tasks. Use errors.Is to test for them.
var (
	ErrInvalidGeometry = internalcol2im.ErrInvalidGeometry
	ErrTimeout         = internalcol2im.ErrTimeout
	ErrInterrupted     = internalcol2im.ErrInterrupted
	ErrCancelled       = internalcol2im.ErrCancelled
	ErrUnitFailed      = internalcol2im.ErrUnitFailed
	ErrAlreadyStarted  = internalcol2im.ErrAlreadyStarted
)

// New validates col and p and creates a task that has not been started.
func New(col *tensor.RawTensor, p Params, opts ...Option) (*Task, error) {
	return internalcol2im.New(col, p, opts...)
}

// MustNew is New that panics on invalid input.
func MustNew(col *tensor.RawTensor, p Params, opts ...Option) *Task {
	return internalcol2im.MustNew(col, p, opts...)
}

// NewOutput allocates a zeroed image tensor [examples, depth, imgHeight, imgWidth]
// matching col's dtype and layout.
func NewOutput(col *tensor.RawTensor, imgHeight, imgWidth int) (*tensor.RawTensor, error) {
	return internalcol2im.NewOutput(col, imgHeight, imgWidth)
}

// WithOutput accumulates into img instead of a freshly allocated tensor.
func WithOutput(img *tensor.RawTensor) Option {
	return internalcol2im.WithOutput(img)
}

// WithExampleRange restricts the task to examples in [from, to).
func WithExampleRange(from, to int) Option {
	return internalcol2im.WithExampleRange(from, to)
}

// WithDepthRange restricts the task to depth channels in [from, to).
func WithDepthRange(from, to int) Option {
	return internalcol2im.WithDepthRange(from, to)
}

// WithParallelThreshold records the input size under which parallel execution is
// not considered worthwhile. It is currently not consulted.
func WithParallelThreshold(n int) Option {
	return internalcol2im.WithParallelThreshold(n)
}

// WithExecutor sets the executor the task submits its workers to.
func WithExecutor(exec parallel.Executor) Option {
	return internalcol2im.WithExecutor(exec)
}

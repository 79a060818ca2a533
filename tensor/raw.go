// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/col2im/internal/tensor"
)

// RawTensor is a strided view over a reference-counted buffer.
//
// RawTensor provides:
//   - Shape, stride and offset information via Shape(), Strides(), Offset()
//   - Element access via At(), Set(), Fill() and Each()
//   - Zero-copy buffer access via Float32s(), Float64s() and Bytes()
//   - Buffer-sharing views via Permute() and Slice()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.Heap)
//	raw.Set(1.5, 0, 2)
//	view, _ := raw.Permute(1, 0) // Shares the buffer
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled contiguous tensor.
func NewRaw(shape Shape, dtype DataType, layout Layout) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, layout)
}

// FromFloat64s creates a contiguous tensor holding values in row-major order,
// converted to dtype.
func FromFloat64s(values []float64, shape Shape, dtype DataType, layout Layout) (*RawTensor, error) {
	return tensor.FromFloat64s(values, shape, dtype, layout)
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/col2im/internal/tensor"
)

// Type aliases for public API

// Float is the constraint for element types a tensor can hold.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Layout selects how a tensor's buffer is stored and addressed.
type Layout = tensor.Layout

// Layout constants.
const (
	Heap   Layout = tensor.Heap
	Direct Layout = tensor.Direct
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// ParseDataType converts "float32"/"f32" or "float64"/"f64" to a DataType.
func ParseDataType(name string) (DataType, bool) {
	return tensor.ParseDataType(name)
}

// ParseLayout converts "heap" or "direct" to a Layout.
func ParseLayout(name string) (Layout, bool) {
	return tensor.ParseLayout(name)
}

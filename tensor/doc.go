// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the strided tensor views consumed by the col2im package.
//
// # Overview
//
// A tensor is a view over a reference-counted buffer: a shape, per-axis strides
// and an element offset. Views created with Permute and Slice share the buffer,
// so a column tensor can be fed to col2im in whatever memory order it was produced.
//
// # Data Types and Layouts
//
// Two element types are supported, Float32 and Float64, each in two layouts:
//   - Heap: typed Go slices, indexed by element
//   - Direct: raw little-endian bytes in an anonymous memory mapping, indexed by byte
//
// # Basic Usage
//
//	col, err := tensor.NewRaw(tensor.Shape{1, 1, 3, 3, 2, 2}, tensor.Float32, tensor.Heap)
//	if err != nil {
//	    return err
//	}
//	defer col.Release()
//	col.Fill(1)
//
//	// Column data stored with the output grid outermost.
//	view, err := col.Permute(0, 1, 4, 5, 2, 3)
//
// # Memory Management
//
// Buffers are reference counted. Every tensor and view must be released once;
// the buffer is freed (direct buffers unmapped) when the last holder releases it.
package tensor

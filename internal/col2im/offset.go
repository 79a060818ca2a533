package col2im

import (
	"github.com/pkg/errors"

	"github.com/born-ml/col2im/internal/tensor"
)

// offset4 returns base + Σ idx[k]*stride[k] for a rank-4 tensor, skipping
// singleton dimensions.
//
// No bounds checking: callers guarantee the indices address the tensor (the
// padding path passes negative image coordinates and clips afterwards).
func offset4(base int, shape tensor.Shape, stride []int, i0, i1, i2, i3 int) int {
	offset := base
	if shape[0] != 1 {
		offset += i0 * stride[0]
	}
	if shape[1] != 1 {
		offset += i1 * stride[1]
	}
	if shape[2] != 1 {
		offset += i2 * stride[2]
	}
	if shape[3] != 1 {
		offset += i3 * stride[3]
	}
	return offset
}

// offset6 is offset4 for the rank-6 column tensor, with the kernel indices
// (dimensions 2 and 3) fixed at zero: they are added inside the kernel loops.
func offset6(base int, shape tensor.Shape, stride []int, i0, i1, i4, i5 int) int {
	offset := base
	if shape[0] != 1 {
		offset += i0 * stride[0]
	}
	if shape[1] != 1 {
		offset += i1 * stride[1]
	}
	if shape[4] != 1 {
		offset += i4 * stride[4]
	}
	if shape[5] != 1 {
		offset += i5 * stride[5]
	}
	return offset
}

// checkedOffset4 is offset4 with rank and range checks.
func checkedOffset4(base int, shape tensor.Shape, stride []int, idx [4]int) (int, error) {
	if err := checkIndices(shape, stride, idx[:]); err != nil {
		return 0, err
	}
	return offset4(base, shape, stride, idx[0], idx[1], idx[2], idx[3]), nil
}

// checkedOffset6 is offset6 with rank and range checks; idx holds dimensions 0, 1, 4 and 5.
func checkedOffset6(base int, shape tensor.Shape, stride []int, idx [4]int) (int, error) {
	full := []int{idx[0], idx[1], 0, 0, idx[2], idx[3]}
	if err := checkIndices(shape, stride, full); err != nil {
		return 0, err
	}
	return offset6(base, shape, stride, idx[0], idx[1], idx[2], idx[3]), nil
}

func checkIndices(shape tensor.Shape, stride []int, idx []int) error {
	if len(shape) != len(idx) || len(stride) != len(idx) {
		return errors.Errorf("rank mismatch: shape %v, strides %v, %d indices", shape, stride, len(idx))
	}
	for k, i := range idx {
		if i < 0 || i >= shape[k] {
			return errors.Errorf("index %d out of range [0, %d) at axis %d", i, shape[k], k)
		}
	}
	return nil
}

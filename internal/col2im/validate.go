package col2im

import (
	"github.com/born-ml/col2im/internal/tensor"
)

// validateColumn checks the column tensor and parameters on their own.
func validateColumn(col *tensor.RawTensor, p Params) error {
	colShape := col.Shape()
	if len(colShape) != 6 {
		return invalidf("column tensor must have rank 6 [examples, depth, kH, kW, outH, outW], got shape %v", colShape)
	}
	if err := colShape.Validate(); err != nil {
		return invalidf("column tensor: %v", err)
	}
	if !col.DType().Valid() {
		return invalidf("unsupported column dtype %s", col.DType())
	}

	switch {
	case p.StrideY < 1 || p.StrideX < 1:
		return invalidf("strides must be >= 1, got strideY=%d strideX=%d", p.StrideY, p.StrideX)
	case p.PadHeight < 0 || p.PadWidth < 0:
		return invalidf("paddings must be >= 0, got padHeight=%d padWidth=%d", p.PadHeight, p.PadWidth)
	case p.ImgHeight < 1 || p.ImgWidth < 1:
		return invalidf("image size must be >= 1, got %dx%d", p.ImgHeight, p.ImgWidth)
	}

	// Without padding the kernels do not clip, so every patch must fit in the image.
	if !p.hasPadding() {
		kH, kW, outH, outW := colShape[2], colShape[3], colShape[4], colShape[5]
		if last := (outH-1)*p.StrideY + kH; last > p.ImgHeight {
			return invalidf("patches reach image row %d, image height is %d", last-1, p.ImgHeight)
		}
		if last := (outW-1)*p.StrideX + kW; last > p.ImgWidth {
			return invalidf("patches reach image column %d, image width is %d", last-1, p.ImgWidth)
		}
	}
	return nil
}

// validateImage checks img can receive the accumulation of col without two
// units, or two elements of one unit, sharing memory.
func validateImage(col, img *tensor.RawTensor, p Params) error {
	colShape := col.Shape()
	imgShape := img.Shape()
	want := tensor.Shape{colShape[0], colShape[1], p.ImgHeight, p.ImgWidth}
	if !imgShape.Equal(want) {
		return invalidf("image tensor shape %v does not match column tensor %v (want %v)", imgShape, colShape, want)
	}
	if img.DType() != col.DType() || img.Layout() != col.Layout() {
		return invalidf("image tensor is %s %s, column tensor is %s %s",
			img.Layout(), img.DType(), col.Layout(), col.DType())
	}
	for k, s := range img.Strides() {
		if s == 0 && imgShape[k] != 1 {
			return invalidf("image tensor aliases elements: stride 0 on axis %d of size %d", k, imgShape[k])
		}
	}
	return nil
}

// validateRange checks [from, to) lies within [0, size).
func validateRange(name string, r *[2]int, size int) (from, to int, err error) {
	if r == nil {
		return 0, size, nil
	}
	from, to = r[0], r[1]
	if from < 0 || to > size || from > to {
		return 0, 0, invalidf("%s range [%d, %d) not within [0, %d)", name, from, to, size)
	}
	return from, to, nil
}

package col2im

import (
	"github.com/pkg/errors"

	"github.com/born-ml/col2im/internal/tensor"
)

// NewOutput allocates the zeroed image tensor [numExamples, depth, imgHeight, imgWidth]
// for the column tensor col, with col's dtype and layout.
func NewOutput(col *tensor.RawTensor, imgHeight, imgWidth int) (*tensor.RawTensor, error) {
	shape := col.Shape()
	if len(shape) != 6 {
		return nil, invalidf("column tensor must have rank 6, got shape %v", shape)
	}
	img, err := tensor.NewRaw(tensor.Shape{shape[0], shape[1], imgHeight, imgWidth}, col.DType(), col.Layout())
	if err != nil {
		return nil, errors.WithMessage(err, "col2im: failed to allocate output")
	}
	return img, nil
}

package col2im

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/col2im/internal/tensor"
)

// runUnit accumulates every patch of work unit (ex, d) into the image, using the
// kernel executor matching the column tensor's layout and dtype.
func runUnit(col, img *tensor.RawTensor, p Params, ex, d int) {
	v, err := variantOf(col)
	if err != nil {
		panic(err)
	}
	switch v {
	case heapFloat32:
		accumulate(heapAccessor[float32]{in: col.Float32s(), out: img.Float32s()}, col, img, p, ex, d)
	case heapFloat64:
		accumulate(heapAccessor[float64]{in: col.Float64s(), out: img.Float64s()}, col, img, p, ex, d)
	case directFloat32:
		accumulate(directAccessor[float32, float32LE]{in: col.Bytes(), out: img.Bytes()}, col, img, p, ex, d)
	case directFloat64:
		accumulate(directAccessor[float64, float64LE]{in: col.Bytes(), out: img.Bytes()}, col, img, p, ex, d)
	}
}

// heightInnermost reports whether the kernel-height loop should be the inner one:
// true when the column tensor's kernel-height stride is not larger than its
// kernel-width stride.
func heightInnermost(col *tensor.RawTensor) bool {
	s := col.Strides()
	return s[2] <= s[3]
}

// accumulate is the Col2Im inner routine for one work unit (ex, d):
//
//	img[ex, d, y*strideY - padH + kh, x*strideX - padW + kw] += col[ex, d, kh, kw, y, x]
//
// Patches are visited x-major (x outer, y inner); within a patch the kernel
// dimension with the smaller column stride is iterated innermost. Image
// coordinates outside the image (only possible with padding) are skipped.
//
//nolint:gocognit // The four loop nests are the kernel.
func accumulate[A accessor](acc A, col, img *tensor.RawTensor, p Params, ex, d int) {
	s := acc.scale()

	inOffset, inShape, inStride := col.Offset(), col.Shape(), col.Strides()
	outOffset, outShape, outStride := img.Offset(), img.Shape(), img.Strides()

	kernelHeight, kernelWidth := inShape[2], inShape[3]
	yOutTo, xOutTo := inShape[4], inShape[5]
	imgHeight, imgWidth := outShape[2], outShape[3]

	inStrideH, inStrideW := inStride[2]*s, inStride[3]*s
	outStrideH, outStrideW := outStride[2]*s, outStride[3]*s
	// Singleton image dimensions are not part of the address (see offset4), so a
	// patch row or column landing on them must not move the address either.
	if imgHeight == 1 {
		outStrideH = 0
	}
	if imgWidth == 1 {
		outStrideW = 0
	}

	heightInner := heightInnermost(col)
	padding := p.hasPadding()

	for x := 0; x < xOutTo; x++ { // Patch number along width.
		for y := 0; y < yOutTo; y++ { // Patch number along height.
			baseIn := s * offset6(inOffset, inShape, inStride, ex, d, y, x)

			if padding {
				i := y*p.StrideY - p.PadHeight // Image row of the patch's first element.
				j := x*p.StrideX - p.PadWidth  // Image column of the patch's first element.
				baseOut := s * offset4(outOffset, outShape, outStride, ex, d, i, j)

				if heightInner {
					for patchX := 0; patchX < kernelWidth; patchX++ {
						if j+patchX < 0 || j+patchX >= imgWidth {
							continue
						}
						outX := baseOut + patchX*outStrideW
						inX := baseIn + patchX*inStrideW
						for patchY := 0; patchY < kernelHeight; patchY++ {
							if i+patchY < 0 || i+patchY >= imgHeight {
								continue
							}
							add(acc, outX+patchY*outStrideH, inX+patchY*inStrideH)
						}
					}
				} else {
					for patchY := 0; patchY < kernelHeight; patchY++ {
						if i+patchY < 0 || i+patchY >= imgHeight {
							continue
						}
						outY := baseOut + patchY*outStrideH
						inY := baseIn + patchY*inStrideH
						for patchX := 0; patchX < kernelWidth; patchX++ {
							if j+patchX < 0 || j+patchX >= imgWidth {
								continue
							}
							add(acc, outY+patchX*outStrideW, inY+patchX*inStrideW)
						}
					}
				}
				continue
			}

			// No padding: every patch lies inside the image.
			baseOut := s * offset4(outOffset, outShape, outStride, ex, d, y*p.StrideY, x*p.StrideX)
			if heightInner {
				for patchX := 0; patchX < kernelWidth; patchX++ {
					outX := baseOut + patchX*outStrideW
					inX := baseIn + patchX*inStrideW
					for patchY := 0; patchY < kernelHeight; patchY++ {
						add(acc, outX+patchY*outStrideH, inX+patchY*inStrideH)
					}
				}
			} else {
				for patchY := 0; patchY < kernelHeight; patchY++ {
					outY := baseOut + patchY*outStrideH
					inY := baseIn + patchY*inStrideH
					for patchX := 0; patchX < kernelWidth; patchX++ {
						add(acc, outY+patchX*outStrideW, inY+patchX*inStrideW)
					}
				}
			}
		}
	}
}

// add is acc.add with address validation in col2imdebug builds.
func add[A accessor](acc A, out, in int) {
	if debugChecks && !acc.inBounds(out, in) {
		exceptions.Panicf("col2im: address out of buffer: out=%d, in=%d (scale %d)", out, in, acc.scale())
	}
	acc.add(out, in)
}

package col2im

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/col2im/internal/tensor"
)

// accessor performs the load/add/store of one column element into one image element.
//
// Addresses are in accessor units: elements for heap buffers, bytes for direct
// buffers. scale converts element offsets and strides into those units.
type accessor interface {
	add(out, in int)
	scale() int
	inBounds(out, in int) bool
}

// heapAccessor reads and writes typed Go slices.
type heapAccessor[T tensor.Float] struct {
	in, out []T
}

func (a heapAccessor[T]) add(out, in int) {
	a.out[out] += a.in[in]
}

func (heapAccessor[T]) scale() int { return 1 }

func (a heapAccessor[T]) inBounds(out, in int) bool {
	return out >= 0 && out < len(a.out) && in >= 0 && in < len(a.in)
}

// byteCodec loads and stores one element of type T from raw bytes.
type byteCodec[T tensor.Float] interface {
	load(b []byte) T
	store(b []byte, v T)
	width() int
}

type float32LE struct{}

func (float32LE) load(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (float32LE) store(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func (float32LE) width() int { return 4 }

type float64LE struct{}

func (float64LE) load(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (float64LE) store(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func (float64LE) width() int { return 8 }

// directAccessor reads and writes raw byte buffers at byte offsets.
type directAccessor[T tensor.Float, C byteCodec[T]] struct {
	in, out []byte
	codec   C
}

func (a directAccessor[T, C]) add(out, in int) {
	dst := a.out[out:]
	a.codec.store(dst, a.codec.load(dst)+a.codec.load(a.in[in:]))
}

func (a directAccessor[T, C]) scale() int { return a.codec.width() }

func (a directAccessor[T, C]) inBounds(out, in int) bool {
	w := a.codec.width()
	return out >= 0 && out+w <= len(a.out) && out%w == 0 &&
		in >= 0 && in+w <= len(a.in) && in%w == 0
}

// variant names the kernel executor matching a tensor's layout and dtype.
type variant int

const (
	heapFloat32 variant = iota
	heapFloat64
	directFloat32
	directFloat64
)

func (v variant) String() string {
	switch v {
	case heapFloat32:
		return "heap/float32"
	case heapFloat64:
		return "heap/float64"
	case directFloat32:
		return "direct/float32"
	case directFloat64:
		return "direct/float64"
	default:
		return "unknown"
	}
}

// variantOf selects the kernel executor for t.
func variantOf(t *tensor.RawTensor) (variant, error) {
	switch {
	case t.Layout() == tensor.Heap && t.DType() == tensor.Float32:
		return heapFloat32, nil
	case t.Layout() == tensor.Heap && t.DType() == tensor.Float64:
		return heapFloat64, nil
	case t.Layout() == tensor.Direct && t.DType() == tensor.Float32:
		return directFloat32, nil
	case t.Layout() == tensor.Direct && t.DType() == tensor.Float64:
		return directFloat64, nil
	}
	return 0, errors.Errorf("no kernel for %s %s tensors", t.Layout(), t.DType())
}

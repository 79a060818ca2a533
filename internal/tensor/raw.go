package tensor

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// tensorBuffer is a reference-counted buffer shared by a tensor and its views.
//
// Exactly one of f32, f64 or direct is set, depending on dtype and layout.
type tensorBuffer struct {
	f32    []float32
	f64    []float64
	direct mmap.MMap

	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer allocates a zeroed buffer for n elements with refCount = 1.
func newTensorBuffer(n int, dtype DataType, layout Layout) (*tensorBuffer, error) {
	buf := &tensorBuffer{}
	switch layout {
	case Heap:
		switch dtype {
		case Float32:
			buf.f32 = make([]float32, n)
		case Float64:
			buf.f64 = make([]float64, n)
		default:
			return nil, errors.Errorf("unsupported dtype %s", dtype)
		}
	case Direct:
		if !dtype.Valid() {
			return nil, errors.Errorf("unsupported dtype %s", dtype)
		}
		// Anonymous mappings are zero-filled by the OS.
		m, err := mmap.MapRegion(nil, n*dtype.Size(), mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to map %d bytes for direct buffer", n*dtype.Size())
		}
		buf.direct = m
	default:
		return nil, errors.Errorf("unsupported layout %s", layout)
	}
	buf.refCount.Store(1)
	return buf, nil
}

// addRef increments the reference count (for views).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() error {
	if tb.refCount.Add(-1) != 0 {
		return nil
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.f32, tb.f64 = nil, nil
	if tb.direct == nil {
		return nil
	}
	err := tb.direct.Unmap()
	tb.direct = nil
	return errors.Wrap(err, "failed to unmap direct buffer")
}

// RawTensor is a strided view over a shared buffer:
// element (i0, i1, ...) lives at offset + Σ ik*stride[k] of the buffer.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	layout Layout
	offset int
}

// NewRaw creates a new contiguous RawTensor with the given shape, type and layout.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType, layout Layout) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid shape")
	}

	buf, err := newTensorBuffer(shape.NumElements(), dtype, layout)
	if err != nil {
		return nil, err
	}
	return &RawTensor{
		buffer: buf,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		layout: layout,
	}, nil
}

// FromFloat64s creates a contiguous tensor holding values in row-major order.
func FromFloat64s(values []float64, shape Shape, dtype DataType, layout Layout) (*RawTensor, error) {
	if len(values) != shape.NumElements() {
		return nil, errors.Errorf("got %d values for shape %v (%d elements)", len(values), shape, shape.NumElements())
	}
	r, err := NewRaw(shape, dtype, layout)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		r.store(i, v)
	}
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides, in elements.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Offset returns the element offset of the view's first element in the buffer.
func (r *RawTensor) Offset() int {
	return r.offset
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Layout returns how the tensor's buffer is stored.
func (r *RawTensor) Layout() Layout {
	return r.layout
}

// NumElements returns the total number of elements of the view.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the memory size of the view's elements in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// BufferLen returns the number of elements in the whole backing buffer,
// which may be larger than NumElements for views.
func (r *RawTensor) BufferLen() int {
	switch {
	case r.layout == Direct:
		return len(r.buffer.direct) / r.dtype.Size()
	case r.dtype == Float32:
		return len(r.buffer.f32)
	default:
		return len(r.buffer.f64)
	}
}

// Float32s returns the whole backing array of a heap float32 tensor.
// Index it with Offset and Strides.
// Panics if the tensor is not a heap float32 tensor.
func (r *RawTensor) Float32s() []float32 {
	if r.layout != Heap || r.dtype != Float32 {
		panic(errors.Errorf("tensor is %s %s, not heap float32", r.layout, r.dtype))
	}
	return r.buffer.f32
}

// Float64s returns the whole backing array of a heap float64 tensor.
// Index it with Offset and Strides.
// Panics if the tensor is not a heap float64 tensor.
func (r *RawTensor) Float64s() []float64 {
	if r.layout != Heap || r.dtype != Float64 {
		panic(errors.Errorf("tensor is %s %s, not heap float64", r.layout, r.dtype))
	}
	return r.buffer.f64
}

// Bytes returns the whole backing byte buffer of a direct tensor.
// Byte offsets are element offsets multiplied by DType().Size().
// Panics if the tensor is not a direct tensor.
func (r *RawTensor) Bytes() []byte {
	if r.layout != Direct {
		panic(errors.Errorf("tensor is %s, not direct", r.layout))
	}
	return r.buffer.direct
}

// Index returns the buffer element offset of the element at idx, checking bounds.
func (r *RawTensor) Index(idx ...int) (int, error) {
	if len(idx) != len(r.shape) {
		return 0, errors.Errorf("got %d indices for tensor of rank %d", len(idx), len(r.shape))
	}
	offset := r.offset
	for k, i := range idx {
		if i < 0 || i >= r.shape[k] {
			return 0, errors.Errorf("index %d out of range [0, %d) at axis %d", i, r.shape[k], k)
		}
		offset += i * r.stride[k]
	}
	return offset, nil
}

// At returns the element at idx converted to float64.
// Panics if idx is out of range.
func (r *RawTensor) At(idx ...int) float64 {
	offset, err := r.Index(idx...)
	if err != nil {
		panic(err)
	}
	return r.load(offset)
}

// Set stores v (converted to the tensor's dtype) at idx.
// Panics if idx is out of range.
func (r *RawTensor) Set(v float64, idx ...int) {
	offset, err := r.Index(idx...)
	if err != nil {
		panic(err)
	}
	r.store(offset, v)
}

// Fill sets every element of the view to v.
func (r *RawTensor) Fill(v float64) {
	r.Each(func(idx []int) {
		r.Set(v, idx...)
	})
}

// Each calls fn with every index of the view, in row-major order.
// The idx slice is reused between calls.
func (r *RawTensor) Each(fn func(idx []int)) {
	idx := make([]int, len(r.shape))
	for n := r.NumElements(); n > 0; n-- {
		fn(idx)
		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < r.shape[k] {
				break
			}
			idx[k] = 0
		}
	}
}

// load reads the element at a buffer element offset.
func (r *RawTensor) load(offset int) float64 {
	b := r.buffer
	switch {
	case r.layout == Heap && r.dtype == Float32:
		return float64(b.f32[offset])
	case r.layout == Heap:
		return b.f64[offset]
	case r.dtype == Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b.direct[offset*4:])))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(b.direct[offset*8:]))
	}
}

// store writes the element at a buffer element offset.
func (r *RawTensor) store(offset int, v float64) {
	b := r.buffer
	switch {
	case r.layout == Heap && r.dtype == Float32:
		b.f32[offset] = float32(v)
	case r.layout == Heap:
		b.f64[offset] = v
	case r.dtype == Float32:
		binary.LittleEndian.PutUint32(b.direct[offset*4:], math.Float32bits(float32(v)))
	default:
		binary.LittleEndian.PutUint64(b.direct[offset*8:], math.Float64bits(v))
	}
}

// Permute returns a view with axes reordered, sharing the buffer.
//
// Example:
//
//	col, _ := tensor.NewRaw(tensor.Shape{1, 1, 4, 4, 3, 3}, tensor.Float32, tensor.Heap)
//	// Column tensor stored with the output grid outermost.
//	view, _ := col.Permute(0, 1, 4, 5, 2, 3)
func (r *RawTensor) Permute(axes ...int) (*RawTensor, error) {
	shape, err := r.shape.Permute(axes...)
	if err != nil {
		return nil, err
	}
	stride := make([]int, len(axes))
	for i, axis := range axes {
		stride[i] = r.stride[axis]
	}
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: stride,
		dtype:  r.dtype,
		layout: r.layout,
		offset: r.offset,
	}, nil
}

// Slice returns a view restricted to [from, to) along axis, sharing the buffer.
func (r *RawTensor) Slice(axis, from, to int) (*RawTensor, error) {
	if axis < 0 || axis >= len(r.shape) {
		return nil, errors.Errorf("axis %d out of range for rank %d", axis, len(r.shape))
	}
	if from < 0 || to > r.shape[axis] || from >= to {
		return nil, errors.Errorf("invalid slice [%d, %d) of axis %d with size %d", from, to, axis, r.shape[axis])
	}
	shape := r.shape.Clone()
	shape[axis] = to - from
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		layout: r.layout,
		offset: r.offset + from*r.stride[axis],
	}, nil
}

// Release decrements the buffer's reference count and frees it when it reaches 0.
// Direct buffers are unmapped; the tensor must not be used afterwards.
func (r *RawTensor) Release() error {
	return r.buffer.release()
}

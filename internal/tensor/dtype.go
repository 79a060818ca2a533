// Package tensor provides the strided tensor views consumed by the Col2Im kernels.
package tensor

import "golang.org/x/exp/constraints"

// Float is the constraint for element types a tensor can hold.
type Float interface {
	constraints.Float
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt == Float32 || dt == Float64
}

// ParseDataType converts a name as returned by DataType.String back to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "float32", "f32":
		return Float32, true
	case "float64", "f64":
		return Float64, true
	}
	return 0, false
}

// Layout selects how a tensor's buffer is stored and addressed.
type Layout int

const (
	// Heap buffers are typed Go slices ([]float32 or []float64) indexed by element.
	Heap Layout = iota

	// Direct buffers are raw bytes living outside the Go heap (an anonymous
	// memory mapping), addressed by byte offset.
	Direct
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case Heap:
		return "heap"
	case Direct:
		return "direct"
	default:
		return "unknown"
	}
}

// ParseLayout converts a name as returned by Layout.String back to a Layout.
func ParseLayout(name string) (Layout, bool) {
	switch name {
	case "heap":
		return Heap, true
	case "direct":
		return Direct, true
	}
	return 0, false
}

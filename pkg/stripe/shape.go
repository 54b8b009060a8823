package stripe

import "fmt"

// ElemType is the scalar element type of a tensor.
type ElemType string

// The element types recognised by the pipeline. The front-end (out of
// scope) is responsible for producing well-typed IR; passes never change an
// element type.
const (
	Invalid ElemType = ""
	Int8    ElemType = "INT8"
	Int32   ElemType = "INT32"
	Int64   ElemType = "INT64"
	Float16 ElemType = "FLOAT16"
	Float32 ElemType = "FLOAT32"
	Float64 ElemType = "FLOAT64"
)

// ByteWidth returns the size in bytes of a single element of this type.
func (e ElemType) ByteWidth() int64 {
	switch e {
	case Int8:
		return 1
	case Float16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Dimension describes one axis of a TensorShape: its logical size (number of
// elements) and its stride (in elements, not bytes) within the containing
// buffer.
type Dimension struct {
	Size   int64
	Stride int64
}

// TensorShape describes the element type and per-dimension size/stride of a
// tensor view.
type TensorShape struct {
	Type ElemType
	Dims []Dimension
}

// Sizes returns the per-dimension element counts.
func (s TensorShape) Sizes() []int64 {
	out := make([]int64, len(s.Dims))
	for i, d := range s.Dims {
		out[i] = d.Size
	}
	return out
}

// ByteSize returns the total number of bytes spanned by a dense
// (stride-1-natural-order) layout of this shape's sizes, i.e. the number of
// bytes a scratchpad allocation of this shape requires.
func (s TensorShape) ByteSize() int64 {
	var elems int64 = 1
	for _, d := range s.Dims {
		elems *= d.Size
	}
	return elems * s.Type.ByteWidth()
}

// SimpleShape builds a dense TensorShape with the given per-dimension sizes,
// with strides assigned in natural (row-major, last dimension fastest)
// order and stride 1 for a size-1 trailing dimension.
func SimpleShape(elemType ElemType, sizes []int64) TensorShape {
	dims := make([]Dimension, len(sizes))
	stride := int64(1)
	for i := len(sizes) - 1; i >= 0; i-- {
		dims[i] = Dimension{Size: sizes[i], Stride: stride}
		stride *= sizes[i]
	}
	return TensorShape{Type: elemType, Dims: dims}
}

// Equal reports whether two shapes are structurally identical.
func (s TensorShape) Equal(o TensorShape) bool {
	if s.Type != o.Type || len(s.Dims) != len(o.Dims) {
		return false
	}
	for i := range s.Dims {
		if s.Dims[i] != o.Dims[i] {
			return false
		}
	}
	return true
}

// WithUnitSizes returns a copy of the shape with every dimension's size set
// to 1, keeping strides unchanged. This is used by the cache pass to
// describe the per-element shape moved by one iteration of a transfer loop.
func (s TensorShape) WithUnitSizes() TensorShape {
	dims := make([]Dimension, len(s.Dims))
	for i, d := range s.Dims {
		dims[i] = Dimension{Size: 1, Stride: d.Stride}
	}
	return TensorShape{Type: s.Type, Dims: dims}
}

func (s TensorShape) String() string {
	return fmt.Sprintf("%s%v", s.Type, s.Sizes())
}

// Package tensor is a minimal n-dimensional numeric array: a dtype, a shape,
// and a little-endian row-major buffer. It carries no math; it exists so
// documents can hold numeric payloads and move them across the wire.
package tensor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrUnknownDType = errors.New("tensor: unknown dtype")
	ErrBufferLength = errors.New("tensor: buffer length does not match shape")
	ErrShape        = errors.New("tensor: invalid shape")
)

// DType names an element type using numpy spelling.
type DType string

const (
	Bool    DType = "bool"
	Int8    DType = "int8"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Int64   DType = "int64"
	Uint8   DType = "uint8"
	Uint16  DType = "uint16"
	Uint32  DType = "uint32"
	Uint64  DType = "uint64"
	Float32 DType = "float32"
	Float64 DType = "float64"
)

var itemSizes = map[DType]int{
	Bool:    1,
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Uint8:   1,
	Uint16:  2,
	Uint32:  4,
	Uint64:  8,
	Float32: 4,
	Float64: 8,
}

// ItemSize returns the byte width of one element.
func (d DType) ItemSize() (int, error) {
	n, ok := itemSizes[d]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDType, string(d))
	}
	return n, nil
}

// ParseDType validates a dtype name.
func ParseDType(raw string) (DType, error) {
	d := DType(raw)
	if _, err := d.ItemSize(); err != nil {
		return "", err
	}
	return d, nil
}

// Tensor is an immutable view over its buffer; constructors copy input data.
type Tensor struct {
	dtype DType
	shape []int
	data  []byte
}

// New builds a tensor from a raw buffer.
func New(dtype DType, shape []int, data []byte) (*Tensor, error) {
	size, err := dtype.ItemSize()
	if err != nil {
		return nil, err
	}
	n, err := elements(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n*size {
		return nil, fmt.Errorf("%w: dtype=%s shape=%v want=%d got=%d", ErrBufferLength, dtype, shape, n*size, len(data))
	}
	return &Tensor{dtype: dtype, shape: slices.Clone(shape), data: bytes.Clone(data)}, nil
}

// Zeros builds a zero-filled tensor.
func Zeros(dtype DType, shape ...int) (*Tensor, error) {
	size, err := dtype.ItemSize()
	if err != nil {
		return nil, err
	}
	n, err := elements(shape)
	if err != nil {
		return nil, err
	}
	return &Tensor{dtype: dtype, shape: slices.Clone(shape), data: make([]byte, n*size)}, nil
}

// FromFloat64s builds a float64 tensor.
func FromFloat64s(shape []int, values []float64) (*Tensor, error) {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return New(Float64, shape, buf)
}

// FromFloat32s builds a float32 tensor.
func FromFloat32s(shape []int, values []float32) (*Tensor, error) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return New(Float32, shape, buf)
}

// FromInt64s builds an int64 tensor.
func FromInt64s(shape []int, values []int64) (*Tensor, error) {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return New(Int64, shape, buf)
}

func (t *Tensor) DType() DType { return t.dtype }

func (t *Tensor) Shape() []int { return slices.Clone(t.shape) }

// Size returns the element count.
func (t *Tensor) Size() int {
	n, _ := elements(t.shape)
	return n
}

// Bytes returns a copy of the raw buffer.
func (t *Tensor) Bytes() []byte { return bytes.Clone(t.data) }

// Float64s widens every element to float64.
func (t *Tensor) Float64s() []float64 {
	n := t.Size()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.at(i)
	}
	return out
}

func (t *Tensor) at(i int) float64 {
	b := t.data
	switch t.dtype {
	case Bool, Uint8:
		return float64(b[i])
	case Int8:
		return float64(int8(b[i]))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b[i*2:])))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(b[i*2:]))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b[i*4:])))
	case Uint32:
		return float64(binary.LittleEndian.Uint32(b[i*4:]))
	case Int64:
		return float64(int64(binary.LittleEndian.Uint64(b[i*8:])))
	case Uint64:
		return float64(binary.LittleEndian.Uint64(b[i*8:]))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	default:
		return math.NaN()
	}
}

// Equal reports identical dtype, shape and bytes.
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.dtype == o.dtype && slices.Equal(t.shape, o.shape) && bytes.Equal(t.data, o.data)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor(dtype=%s, shape=%v)", t.dtype, t.shape)
}

func elements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 || uint64(d) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %v", ErrShape, shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: %v overflows", ErrShape, shape)
		}
		n *= d
	}
	return n, nil
}

package tensor

import (
	"fmt"

	"github.com/danmuck/docwire/internal/protocol/wire"
)

// Encode converts t into its NdArrayProto payload.
func Encode(t *Tensor) *wire.Tensor {
	shape := make([]uint32, len(t.shape))
	for i, d := range t.shape {
		shape[i] = uint32(d)
	}
	return &wire.Tensor{DType: string(t.dtype), Shape: shape, Buffer: t.Bytes()}
}

// Decode rebuilds a tensor from its NdArrayProto payload.
func Decode(p *wire.Tensor) (*Tensor, error) {
	if p == nil {
		return nil, wire.ErrNilTensor
	}
	dtype, err := ParseDType(p.DType)
	if err != nil {
		return nil, fmt.Errorf("decode tensor: %w", err)
	}
	shape := make([]int, len(p.Shape))
	for i, d := range p.Shape {
		shape[i] = int(d)
	}
	t, err := New(dtype, shape, p.Buffer)
	if err != nil {
		return nil, fmt.Errorf("decode tensor: %w", err)
	}
	return t, nil
}

package tensor

import (
	"testing"

	"github.com/danmuck/docwire/internal/protocol/wire"
	"github.com/danmuck/docwire/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerosShapeAndSize(t *testing.T) {
	testlog.Start(t)
	z, err := Zeros(Float64, 3, 224, 224)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 224, 224}, z.Shape())
	assert.Equal(t, 3*224*224, z.Size())
	assert.Len(t, z.Bytes(), 3*224*224*8)
}

func TestNewRejectsBufferMismatch(t *testing.T) {
	testlog.Start(t)
	_, err := New(Float32, []int{2, 2}, make([]byte, 15))
	require.ErrorIs(t, err, ErrBufferLength)

	_, err = New("complex256", []int{1}, make([]byte, 32))
	require.ErrorIs(t, err, ErrUnknownDType)

	_, err = Zeros(Int8, 2, -1)
	require.ErrorIs(t, err, ErrShape)
}

func TestFloat64sWidensEveryDType(t *testing.T) {
	testlog.Start(t)
	f32, err := FromFloat32s([]int{3}, []float32{1.5, -2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 0}, f32.Float64s())

	i64, err := FromInt64s([]int{2}, []int64{-7, 9})
	require.NoError(t, err)
	assert.Equal(t, []float64{-7, 9}, i64.Float64s())

	i16, err := New(Int16, []int{1}, []byte{0xfe, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2}, i16.Float64s())
}

func TestConstructorsCopyInput(t *testing.T) {
	testlog.Start(t)
	raw := []byte{1, 2, 3, 4}
	x, err := New(Uint8, []int{4}, raw)
	require.NoError(t, err)
	raw[0] = 99
	assert.Equal(t, []float64{1, 2, 3, 4}, x.Float64s())
}

func TestCodecRoundTrip(t *testing.T) {
	testlog.Start(t)
	shapes := [][]int{{}, {0}, {5}, {3, 2}, {2, 1, 4}}
	for _, shape := range shapes {
		for dtype := range itemSizes {
			in, err := Zeros(dtype, shape...)
			require.NoError(t, err)
			out, err := Decode(Encode(in))
			require.NoError(t, err)
			assert.True(t, in.Equal(out), "dtype=%s shape=%v", dtype, shape)
		}
	}
}

func TestDecodeRejectsBadPayload(t *testing.T) {
	testlog.Start(t)
	_, err := Decode(&wire.Tensor{DType: "float16", Shape: []uint32{1}, Buffer: []byte{0, 0}})
	require.ErrorIs(t, err, ErrUnknownDType)

	_, err = Decode(&wire.Tensor{DType: "float64", Shape: []uint32{2}, Buffer: make([]byte, 8)})
	require.ErrorIs(t, err, ErrBufferLength)

	_, err = Decode(nil)
	require.ErrorIs(t, err, wire.ErrNilTensor)
}

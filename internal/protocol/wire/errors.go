package wire

import "errors"

var (
	ErrTruncated       = errors.New("wire: truncated data")
	ErrInvalidWireType = errors.New("wire: invalid wire type")
	ErrDuplicateField  = errors.New("wire: duplicate field name")
	ErrTooDeep         = errors.New("wire: message nesting too deep")
	ErrInvalidShape    = errors.New("wire: invalid tensor shape")
	ErrNilMessage      = errors.New("wire: nil message")
	ErrNilTensor       = errors.New("wire: nil tensor payload")
)

// Package docproto converts documents to and from the binary wire contract.
//
// ToWire and FromWire work on wire messages; Marshal and Unmarshal (and their
// Array forms) go straight to bytes. Decoding is driven by an explicit schema:
// document and chunks fields take their member schema from the declaration,
// never from the payload.
//
// Errors:
// - *UnsupportedFieldTypeError: a field value with no wire variant
// - *UnsupportedContentTypeError: a node with an unknown discriminant
// - *CyclicReferenceError: nesting deeper than Options.MaxDepth on encode
// - *FieldContextError: any other field failure, with the field path
//
// Construction errors from the target document are returned unchanged.
package docproto

// Package wire owns the binary document contract.
//
// Ownership boundary:
// - Message / Node / Tensor value types
// - protobuf-compatible encode and decode of those types
// - byte-level sentinel errors
//
// Field numbers follow the DocumentProto family:
//
//	DocumentProto      { map<string, NodeProto> data = 1 }
//	NodeProto          { oneof content { bytes blob = 1; NdArrayProto tensor = 2;
//	                     string text = 3; DocumentProto nested = 4;
//	                     DocumentArrayProto chunks = 5 } }
//	DocumentArrayProto { repeated DocumentProto docs = 1 }
//	NdArrayProto       { bytes buffer = 1; repeated uint32 shape = 2; string dtype = 3 }
package wire

package schema

// DefaultName is the schema of the general-purpose document.
const DefaultName = "Document"

// Builtin returns a registry holding Any and the general-purpose Document
// schema: an id, the common modalities, and two self-typed collections.
func Builtin() *Registry {
	reg := NewRegistry()
	if err := reg.Define(defaultDeclaration()); err != nil {
		panic(err)
	}
	return reg
}

func defaultDeclaration() *Schema {
	return New(DefaultName).
		Text("id").
		Text("text").
		Blob("blob").
		Tensor("tensor").
		Tensor("embedding").
		Chunks("chunks", DefaultName).
		Chunks("matches", DefaultName).
		Declaration()
}

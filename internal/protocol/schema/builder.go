package schema

// Builder declares a schema field by field, in declaration order.
//
//	article, err := schema.New("Article").
//		Text("title").
//		Text("body").
//		Tensor("thumbnail").
//		Chunks("sections", "Article").
//		Build(reg)
type Builder struct {
	s *Schema
}

// New starts a schema declaration.
func New(name string) *Builder {
	return &Builder{s: &Schema{Name: name}}
}

func (b *Builder) add(name string, kind Kind, ref string) *Builder {
	b.s.Fields = append(b.s.Fields, FieldSpec{Name: name, Kind: kind, Ref: ref})
	return b
}

func (b *Builder) Text(name string) *Builder   { return b.add(name, KindText, "") }
func (b *Builder) Blob(name string) *Builder   { return b.add(name, KindBlob, "") }
func (b *Builder) Tensor(name string) *Builder { return b.add(name, KindTensor, "") }

// Any declares a field that accepts every value kind. Sub-documents placed in
// it decode as schema Any, since the wire does not carry their schema.
func (b *Builder) Any(name string) *Builder { return b.add(name, KindAny, "") }

// Document declares a nested document field of schema ref. An empty ref
// accepts any sub-document, which then decodes as schema Any.
func (b *Builder) Document(name, ref string) *Builder { return b.add(name, KindDocument, ref) }

// Chunks declares a collection field whose members use schema ref.
func (b *Builder) Chunks(name, ref string) *Builder { return b.add(name, KindChunks, ref) }

// Required marks the most recently declared field as required.
func (b *Builder) Required() *Builder {
	if n := len(b.s.Fields); n > 0 {
		b.s.Fields[n-1].Required = true
	}
	return b
}

// Open lets instances carry undeclared fields.
func (b *Builder) Open() *Builder {
	b.s.Open = true
	return b
}

// Declaration returns the unresolved schema, for defining several schemas
// that reference each other in one Registry.Define call.
func (b *Builder) Declaration() *Schema {
	return b.s
}

// Build defines the schema in reg and returns it resolved.
func (b *Builder) Build(reg *Registry) (*Schema, error) {
	if err := reg.Define(b.s); err != nil {
		return nil, err
	}
	return b.s, nil
}

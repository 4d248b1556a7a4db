package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/docwire/internal/testutil/testlog"
)

func articleRegistry(t *testing.T) (*Registry, *Schema) {
	t.Helper()
	reg := NewRegistry()
	article, err := New("Article").
		Text("title").
		Text("body").
		Tensor("thumbnail").
		Chunks("sections", "Article").
		Build(reg)
	if err != nil {
		t.Fatalf("build article: %v", err)
	}
	return reg, article
}

func TestBuildResolvesSelfReference(t *testing.T) {
	testlog.Start(t)
	reg, article := articleRegistry(t)
	got, ok := reg.Resolve("Article")
	if !ok || got != article {
		t.Fatalf("resolve Article failed: ok=%v", ok)
	}
	nested, err := NestedSchema(article, "sections")
	if err != nil {
		t.Fatalf("nested schema: %v", err)
	}
	if nested != article {
		t.Fatalf("expected sections to resolve to Article, got %s", nested)
	}
}

func TestNestedSchemaRejectsScalarField(t *testing.T) {
	testlog.Start(t)
	_, article := articleRegistry(t)
	_, err := NestedSchema(article, "title")
	var re *ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolveError, got %v", err)
	}
	if re.Field != "title" || re.Schema != "Article" {
		t.Fatalf("unexpected resolve error: %+v", re)
	}
	if _, err := NestedSchema(article, "missing"); err == nil {
		t.Fatalf("expected error for undeclared field")
	}
}

func TestNestedSchemaOnAny(t *testing.T) {
	testlog.Start(t)
	got, err := NestedSchema(Any, "whatever")
	if err != nil {
		t.Fatalf("nested on Any: %v", err)
	}
	if got != Any {
		t.Fatalf("expected Any, got %s", got)
	}
	spec, ok := FieldType(Any, "x")
	if !ok || spec.Kind != KindAny {
		t.Fatalf("expected any-typed field, got %+v ok=%v", spec, ok)
	}
}

func TestDefineUnknownRefRegistersNothing(t *testing.T) {
	testlog.Start(t)
	reg := NewRegistry()
	good := New("Good").Text("a").Declaration()
	bad := New("Bad").Document("child", "Nope").Declaration()
	err := reg.Define(good, bad)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "child" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
	if _, ok := reg.Resolve("Good"); ok {
		t.Fatalf("expected Define to be atomic")
	}
}

func TestDefineRejectsBadDeclarations(t *testing.T) {
	testlog.Start(t)
	cases := map[string]*Schema{
		"duplicate field": New("Dup").Text("a").Blob("a").Declaration(),
		"bad field name":  New("Name").Text("1st").Declaration(),
		"bad schema name": New("has space").Declaration(),
		"ref on text":     {Name: "RefText", Fields: []FieldSpec{{Name: "a", Kind: KindText, Ref: "X"}}},
		"reserved":        {Name: AnyName},
	}
	for name, decl := range cases {
		if err := NewRegistry().Define(decl); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefineDuplicateSchema(t *testing.T) {
	testlog.Start(t)
	reg, _ := articleRegistry(t)
	_, err := New("Article").Text("x").Build(reg)
	if !errors.Is(err, ErrSchemaExists) {
		t.Fatalf("expected ErrSchemaExists, got %v", err)
	}
}

func TestBuiltinDefault(t *testing.T) {
	testlog.Start(t)
	reg := Builtin()
	def, ok := reg.Resolve(DefaultName)
	if !ok {
		t.Fatalf("expected builtin %s", DefaultName)
	}
	nested, err := NestedSchema(def, "chunks")
	if err != nil || nested != def {
		t.Fatalf("expected chunks to resolve to Document, got %v err=%v", nested, err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != AnyName || got[1] != DefaultName {
		t.Fatalf("unexpected names: %v", got)
	}
}

const yamlDecl = `
schemas:
  - name: Section
    fields:
      - {name: title, kind: text, required: true}
      - {name: image, kind: tensor}
  - name: Page
    open: true
    fields:
      - {name: title, kind: text}
      - {name: cover, kind: nested, ref: Section}
      - {name: sections, kind: chunks, ref: Section}
---
schemas:
  - name: Loose
    fields:
      - {name: payload, kind: any}
      - {name: members, kind: chunks}
`

func TestLoadYAMLMultiDocument(t *testing.T) {
	testlog.Start(t)
	reg := NewRegistry()
	if err := reg.LoadYAML([]byte(yamlDecl)); err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	page, ok := reg.Resolve("Page")
	if !ok || !page.Open {
		t.Fatalf("expected open Page schema")
	}
	section, _ := reg.Resolve("Section")
	if spec, _ := section.Field("title"); !spec.Required {
		t.Fatalf("expected Section.title to be required")
	}
	cover, err := NestedSchema(page, "cover")
	if err != nil || cover != section {
		t.Fatalf("expected cover -> Section, got %v err=%v", cover, err)
	}
	loose, _ := reg.Resolve("Loose")
	members, err := NestedSchema(loose, "members")
	if err != nil || members != Any {
		t.Fatalf("expected unref'd chunks -> Any, got %v err=%v", members, err)
	}
}

func TestLoadYAMLRejectsUnknownKind(t *testing.T) {
	testlog.Start(t)
	err := NewRegistry().LoadYAML([]byte("schemas:\n  - name: X\n    fields:\n      - {name: a, kind: integer}\n"))
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "a" {
		t.Fatalf("expected ValidationError on field a, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	if err := os.WriteFile(path, []byte(yamlDecl), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg := NewRegistry()
	if err := reg.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if err := reg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

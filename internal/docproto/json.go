package docproto

import (
	"bytes"
	"fmt"

	"github.com/danmuck/docwire/internal/document"
	"github.com/goccy/go-json"
)

// MaxJSONTensorElements caps how many tensor elements a JSON view inlines.
// Larger tensors are summarized by dtype, shape and size.
const MaxJSONTensorElements = 64

// JSONView is a read-only rendering of a document for humans and HTTP
// clients. Field order follows the document.
type JSONView struct {
	Schema string
	Fields []JSONField
}

type JSONField struct {
	Name  string
	Value any
}

type jsonTensor struct {
	DType string    `json:"dtype"`
	Shape []int     `json:"shape"`
	Size  int       `json:"size"`
	Data  []float64 `json:"data,omitempty"`
}

// View renders d as a JSONView.
func View(d *document.Document) JSONView {
	fields := d.Fields()
	out := JSONView{Schema: d.Schema().Name, Fields: make([]JSONField, 0, len(fields))}
	for _, f := range fields {
		out.Fields = append(out.Fields, JSONField{Name: f.Name, Value: viewValue(f.Value)})
	}
	return out
}

// MarshalJSON writes the view as an object: "$schema" first, then fields in
// document order.
func (v JSONView) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	name, err := json.Marshal(v.Schema)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"$schema":`)
	buf.Write(name)
	for _, f := range v.Fields {
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders d, indented when indent is set.
func MarshalJSON(d *document.Document, indent bool) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	if indent {
		return json.MarshalIndent(View(d), "", "  ")
	}
	return json.Marshal(View(d))
}

// MarshalArrayJSON renders every member of a as a JSON array.
func MarshalArrayJSON(a *document.Array, indent bool) ([]byte, error) {
	views := make([]JSONView, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		d := a.At(i)
		if d == nil {
			return nil, withField(indexElem(i), ErrNilDocument)
		}
		views = append(views, View(d))
	}
	if indent {
		return json.MarshalIndent(views, "", "  ")
	}
	return json.Marshal(views)
}

func viewValue(v document.Value) any {
	switch v.Kind() {
	case document.KindNull:
		return nil
	case document.KindText:
		s, _ := v.AsText()
		return s
	case document.KindBlob:
		b, _ := v.AsBlob()
		return b
	case document.KindTensor:
		t, _ := v.AsTensor()
		jt := jsonTensor{DType: string(t.DType()), Shape: t.Shape(), Size: t.Size()}
		if jt.Size <= MaxJSONTensorElements {
			jt.Data = t.Float64s()
		}
		return jt
	case document.KindNested:
		d, _ := v.AsDocument()
		return View(d)
	case document.KindChunks:
		a, _ := v.AsChunks()
		// Nil members render as null.
		out := make([]any, 0, a.Len())
		for i := 0; i < a.Len(); i++ {
			if d := a.At(i); d != nil {
				out = append(out, View(d))
			} else {
				out = append(out, nil)
			}
		}
		return out
	default:
		return v.String()
	}
}

package docproto

import (
	"bytes"
	"io"
	"testing"

	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/frame"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/danmuck/docwire/internal/tensor"
	"github.com/danmuck/docwire/internal/testutil/testlog"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTrip(t *testing.T) {
	testlog.Start(t)
	reg := schema.NewRegistry()
	s, err := schema.New("Article").
		Text("title").
		Text("body").
		Tensor("thumbnail").
		Chunks("sections", "Article").
		Build(reg)
	require.NoError(t, err)

	first := newArticle(t, s)
	loose, err := document.New(nil, field("note", document.Text("free-form")))
	require.NoError(t, err)
	arr := document.NewArray(s, newArticle(t, s))

	var buf bytes.Buffer
	w := NewWriter(&buf, frame.DefaultLimits())
	require.NoError(t, w.WriteDocument(first))
	require.NoError(t, w.WriteDocument(loose))
	require.NoError(t, w.WriteArray(arr))

	r := NewReader(&buf, reg, frame.DefaultLimits())
	item, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), item.ID)
	assert.Equal(t, frame.MessageDocument, item.Type)
	assert.Same(t, s, item.Schema)
	assert.True(t, first.Equal(item.Document))

	item, err = r.Next()
	require.NoError(t, err)
	assert.Same(t, schema.Any, item.Schema)
	assert.True(t, loose.Equal(item.Document))

	item, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, frame.MessageArray, item.Type)
	require.NotNil(t, item.Array)
	assert.True(t, arr.Equal(item.Array))

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamUnknownSchema(t *testing.T) {
	testlog.Start(t)
	s := articleSchema(t)
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, frame.DefaultLimits()).WriteDocument(newArticle(t, s)))
	data := buf.Bytes()

	_, err := NewReader(bytes.NewReader(data), schema.NewRegistry(), frame.DefaultLimits()).Next()
	assert.ErrorIs(t, err, ErrUnknownSchema)

	item, err := NewReader(bytes.NewReader(data), nil, frame.DefaultLimits()).WithSchema(schema.Any).Next()
	require.NoError(t, err)
	got, _ := item.Document.Get("title").AsText()
	assert.Equal(t, "A", got)
}

func TestJSONViewKeepsFieldOrder(t *testing.T) {
	testlog.Start(t)
	small, err := tensor.FromFloat64s([]int{2}, []float64{1.5, -2})
	require.NoError(t, err)
	big, err := tensor.Zeros(tensor.Uint8, 3, 224, 224)
	require.NoError(t, err)
	inner, err := document.New(nil, field("k", document.Text("v")))
	require.NoError(t, err)
	d, err := document.New(nil,
		field("zeta", document.Text("z")),
		field("alpha", document.Blob([]byte("hi"))),
		field("small", document.TensorValue(small)),
		field("big", document.TensorValue(big)),
		field("inner", document.Nested(inner)),
		field("none", document.Null()),
	)
	require.NoError(t, err)

	b, err := MarshalJSON(d, false)
	require.NoError(t, err)
	out := string(b)
	assert.Equal(t, 0, bytes.Index(b, []byte(`{"$schema":"AnyDocument","zeta":"z","alpha":"aGk="`)), out)
	assert.Contains(t, out, `"small":{"dtype":"float64","shape":[2],"size":2,"data":[1.5,-2]}`)
	assert.Contains(t, out, `"big":{"dtype":"uint8","shape":[3,224,224],"size":150528}`)
	assert.Contains(t, out, `"inner":{"$schema":"AnyDocument","k":"v"}`)
	assert.Contains(t, out, `"none":null`)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(b, &generic))
	assert.Len(t, generic, 7)
}

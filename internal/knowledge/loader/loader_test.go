package loader

import (
	"context"
	"io"
	"strings"
	"testing"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLoader(t *testing.T) {
	doc, err := NewTextLoader().Load(context.Background(), strings.NewReader("\ufeffHello world. Second line\xff."))
	require.NoError(t, err)

	assert.Equal(t, "Hello world. Second line\uFFFD.", doc.Content)
	assert.False(t, doc.Paginated())
	assert.Equal(t, "text", doc.Metadata["loader"])

	doc, err = NewTextLoader().Load(context.Background(), strings.NewReader("one\r\ntwo\rthree"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", doc.Content)
	assert.Equal(t, 14, doc.Metadata["bytes"])
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextLoader().Load(ctx, strings.NewReader("text"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewJSONLoader().Load(ctx, strings.NewReader(`{"a":1}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkdownLoader(t *testing.T) {
	md := "# Title\n\nSome *emphasis* and `code`.\n\n- one\n- two\n\nA &amp; B."
	doc, err := NewMarkdownLoader().Load(context.Background(), strings.NewReader(md))
	require.NoError(t, err)

	assert.NotContains(t, doc.Content, "<")
	assert.True(t, strings.HasPrefix(doc.Content, "Title"))
	assert.Contains(t, doc.Content, "Some emphasis and code.")
	assert.Contains(t, doc.Content, "one")
	assert.Contains(t, doc.Content, "two")
	assert.Contains(t, doc.Content, "A & B.")
	assert.NotContains(t, doc.Content, "\n\n\n")
}

func TestHTMLToPlainText(t *testing.T) {
	in := "<style>p{}</style><h2>Head</h2><p>Fish &amp; chips</p><script>x()</script><p>Two</p>"
	assert.Equal(t, "Head\n\nFish & chips\nTwo", htmlToPlainText(in))
	assert.Equal(t, "", htmlToPlainText("  <p> </p> "))
}

func TestJSONLoader(t *testing.T) {
	in := `{"name":"doc","tags":["a","b"],"meta":{"pages":3,"ok":true}}`
	doc, err := NewJSONLoader().Load(context.Background(), strings.NewReader(in))
	require.NoError(t, err)

	want := strings.Join([]string{
		"name: doc",
		"tags:",
		"  [0]: a",
		"  [1]: b",
		"meta:",
		"  pages: 3",
		"  ok: true",
	}, "\n")
	assert.Equal(t, want, doc.Content)
	assert.Equal(t, len(in), doc.Metadata["original_size"])
}

func TestJSONLoader_Scalar(t *testing.T) {
	doc, err := NewJSONLoader().Load(context.Background(), strings.NewReader(`"just text"`))
	require.NoError(t, err)
	assert.Equal(t, "just text", doc.Content)
}

func TestJSONLoader_Invalid(t *testing.T) {
	_, err := NewJSONLoader().Load(context.Background(), strings.NewReader(`{"broken":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestPDFLoader_InvalidData(t *testing.T) {
	_, err := NewPDFLoader().Load(context.Background(), strings.NewReader("not a pdf"))
	assert.Error(t, err)
}

func TestDOCXLoader_InvalidData(t *testing.T) {
	_, err := NewDOCXLoader().Load(context.Background(), strings.NewReader("not a docx"))
	assert.Error(t, err)
}

func TestSetDocxLicense_EmptyKeyIsNoop(t *testing.T) {
	assert.NoError(t, SetDocxLicense(""))
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "one\n\nthree", joinPages([]string{"one", "", "three"}))
	assert.Equal(t, "", joinPages(nil))
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	assert.Equal(t, []kbtypes.FileType{
		kbtypes.FileTypeDocx,
		kbtypes.FileTypeJson,
		kbtypes.FileTypeMd,
		kbtypes.FileTypePdf,
		kbtypes.FileTypeTxt,
	}, f.SupportedTypes())

	l, err := f.CreateLoader(kbtypes.FileTypeMd)
	require.NoError(t, err)
	assert.IsType(t, &MarkdownLoader{}, l)

	_, err = f.CreateLoader("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	doc, err := f.Load(context.Background(), kbtypes.FileTypeTxt, strings.NewReader("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", doc.Content)
}

type stubLoader struct{}

func (stubLoader) Load(context.Context, io.Reader) (*Document, error) {
	return &Document{Content: "stub"}, nil
}

func (stubLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeTxt}
}

func TestFactory_RegisterOverrides(t *testing.T) {
	f := NewFactory()
	f.Register(stubLoader{})

	doc, err := f.Load(context.Background(), kbtypes.FileTypeTxt, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "stub", doc.Content)
}

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/infra/storage"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExtractFile_PlainText(t *testing.T) {
	path := writeFile(t, "blob", []byte("hello"))

	out, err := New().ExtractFile(path, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExtractFile_ExtensionIsCaseInsensitive(t *testing.T) {
	path := writeFile(t, "blob.bin", []byte("upper"))

	out, err := New().ExtractFile(path, "NOTES.TXT")
	require.NoError(t, err)
	assert.Equal(t, "upper", out)
}

func TestExtract_InvalidUTF8IsReplaced(t *testing.T) {
	out, err := New().Extract(bytes.NewReader([]byte{'o', 'k', 0xff, 0xfe, '!'}), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok�!", out)
}

func TestExtract_EmptyIsNotAnError(t *testing.T) {
	out, err := New().Extract(bytes.NewReader(nil), "empty.txt")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"image.png", "archive.zip", "README", "doc.doc", "sheet.xlsx"} {
		_, err := New().Extract(strings.NewReader("data"), name)
		assert.ErrorIs(t, err, ai.ErrUnsupportedFormat, name)
	}
}

func TestExtractFile_MissingSource(t *testing.T) {
	_, err := New().ExtractFile(filepath.Join(t.TempDir(), "gone.txt"), "gone.txt")
	assert.ErrorIs(t, err, ai.ErrSourceNotFound)
}

// streamStore keeps bytes in memory and has no file paths.
type streamStore struct {
	data   map[string][]byte
	opened int
}

func (s *streamStore) Put(_ context.Context, key string, r io.Reader, _ int64) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.data[key] = b
	return nil
}

func (s *streamStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ai.ErrSourceNotFound, key)
	}
	s.opened++
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *streamStore) Remove(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func TestExtractStored_StreamingStore(t *testing.T) {
	ctx := context.Background()
	st := &streamStore{data: map[string][]byte{"k1": []byte("streamed text")}}

	out, err := New().ExtractStored(ctx, st, "k1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "streamed text", out)
	assert.Equal(t, 1, st.opened)

	_, err = New().ExtractStored(ctx, st, "missing", "a.txt")
	assert.ErrorIs(t, err, ai.ErrSourceNotFound)
}

func TestExtractStored_LocalStoreReadsFromDisk(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, local.Put(ctx, "doc/k2", strings.NewReader("on disk"), -1))

	out, err := New().ExtractStored(ctx, local, "doc/k2", "B.TXT")
	require.NoError(t, err)
	assert.Equal(t, "on disk", out)

	_, err = New().ExtractStored(ctx, local, "doc/gone", "b.txt")
	assert.ErrorIs(t, err, ai.ErrSourceNotFound)
}

func TestExtract_DOCXParagraphsInOrder(t *testing.T) {
	data := buildDOCX(t, []string{"First paragraph", "", "Third one"})

	out, err := New().Extract(bytes.NewReader(data), "Report.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\n\nThird one", out)
}

func TestExtract_DOCXTextBoxNotDuplicated(t *testing.T) {
	box := `<w:txbxContent><w:p><w:r><w:t>BOX</w:t></w:r></w:p></w:txbxContent>`
	body := `<w:p><w:r><w:t>Intro</w:t></w:r><w:r><mc:AlternateContent>` +
		`<mc:Choice Requires="wps"><w:drawing><wps:txbx>` + box + `</wps:txbx></w:drawing></mc:Choice>` +
		`<mc:Fallback><w:pict><v:shape><v:textbox>` + box + `</v:textbox></v:shape></w:pict></mc:Fallback>` +
		`</mc:AlternateContent></w:r></w:p>` +
		`<w:p><w:r><w:t>Outro</w:t></w:r></w:p>`

	out, err := New().Extract(bytes.NewReader(zipDOCX(t, body)), "boxed.docx")
	require.NoError(t, err)
	assert.Equal(t, "Intro\nOutro", out)
}

func TestExtract_DOCXSkipsTableParagraphs(t *testing.T) {
	body := `<w:p><w:r><w:t>Before</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>After</w:t><w:tab/><w:t>tabbed</w:t><w:br/><w:t>broken</w:t></w:r></w:p>`

	out, err := New().Extract(bytes.NewReader(zipDOCX(t, body)), "table.docx")
	require.NoError(t, err)
	assert.Equal(t, "Before\nAfter\ttabbed\nbroken", out)
}

func TestExtract_DOCXWithoutDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<x/>"))
	require.NoError(t, zw.Close())

	_, err = New().Extract(bytes.NewReader(buf.Bytes()), "broken.docx")
	assert.Error(t, err)
}

func TestExtract_PDFPagesJoinedInOrder(t *testing.T) {
	data := buildPDF([]string{"Alpha page", "Beta page"})

	out, err := New().Extract(bytes.NewReader(data), "scan.pdf")
	require.NoError(t, err)

	a := strings.Index(out, "Alpha page")
	b := strings.Index(out, "Beta page")
	require.GreaterOrEqual(t, a, 0, out)
	require.Greater(t, b, a, out)
	assert.Contains(t, out[a:b], "\n")
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("x.PDF"))
	assert.True(t, Supports("x.docx"))
	assert.False(t, Supports("x.md"))
	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, SupportedExtensions())
}

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		if p == "" {
			body.WriteString(`<w:p/>`)
			continue
		}
		// split into two runs to check run concatenation
		half := len(p) / 2
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p[:half], p[half:])
	}
	return zipDOCX(t, body.String())
}

// zipDOCX wraps body XML in a w:document and packs it as word/document.xml.
func zipDOCX(t *testing.T, body string) []byte {
	t.Helper()
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"` +
		` xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"` +
		` xmlns:v="urn:schemas-microsoft-com:vml"><w:body>` +
		body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a minimal single-font PDF with one text line per page and a
// correct xref table.
func buildPDF(pages []string) []byte {
	n := len(pages)
	fontObj := 3 + 2*n
	objs := make([]string, 0, fontObj)

	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

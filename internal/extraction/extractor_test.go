package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"hirelens/internal/errors"
	"hirelens/internal/types"
	"hirelens/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Kind
	}{
		{"pdf content type", "upload", utils.ContentTypePDF, KindPDF},
		{"docx content type", "upload", utils.ContentTypeDOCX, KindDOCX},
		{"text with charset", "upload", "text/plain; charset=utf-8", KindText},
		{"markdown extension", "cv.md", "", KindText},
		{"docx extension", "cv.DOCX", "", KindDOCX},
		{"octet stream falls back to extension", "cv.txt", "application/octet-stream", KindText},
		{"unknown defaults to pdf", "cv.bin", "application/octet-stream", KindPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.filename, tt.contentType))
		})
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor(nil)
	file := types.ResumeFile{
		Filename: "jane.txt",
		Data:     []byte("Jane Doe\nhttps://linkedin.com/in/janedoe\nhttps://github.com/janedoe\n"),
	}

	doc, err := e.Extract(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, KindText, doc.Kind)
	assert.Equal(t, string(file.Data), doc.Text)
	require.Len(t, doc.Links, 2)
	assert.Equal(t, "https://linkedin.com/in/janedoe", doc.Contact().LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", doc.Contact().GitHub)
	assert.Contains(t, doc.Augmented(), "Discovered links:")
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(nil)
	file := types.ResumeFile{
		Filename: "jane.md",
		Data:     []byte("# Jane\njane@example.com https://github.com/jane"),
	}

	first, err := e.Extract(context.Background(), file)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Links, second.Links)
}

func TestExtract_BlankTextIsExtractionError(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), types.ResumeFile{Filename: "blank.txt", Data: []byte(" \n\t ")})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExtraction))
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyDocument))
}

func TestExtract_InvalidUTF8Sanitised(t *testing.T) {
	e := NewExtractor(nil)
	data := append([]byte("Jane "), 0xff, 0xfe)
	data = append(data, []byte("Doe")...)

	doc, err := e.Extract(context.Background(), types.ResumeFile{Filename: "jane.txt", Data: data})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Text)
}

func TestExtract_CorruptPDF(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), types.ResumeFile{
		Filename:    "broken.pdf",
		Data:        []byte("this is not a pdf"),
		ContentType: utils.ContentTypePDF,
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExtraction))
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
}

func TestExtract_UnknownTypeReadAsPDF(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), types.ResumeFile{Filename: "resume.bin", Data: []byte("plain words")})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
}

func TestExtract_CancelledContext(t *testing.T) {
	e := NewExtractor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, types.ResumeFile{Filename: "a.txt", Data: []byte("text")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_DOCX(t *testing.T) {
	e := NewExtractor(nil)
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Skills: Go &amp; Python</w:t></w:r></w:p>`)

	doc, err := e.Extract(context.Background(), types.ResumeFile{Filename: "jane.docx", Data: data})

	require.NoError(t, err)
	assert.Equal(t, KindDOCX, doc.Kind)
	assert.Contains(t, doc.Text, "Jane Doe\n")
	assert.Contains(t, doc.Text, "Skills: Go & Python")
	assert.NotContains(t, doc.Text, "<w:")
}

func TestDocxPlainText(t *testing.T) {
	xml := `<w:body><w:p><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t></w:r></w:p><w:p><w:r><w:t>C</w:t><w:br/><w:t>D</w:t></w:r></w:p></w:body>`
	assert.Equal(t, "A\tB\nC\nD\n", docxPlainText(xml))
}

// buildDocx assembles a minimal WordprocessingML package around body
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

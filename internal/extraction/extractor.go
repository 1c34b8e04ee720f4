package extraction

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"hirelens/internal/errors"
	"hirelens/internal/types"
	"hirelens/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Kind is the document backend chosen for a file
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "text"
)

// Document is the text layer of one resume plus the links found in it
type Document struct {
	Text  string
	Links []Link
	Kind  Kind
}

// Augmented returns the text with its link listing appended
func (d *Document) Augmented() string {
	return AugmentText(d.Text, d.Links)
}

// Contact returns the contact block derived from the document's links
func (d *Document) Contact() types.Contact {
	return ContactFromLinks(d.Links)
}

// Extractor turns uploaded resume bytes into plain text
type Extractor struct {
	logger *errors.Logger
}

// NewExtractor creates a new extractor instance
func NewExtractor(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// DetectKind picks a backend from the content type, then the extension.
// Anything unrecognised is read as PDF.
func DetectKind(filename, contentType string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case ct == utils.ContentTypePDF:
		return KindPDF
	case ct == utils.ContentTypeDOCX:
		return KindDOCX
	case strings.HasPrefix(ct, "text/"):
		return KindText
	}

	switch utils.ContentTypeFor(filename) {
	case utils.ContentTypeDOCX:
		return KindDOCX
	case utils.ContentTypeText:
		return KindText
	default:
		return KindPDF
	}
}

// Extract reads the text layer of file and discovers its links.
// A backend failure or a blank result is an extraction error.
func (e *Extractor) Extract(ctx context.Context, file types.ResumeFile) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracer := otel.Tracer("hirelens.extraction")
	_, span := tracer.Start(ctx, "extraction.extract")
	defer span.End()

	kind := DetectKind(file.Filename, file.ContentType)
	span.SetAttributes(
		attribute.String("document.filename", file.Filename),
		attribute.String("document.kind", string(kind)),
		attribute.Int("document.size", len(file.Data)),
	)

	var (
		text string
		err  error
	)
	switch kind {
	case KindDOCX:
		text, err = extractDOCX(file.Data)
	case KindText:
		text = string(file.Data)
	default:
		text, err = extractPDF(file.Data)
	}
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Failed to extract text from %s", file.Filename), err).
			WithContext("filename", file.Filename).
			WithContext("kind", string(kind))
	}

	text = strings.ToValidUTF8(text, "")
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewExtractionError(errors.ErrCodeEmptyDocument,
			fmt.Sprintf("No text content found in %s", file.Filename), nil).
			WithContext("filename", file.Filename).
			WithContext("kind", string(kind))
	}

	links := DiscoverLinks(text)
	span.SetAttributes(
		attribute.Int("document.text_length", len(text)),
		attribute.Int("document.links", len(links)),
	)

	if e.logger != nil {
		e.logger.Debug("Extracted resume text",
			"filename", file.Filename,
			"kind", kind,
			"characters", len(text),
			"links", len(links))
	}

	return &Document{Text: text, Links: links, Kind: kind}, nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

// docxPlainText flattens WordprocessingML into lines of text
func docxPlainText(content string) string {
	content = docxParagraphEnd.ReplaceAllStringFunc(content, func(tag string) string {
		if strings.HasPrefix(tag, "<w:tab") {
			return "\t"
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

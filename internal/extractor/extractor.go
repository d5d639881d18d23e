package extractor

import (
	"mime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor converts a document buffer to plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Func adapts a plain function to Extractor.
type Func func(data []byte) (string, error)

func (f Func) Extract(data []byte) (string, error) {
	return f(data)
}

// Format pairs a canonical MIME type with its extractor.
type Format struct {
	Name      string
	MIMEType  string
	Extractor Extractor
}

// Registry dispatches on declared MIME type.
type Registry struct {
	formats map[string]Format
}

// NewRegistry returns a registry with the PDF and DOCX extractors.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Format)}
	r.Register(Format{Name: "PDF", MIMEType: MIMEPDF, Extractor: Func(ExtractPDF)})
	r.Register(Format{Name: "DOCX", MIMEType: MIMEDOCX, Extractor: Func(ExtractDOCX)})
	return r
}

func (r *Registry) Register(f Format) {
	r.formats[f.MIMEType] = f
}

// Lookup resolves a declared content type, tolerating parameters and the
// DOCX variants some browsers send.
func (r *Registry) Lookup(contentType string) (Format, bool) {
	f, ok := r.formats[NormalizeContentType(contentType)]
	return f, ok
}

// NormalizeContentType lowercases, strips parameters and folds DOCX aliases
// onto MIMEDOCX.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	if isDOCXContentType(mediaType) {
		return MIMEDOCX
	}
	return mediaType
}

// isDOCXContentType checks if the content type is a DOCX file
// Handles various DOCX MIME type variations
func isDOCXContentType(contentType string) bool {
	switch contentType {
	case MIMEDOCX,
		"application/vnd.openxmlformats-officedocument.wordprocessingml",
		"application/docx",
		"application/x-docx":
		return true
	}
	return false
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(norm.NFC.String(text))
}

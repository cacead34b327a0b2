package resume

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/pkg/errors"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeDOC  = "application/doc"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrExtraction        = errors.New("error extracting text from resume")
)

// zip local file header, the container format of .docx
var zipMagic = []byte("PK\x03\x04")

// Document is an uploaded resume. It lives for one processing cycle.
type Document struct {
	Filename  string
	MediaType string
	Data      []byte
}

// ExtractionError reports a parser failure on an otherwise supported document.
type ExtractionError struct {
	Filename  string
	MediaType string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s (file:%s, type:%s): %v", ErrExtraction, e.Filename, e.MediaType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindWord
)

// DetectKind classifies a declared media type by substring, pdf first.
func DetectKind(mediaType string) Kind {
	mt := strings.ToLower(mediaType)
	switch {
	case strings.Contains(mt, "pdf"):
		return KindPDF
	case strings.Contains(mt, "docx"), strings.Contains(mt, "doc"):
		return KindWord
	default:
		return KindUnknown
	}
}

// MediaTypeFromFilename guesses the declared type for local files.
func MediaTypeFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".docx":
		return MediaTypeDOCX
	case ".doc":
		return MediaTypeDOC
	default:
		return "application/octet-stream"
	}
}

// ExtractText converts doc into cleaned plain text.
// It returns ErrUnsupportedFormat for unknown media types and an *ExtractionError
// when the parser fails. Both leave text empty.
func ExtractText(doc Document) (text string, err error) {
	kind := DetectKind(doc.MediaType)
	if kind == KindUnknown {
		err = errors.Wrapf(ErrUnsupportedFormat, "%s", doc.MediaType)
		return text, err
	}

	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Filename: doc.Filename, MediaType: doc.MediaType, Err: errors.Errorf("parser panic: %v", r)}
		}
	}()

	var raw string
	switch kind {
	case KindPDF:
		raw, err = extractPDFText(doc.Data)
	case KindWord:
		raw, err = extractWordText(doc.Data)
	}
	if err != nil {
		err = &ExtractionError{Filename: doc.Filename, MediaType: doc.MediaType, Err: err}
		return "", err
	}

	text = CleanText(raw)
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to read pdf")
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read page %d", i)
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractWordText(data []byte) (string, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return extractDocxText(data)
	}
	return extractLegacyDocText(data)
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse docx")
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText pulls the visible text out of word/document.xml.
func documentXMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.Strict = false

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to decode document xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func extractLegacyDocText(data []byte) (string, error) {
	text, _, err := docconv.ConvertDoc(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to convert doc")
	}
	return text, nil
}

package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const mimePDF = "application/pdf"

// Normalizer turns an uploaded document into plain text.
type Normalizer struct {
	// MaxBytes bounds how much of the upload is read; 0 means unbounded.
	MaxBytes int64
}

// ReadPDF reads the whole document from r and returns its text.
func (n *Normalizer) ReadPDF(r io.Reader) (string, error) {
	if n.MaxBytes > 0 {
		r = io.LimitReader(r, n.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &DocumentParseError{Reason: "reading upload", Err: err}
	}
	if n.MaxBytes > 0 && int64(len(data)) > n.MaxBytes {
		return "", &DocumentParseError{Reason: fmt.Sprintf("document larger than %d bytes", n.MaxBytes)}
	}
	return PDFText(data)
}

// PDFText concatenates the embedded text of every page in page order, one
// line break between pages. Image-only pages contribute nothing; there is no
// OCR.
func PDFText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &DocumentParseError{Reason: "empty document"}
	}
	if mt := mimetype.Detect(data); !mt.Is(mimePDF) {
		return "", &DocumentParseError{Reason: "unsupported document type " + mt.String()}
	}

	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &DocumentParseError{Reason: "malformed pdf", Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DocumentParseError{Reason: "malformed pdf", Err: err}
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", &DocumentParseError{Reason: fmt.Sprintf("page %d not found", i)}
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &DocumentParseError{
				Reason: fmt.Sprintf("page %d", i),
				Err:    errors.Wrap(err, "extracting text"),
			}
		}
		if i > 1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pageText)
	}

	// NFKC folds the ligatures and full-width forms PDF producers like to emit
	return norm.NFKC.String(sb.String()), nil
}

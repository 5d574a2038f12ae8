package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/charlabot/charla/core"
)

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	// Extract returns the plain text of the document.
	Extract(data []byte) (string, error)
}

// PDFExtractor implements TextExtractor for PDF documents.
type PDFExtractor struct {
	logger *slog.Logger
}

var _ TextExtractor = (*PDFExtractor)(nil)

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{logger: slog.Default().With("component", "pdf-extractor")}
}

// Extract pulls the plain text out of a PDF document.
func (e *PDFExtractor) Extract(data []byte) (text string, err error) {
	// The pdf parser panics on some malformed xref tables instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: parser panic: %v", core.ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}

	var b bytes.Buffer
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}

	e.logger.Debug("extracted pdf text", "bytes", len(data), "textLength", b.Len())
	return b.String(), nil
}

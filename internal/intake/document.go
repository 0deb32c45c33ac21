package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// PDFContentType is the only accepted upload type.
const PDFContentType = "application/pdf"

// ErrNotPDF is returned for uploads that do not sniff as PDF.
var ErrNotPDF = errors.New("Please upload a valid PDF file.")

// Document is a lab report selected for upload.
type Document struct {
	Filename string
	Data     []byte
}

// NewDocument wraps in-memory report bytes, rejecting non-PDF content.
func NewDocument(filename string, data []byte) (*Document, error) {
	if !mimetype.Detect(data).Is(PDFContentType) {
		return nil, ErrNotPDF
	}
	if filename == "" {
		filename = "report.pdf"
	}
	return &Document{Filename: filename, Data: data}, nil
}

// OpenDocument reads a report from disk.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return NewDocument(filepath.Base(path), data)
}

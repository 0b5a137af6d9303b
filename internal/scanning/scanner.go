package scanning

import "errors"

// ErrUnsupportedFormat is returned when an upload cannot be turned into an image or text
var ErrUnsupportedFormat = errors.New("unsupported format")

// Scanner defines the interface for turning an uploaded document into OCR text
type Scanner interface {
	// ScanText reads all text printed on a label or receipt image/PDF
	ScanText(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}

package scanning

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Plaintext implements Scanner for uploads that already are text, such as
// OCR output exported from another tool
type Plaintext struct{}

// NewPlaintext creates a new Plaintext scanner
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// ScanText returns the upload as text. Binary data is rejected.
func (p *Plaintext) ScanText(data []byte, contentType string) (string, error) {
	if !isTextMimeType(contentType) && contentType != "" {
		return "", fmt.Errorf("%s is not text: %w", contentType, ErrUnsupportedFormat)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("upload is not valid UTF-8: %w", ErrUnsupportedFormat)
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), nil
}

// Close is a no-op
func (p *Plaintext) Close() error {
	return nil
}

// Router sends text uploads to the plaintext reader and everything else to
// an image scanner. A nil image scanner makes image uploads unsupported.
type Router struct {
	Text  Scanner
	Image Scanner
}

// NewRouter creates a Router around an optional image scanner
func NewRouter(image Scanner) *Router {
	return &Router{Text: NewPlaintext(), Image: image}
}

// ScanText dispatches on the content type
func (r *Router) ScanText(data []byte, contentType string) (string, error) {
	if isTextMimeType(contentType) {
		return r.Text.ScanText(data, contentType)
	}
	if r.Image == nil {
		return "", fmt.Errorf("no image scanner configured for %s: %w", contentType, ErrUnsupportedFormat)
	}
	return r.Image.ScanText(data, contentType)
}

// Close closes both scanners
func (r *Router) Close() error {
	if r.Image != nil {
		if err := r.Image.Close(); err != nil {
			return err
		}
	}
	return r.Text.Close()
}

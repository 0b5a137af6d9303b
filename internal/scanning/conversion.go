package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// heifBrands are the ISO BMFF major brands used by HEIC/HEIF photos
var heifBrands = map[string]bool{"heic": true, "heix": true, "heif": true, "mif1": true, "msf1": true}

// renderPDF rasterizes the first page. Labels and receipts fit on one page.
func renderPDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages: %w", ErrUnsupportedFormat)
	}
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// decodeImage picks a decoder from the MIME type and the leading bytes
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	switch {
	case mimeType == "application/pdf":
		return renderPDF(data)
	case isHEICFormat(data) || isHEICMimeType(mimeType):
		// iPhone photos; the standard library has no HEIF decoder
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF, plain text)", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat looks for an ftyp box with a HEIF brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	return heifBrands[string(data[8:12])]
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// isTextMimeType reports whether the upload is already text
func isTextMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(mimeType, "text/")
}

// convertToPNG returns PNG data for any supported upload and whether it had
// to be re-encoded. PNG input is passed through untouched.
func convertToPNG(data []byte, mimeType string) ([]byte, bool, error) {
	switch {
	case len(data) == 0:
		return nil, false, fmt.Errorf("empty upload: %w", ErrUnsupportedFormat)
	case isTextMimeType(mimeType):
		return nil, false, fmt.Errorf("%s is text, not an image: %w", mimeType, ErrUnsupportedFormat)
	case mimeType == "image/png" && !isHEICFormat(data):
		return data, false, nil
	}

	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), true, nil
}

// prepareImageData returns the upload as PNG, ready for a vision model.
// A missing or generic content type is sniffed from the data.
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(imageData)
	}

	pngData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, err
	}
	if converted {
		slog.Debug("converted upload to PNG", "from", mimeType, "size", len(imageData), "png_size", len(pngData))
	}
	return pngData, nil
}

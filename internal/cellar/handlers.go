package cellar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/scanning"
)

// maxUploadSize covers high-resolution phone photos
const maxUploadSize = int64(50 << 20)

// maxTextSize bounds text submitted directly
const maxTextSize = int64(1 << 20)

type textRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoFile):
		return http.StatusNotFound
	case errors.Is(err, scanning.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrEmptyText):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// parseOverride reads an optional document type; "" leaves the decision to the classifier
func parseOverride(s string) (document.Type, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, ok := document.ParseType(s)
	if !ok {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// readTextRequest accepts either a JSON body or plain text with the type in the query
func readTextRequest(r *http.Request) (textRequest, error) {
	var req textRequest
	body := http.MaxBytesReader(nil, r.Body, maxTextSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		data, err := io.ReadAll(body)
		if err != nil {
			return req, fmt.Errorf("reading body: %w", err)
		}
		req.Text = string(data)
		req.Type = r.URL.Query().Get("type")
		return req, nil
	}

	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// contentTypeFor falls back to the file extension when the part has no Content-Type
func contentTypeFor(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".txt":
		return "text/plain"
	}
	return "application/octet-stream"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListRecords returns a list of all records
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRecords()
	if err != nil {
		slog.Error("Error listing records", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleUpload handles a label or receipt photo upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	override, err := parseOverride(r.FormValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)
	record, err := s.service.ProcessUpload(header.Filename, data, contentType, override)
	if err != nil {
		slog.Error("Error processing upload", "filename", header.Filename, "error", err)
		code := statusFor(err)
		if code == http.StatusInternalServerError && errors.Is(err, ErrScanFailed) {
			code = http.StatusBadGateway
		}
		writeError(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// handleSubmitText stores a record built from already transcribed text
func (s *Server) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	req, err := readTextRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	override, err := parseOverride(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.service.ProcessText(req.Text, override)
	if err != nil {
		slog.Error("Error processing text", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// handleClassify runs the pipeline on text without storing it
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, err := readTextRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	override, err := parseOverride(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.service.Preview(req.Text, override))
}

// handleGetRecord returns a single record
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.GetRecord(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "Record not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleGetRecordFile returns the uploaded file for a record
func (s *Server) handleGetRecordFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetRecordFile(r.PathValue("id"))
	if err != nil {
		if statusFor(err) != http.StatusNotFound {
			slog.Error("Error reading record file", "id", r.PathValue("id"), "error", err)
		}
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleReclassify reruns a record as the requested type
func (s *Server) handleReclassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t, ok := document.ParseType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown document type %q", req.Type))
		return
	}

	record, err := s.service.Reclassify(r.PathValue("id"), t)
	if err != nil {
		slog.Error("Error reclassifying record", "id", r.PathValue("id"), "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleDeleteRecord deletes a record
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRecord(r.PathValue("id")); err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			slog.Error("Error deleting record", "id", r.PathValue("id"), "error", err)
		}
		writeError(w, code, "Error deleting record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport downloads every stored wine as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="wines.xlsx"`)
	if err := s.service.ExportXLSX(w); err != nil {
		slog.Error("Error exporting records", "error", err)
		w.Header().Del("Content-Disposition")
		writeError(w, http.StatusInternalServerError, "Error exporting records")
	}
}

package cellar

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/pipeline"
	"github.com/nukk-pain/wine-sub001/internal/scanning"
)

var (
	// ErrEmptyText is returned when there is no text to process
	ErrEmptyText = errors.New("no text to process")

	// ErrNoFile is returned for records that were submitted as text
	ErrNoFile = errors.New("record has no file")

	// ErrScanFailed wraps every error returned by the scanner
	ErrScanFailed = errors.New("scanning document")
)

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles record operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	pipeline    *pipeline.Pipeline
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, p *pipeline.Pipeline) *Service {
	return NewServiceWithDeps(db, scanner, storage, p, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, p *pipeline.Pipeline, idGen IDGenerator, timeSrc TimeSource) *Service {
	if p == nil {
		p = pipeline.New(nil, nil)
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		pipeline:    p,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\pL\pN\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))

	// truncate on rune boundaries so Korean names stay valid UTF-8
	if runes := []rune(base); len(runes) > 50 {
		base = strings.TrimSpace(string(runes[:50]))
	}

	if base == "" {
		base = "document"
	}
	return base + ext
}

// ProcessUpload stores an uploaded photo or file, reads its text and runs the pipeline.
// override forces the document type; pass "" to let the classifier decide.
func (s *Service) ProcessUpload(filename string, data []byte, contentType string, override document.Type) (*Record, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	text, err := s.scanner.ScanText(data, contentType)
	if err != nil {
		slog.Error("Failed to scan document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	record := &Record{
		ID:          id,
		Text:        text,
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	record.apply(s.pipeline.Run(text, override))

	if err := s.db.SaveRecord(record); err != nil {
		s.removeFile(savedPath)
		return nil, fmt.Errorf("saving record to database: %w", err)
	}

	slog.Info("Processed upload",
		"id", id,
		"type", record.Type,
		"confidence", record.Classification.Confidence,
		"wines", len(record.Wines),
		"needs_review", record.NeedsReview,
	)
	return record, nil
}

// ProcessText runs already transcribed text through the pipeline and stores the result
func (s *Service) ProcessText(text string, override document.Type) (*Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := s.timeSource.Now()
	record := &Record{
		ID:        s.idGenerator.Generate(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record.apply(s.pipeline.Run(text, override))

	if err := s.db.SaveRecord(record); err != nil {
		return nil, fmt.Errorf("saving record to database: %w", err)
	}
	return record, nil
}

// Preview runs the pipeline without storing anything
func (s *Service) Preview(text string, override document.Type) pipeline.Result {
	return s.pipeline.Run(text, override)
}

// Reclassify reruns the stored text as the given type and saves the new result
func (s *Service) Reclassify(id string, t document.Type) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	record.apply(s.pipeline.Run(record.Text, t))
	record.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveRecord(record); err != nil {
		return nil, fmt.Errorf("saving record to database: %w", err)
	}
	return record, nil
}

// GetRecord retrieves a record by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// ListRecords returns all records, newest first
func (s *Service) ListRecords() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteRecord removes a record and its file
func (s *Service) DeleteRecord(id string) error {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return fmt.Errorf("getting record for deletion: %w", err)
	}

	if record.Filename != "" {
		s.removeFile(record.Filename)
	}

	if err := s.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("deleting record from database: %w", err)
	}
	return nil
}

// GetRecordFile retrieves the uploaded file for a record
func (s *Service) GetRecordFile(id string) ([]byte, string, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting record: %w", err)
	}
	if record.Filename == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrNoFile, id)
	}

	data, err := s.storage.Get(record.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting record file: %w", err)
	}
	return data, record.ContentType, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

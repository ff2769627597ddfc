package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/pkg/cache"
	"github.com/dmitrymomot/scheduled/pkg/csvimport"
	"github.com/dmitrymomot/scheduled/pkg/sanitizer"
)

type AppointmentStore interface {
	InsertBatch(ctx context.Context, businessID string, importID uuid.UUID, appts []repository.NewAppointment) (int64, error)
}

// Archive keeps a copy of each uploaded file. Implemented by *storage.S3.
type Archive interface {
	ArchiveKey(businessID, importID, filename string) string
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// ImportSession is a parsed upload waiting for the user to commit it.
type ImportSession struct {
	CreatedAt    time.Time               `json:"created_at"`
	BusinessID   string                  `json:"business_id"`
	Filename     string                  `json:"filename"`
	ArchiveKey   string                  `json:"archive_key,omitempty"`
	Appointments []csvimport.Appointment `json:"appointments"`
	ID           uuid.UUID               `json:"id"`
}

type importResponse struct {
	ExpiresAt time.Time         `json:"expires_at"`
	Mapping   csvimport.Mapping `json:"mapping"`
	Preview   csvimport.Preview `json:"preview"`
	Filename  string            `json:"filename"`
	Unmapped  []string          `json:"unmapped"`
	Skipped   int               `json:"skipped"`
	ImportID  uuid.UUID         `json:"import_id"`
}

type commitResponse struct {
	Errors   []string  `json:"errors"`
	Imported int64     `json:"imported"`
	Rejected int       `json:"rejected"`
	ImportID uuid.UUID `json:"import_id"`
}

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

var uploadFormats = map[string]string{
	".csv":  formatCSV,
	".txt":  formatCSV,
	"":      formatCSV,
	".xlsx": formatXLSX,
}

var contentTypes = map[string]string{
	formatCSV:  "text/csv",
	formatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (s *Server) createImport(w http.ResponseWriter, r *http.Request) error {
	businessID := chi.URLParam(r, "businessID")

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large", WithErrorCode("file_too_large"))
		}
		return ErrBadRequest(`multipart field "file" is required`, WithErrorCode("missing_file"), WithError(err))
	}
	defer file.Close()

	format, ok := uploadFormats[strings.ToLower(filepath.Ext(header.Filename))]
	if !ok {
		return ErrUnsupportedMediaType("only .csv and .xlsx files are supported", WithErrorCode("unsupported_file_type"))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return ErrBadRequest("failed to read upload", WithError(err))
	}

	rows, err := parseUpload(format, data)
	if err != nil {
		return err
	}

	result := csvimport.Import(rows, s.opts.PreviewLimit)
	session := ImportSession{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Filename:     header.Filename,
		Appointments: result.Appointments,
		CreatedAt:    time.Now().UTC(),
	}
	session.ArchiveKey = s.archive(r.Context(), session, data, contentTypes[format])

	if err := s.deps.Sessions.Set(r.Context(), session.ID.String(), session, s.opts.SessionTTL); err != nil {
		return fmt.Errorf("store import session: %w", err)
	}

	s.logger.InfoContext(r.Context(), "import parsed",
		slog.String("import_id", session.ID.String()),
		slog.String("format", format),
		slog.Int("rows", max(len(rows)-1, 0)),
		slog.Int("appointments", len(result.Appointments)),
		slog.Int("skipped", result.Skipped),
	)

	writeJSON(w, http.StatusCreated, importResponse{
		ImportID:  session.ID,
		Filename:  session.Filename,
		Mapping:   result.Mapping,
		Unmapped:  result.Unmapped,
		Skipped:   result.Skipped,
		Preview:   result.Preview,
		ExpiresAt: session.CreatedAt.Add(s.opts.SessionTTL),
	})
	return nil
}

func parseUpload(format string, data []byte) ([]csvimport.RawRow, error) {
	if format == formatXLSX {
		rows, err := csvimport.ParseWorkbook(bytes.NewReader(data))
		switch {
		case errors.Is(err, csvimport.ErrEmptyWorkbook):
			return nil, ErrUnprocessable("workbook has no sheets", WithErrorCode("empty_workbook"))
		case err != nil:
			return nil, ErrUnprocessable("file is not a valid .xlsx workbook", WithErrorCode("invalid_workbook"), WithError(err))
		}
		return rows, nil
	}

	content, err := csvimport.DecodeUpload(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnprocessable("file is not valid text", WithErrorCode("invalid_encoding"), WithError(err))
	}
	return csvimport.ParseRows(content), nil
}

// archive stores the raw upload when an archive is configured. Failures
// are logged and the import continues without an archive copy.
func (s *Server) archive(ctx context.Context, session ImportSession, data []byte, contentType string) string {
	if s.deps.Archive == nil {
		return ""
	}
	key := s.deps.Archive.ArchiveKey(session.BusinessID, session.ID.String(), session.Filename)
	if err := s.deps.Archive.Put(ctx, key, data, contentType); err != nil {
		s.logger.WarnContext(ctx, "failed to archive upload", slog.String("key", key), slog.Any("error", err))
		return ""
	}
	return key
}

func (s *Server) commitImport(w http.ResponseWriter, r *http.Request) error {
	businessID := chi.URLParam(r, "businessID")
	importID, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		return ErrBadRequest("invalid import id", WithErrorCode("invalid_id"))
	}

	session, err := s.deps.Sessions.Get(r.Context(), importID.String())
	if errors.Is(err, cache.ErrNotFound) || (err == nil && session.BusinessID != businessID) {
		return ErrNotFound("import session not found or expired", WithErrorCode("import_not_found"))
	}
	if err != nil {
		return fmt.Errorf("load import session: %w", err)
	}

	appts := make([]repository.NewAppointment, 0, len(session.Appointments))
	rejections := make([]string, 0)
	for i, a := range session.Appointments {
		na, err := toNewAppointment(a)
		if err != nil {
			rejections = append(rejections, fmt.Sprintf("Appointment %d: %v", i+1, err))
			continue
		}
		appts = append(appts, na)
	}

	imported, err := s.deps.Appointments.InsertBatch(r.Context(), businessID, importID, appts)
	if err != nil {
		return err
	}

	if err := s.deps.Sessions.Delete(r.Context(), importID.String()); err != nil {
		s.logger.WarnContext(r.Context(), "failed to delete import session", slog.Any("error", err))
	}

	s.logger.InfoContext(r.Context(), "import committed",
		slog.String("import_id", importID.String()),
		slog.Int64("imported", imported),
		slog.Int("rejected", len(rejections)),
	)

	writeJSON(w, http.StatusOK, commitResponse{
		ImportID: importID,
		Imported: imported,
		Rejected: len(rejections),
		Errors:   rejections,
	})
	return nil
}

var (
	errDateFormat = errors.New("date is not in a recognized format")
	errTimeFormat = errors.New("time is not in a recognized format")
	errNoClient   = errors.New("missing client name")
)

// toNewAppointment accepts only candidates whose date normalized to
// YYYY-MM-DD and whose time is a 24-hour HH:MM clock time.
func toNewAppointment(a csvimport.Appointment) (repository.NewAppointment, error) {
	if !csvimport.IsISODate(a.Date) {
		return repository.NewAppointment{}, fmt.Errorf("%w: %q", errDateFormat, a.Date)
	}
	if !csvimport.IsClockTime(a.Time) {
		return repository.NewAppointment{}, fmt.Errorf("%w: %q", errTimeFormat, a.Time)
	}

	on, _ := time.Parse(time.DateOnly, a.Date)
	at, _ := time.Parse("15:04", a.Time)

	na := repository.NewAppointment{
		ClientName:  sanitizer.PlainText(a.ClientName),
		ClientEmail: sanitizer.PlainText(a.ClientEmail),
		ClientPhone: sanitizer.PlainText(a.ClientPhone),
		ServiceName: sanitizer.PlainText(a.ServiceName),
		Notes:       sanitizer.PlainText(a.Notes),
		Status:      sanitizer.PlainText(a.Status),
		StartsOn:    on,
		StartsAt:    time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute,
		Duration:    a.Duration,
		Price:       a.Price,
	}
	if na.ClientName == "" {
		return repository.NewAppointment{}, errNoClient
	}
	return na, nil
}

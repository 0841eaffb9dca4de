package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/export"
	"github.com/noah-isme/bimbel-adp-api/pkg/storage"
)

type exportWindowSource interface {
	WindowSnapshot(ctx context.Context, teacherID string, window models.CalendarWindow) ([]models.CalendarEventInstance, []models.TimeBlock, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Windows longer than this render unreadable grids.
const maxExportWindow = 14 * 24 * time.Hour

// ExportConfig tunes the weekly grid and download links.
type ExportConfig struct {
	APIPrefix    string
	WorkdayStart string
	WorkdayEnd   string
	SlotMin      int
	ResultTTL    time.Duration
}

// ExportFile is a rendered schedule ready for streaming.
type ExportFile struct {
	Name        string
	ContentType string
	Payload     []byte
}

// ExportResult captures stored export metadata for the signed link flow.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders a teacher's schedule window into a time-slot grid
// and serves it as CSV or PDF, either streamed or stored behind a signed
// download link.
type ExportService struct {
	source  exportWindowSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(source exportWindowSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.WorkdayStart == "" {
		cfg.WorkdayStart = "07:00"
	}
	if cfg.WorkdayEnd == "" {
		cfg.WorkdayEnd = "20:00"
	}
	if cfg.SlotMin <= 0 {
		cfg.SlotMin = 60
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		source:  source,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Render materializes the teacher's window and renders it in the requested
// format.
func (s *ExportService) Render(ctx context.Context, teacherID string, window models.CalendarWindow, format models.ExportFormat) (*ExportFile, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if !window.To.After(window.From) {
		return nil, appErrors.Clone(appErrors.ErrMalformedRange, "window end must be after window start")
	}
	if window.To.Sub(window.From) > maxExportWindow {
		return nil, appErrors.Clone(appErrors.ErrMalformedRange, "export window must not exceed 14 days")
	}

	instances, blocks, err := s.source.WindowSnapshot(ctx, teacherID, window)
	if err != nil {
		return nil, err
	}

	dataset, title, err := s.buildGrid(teacherID, window, instances, blocks)
	if err != nil {
		return nil, err
	}

	var payload []byte
	var contentType string
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Name:        s.buildFilename(teacherID, window, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// GenerateLink renders the window, stores the file and returns a signed
// download URL.
func (s *ExportService) GenerateLink(ctx context.Context, teacherID string, window models.CalendarWindow, format models.ExportFormat) (*ExportResult, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export storage is not configured")
	}

	file, err := s.Render(ctx, teacherID, window, format)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(file.Name, file.Payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store export file")
	}

	token, expiresAt, err := s.signer.Generate(uuid.NewString(), relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/calendar/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	if s.signer == nil {
		return "", "", time.Time{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "export storage is not configured")
	}
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// buildGrid lays the window out as one column per day and one row per
// workday slot. Events and blocks land in every slot they overlap.
func (s *ExportService) buildGrid(teacherID string, window models.CalendarWindow, instances []models.CalendarEventInstance, blocks []models.TimeBlock) (export.Dataset, string, error) {
	startMin, err := parseClock(s.cfg.WorkdayStart)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday start configuration")
	}
	endMin, err := parseClock(s.cfg.WorkdayEnd)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday end configuration")
	}
	if endMin <= startMin {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrInternal, "workday end must be after workday start")
	}

	days := make([]time.Time, 0, 7)
	for day := dateOnly(window.From); day.Before(window.To); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	entries := make(map[string][]gridEntry)
	for _, instance := range instances {
		if instance.Cancelled {
			continue
		}
		label := instance.Title
		if instance.Room != nil && *instance.Room != "" {
			label = fmt.Sprintf("%s (%s)", label, *instance.Room)
		}
		key := dateOnly(instance.Start).Format("2006-01-02")
		entries[key] = append(entries[key], gridEntry{start: instance.Start, end: instance.End, label: label})
	}
	for _, block := range blocks {
		start, err := clockOnDate(block.Date, block.StartTime)
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "time block has an invalid start time")
		}
		label := block.Label
		if label == "" {
			label = "Blocked"
		}
		key := dateOnly(block.Date).Format("2006-01-02")
		entries[key] = append(entries[key], gridEntry{start: start, end: start.Add(minutes(block.DurationMin)), label: label})
	}
	for _, dayEntries := range entries {
		sort.Slice(dayEntries, func(i, j int) bool {
			if dayEntries[i].start.Equal(dayEntries[j].start) {
				return dayEntries[i].label < dayEntries[j].label
			}
			return dayEntries[i].start.Before(dayEntries[j].start)
		})
	}

	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "Time")
	for _, day := range days {
		headers = append(headers, day.Format("Mon 02 Jan"))
	}

	rows := make([]map[string]string, 0, (endMin-startMin)/s.cfg.SlotMin+1)
	for slot := startMin; slot < endMin; slot += s.cfg.SlotMin {
		slotEnd := slot + s.cfg.SlotMin
		if slotEnd > endMin {
			slotEnd = endMin
		}
		row := map[string]string{"Time": fmt.Sprintf("%s-%s", clockLabel(slot), clockLabel(slotEnd))}
		for _, day := range days {
			slotStart := day.Add(minutes(slot))
			slotStop := day.Add(minutes(slotEnd))
			cell := make([]string, 0, 2)
			for _, entry := range entries[day.Format("2006-01-02")] {
				if entry.start.Before(slotStop) && entry.end.After(slotStart) {
					cell = append(cell, entry.label)
				}
			}
			row[day.Format("Mon 02 Jan")] = strings.Join(cell, "; ")
		}
		rows = append(rows, row)
	}

	last := days[len(days)-1]
	title := fmt.Sprintf("Schedule %s - %s", window.From.Format("02 Jan 2006"), last.Format("02 Jan 2006"))
	if teacherID != "" {
		title = fmt.Sprintf("%s (%s)", title, teacherID)
	}
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

type gridEntry struct {
	start time.Time
	end   time.Time
	label string
}

func clockLabel(totalMin int) string {
	return fmt.Sprintf("%02d:%02d", totalMin/60, totalMin%60)
}

func (s *ExportService) buildFilename(teacherID string, window models.CalendarWindow, format models.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	teacherPart := sanitizeFilename(teacherID)
	return fmt.Sprintf("schedule_%s_%s_%s.%s", teacherPart, window.From.Format("20060102"), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/events"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	exportBatchSize = 1000
	maxExportRows   = 50000
	exportSheet     = "Leads"
	exportTimestamp = "2006-01-02 15:04:05"
)

var exportHeaders = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Status", "Source",
	"Score", "Tags", "Quiz ID", "Created At", "Converted At",
}

// ExportService writes the leads behind a filter token to a file.
type ExportService interface {
	ExportLeads(ctx context.Context, p *auth.Principal, req *ExportRequest, info RequestInfo) (*ExportFile, error)
}

type ExportRequest struct {
	Filters   string              `form:"filters"`
	DateRange string              `form:"range"`
	Format    models.ExportFormat `form:"format"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	RowCount    int
}

type exportService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	compiler  *analytics.Compiler
	logger    *ServiceLogger
	now       func() time.Time
}

func NewExportService(repo repositories.Repository, publisher events.EventPublisher, loc *time.Location, logger *slog.Logger) ExportService {
	return &exportService{
		repo:      repo,
		publisher: publisher,
		compiler:  analytics.NewCompiler(loc),
		logger:    NewServiceLogger(logger, "export"),
		now:       time.Now,
	}
}

func (s *exportService) ExportLeads(ctx context.Context, p *auth.Principal, req *ExportRequest, info RequestInfo) (file *ExportFile, err error) {
	op := s.logger.Operation(ctx, "export_leads", p.CompanyID)
	defer func() { op.LogResult("", err) }()

	if !p.Can(auth.PermLeadsExport) {
		return nil, NewPermissionError(p.UserID, p.CompanyID, "lead", "export", "role cannot export leads")
	}

	format := models.ExportFormat(strings.ToLower(string(req.Format)))
	if format == "" {
		format = models.ExportCSV
	}
	if format != models.ExportCSV && format != models.ExportXLSX {
		return nil, ErrUnsupportedFormat
	}

	rows := analytics.DeserializeFilters(req.Filters)
	predicate := s.compiler.CompileState(analytics.FilterState{
		Rows:      rows,
		DateRange: analytics.ParseDateRange(req.DateRange),
	})

	leads, err := s.collect(ctx, p.CompanyID, predicate)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(leads))
	for _, lead := range leads {
		records = append(records, leadRecord(lead, s.compiler.Location))
	}

	file = &ExportFile{
		Filename: fmt.Sprintf("leads-%s.%s", s.now().In(s.compiler.Location).Format("20060102-150405"), format),
		RowCount: len(records),
	}
	switch format {
	case models.ExportXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Data, err = writeXLSX(records)
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Data, err = writeCSV(records)
	}
	if err != nil {
		return nil, err
	}

	entry := newAuditEntry(p, info, models.AuditLeadsExported, "export", nil, map[string]any{
		"format":    format,
		"row_count": file.RowCount,
		"filters":   analytics.SerializeFilters(rows),
		"range":     req.DateRange,
	})
	if err := s.repo.Audit().Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	event := events.NewLeadEvent(events.EventLeadsExported, p.CompanyID, events.LeadsExportedEvent{
		ExportedBy:  p.UserID,
		Format:      string(format),
		FilterToken: req.Filters,
		RowCount:    file.RowCount,
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Logger().ErrorContext(ctx, "Failed to publish leads exported event", "error", err)
	}

	return file, nil
}

// collect pages through every matching lead.
func (s *exportService) collect(ctx context.Context, companyID string, predicate analytics.Predicate) ([]*models.Lead, error) {
	var all []*models.Lead
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.repo.Lead().Query(ctx, nil, companyID, predicate, repositories.ListOptions{
			Limit:  exportBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query leads: %w", err)
		}
		if total > maxExportRows {
			return nil, ErrExportLimitExceeded
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func leadRecord(l *models.Lead, loc *time.Location) []string {
	convertedAt := ""
	if l.ConvertedAt != nil {
		convertedAt = l.ConvertedAt.In(loc).Format(exportTimestamp)
	}
	quizID := ""
	if l.QuizID != nil {
		quizID = *l.QuizID
	}

	return []string{
		l.ID,
		sanitizeCell(deref(l.FirstName)),
		sanitizeCell(deref(l.LastName)),
		sanitizeCell(deref(l.Email)),
		phoneCell(deref(l.Phone)),
		string(l.Status),
		string(l.Source),
		strconv.Itoa(l.Score),
		sanitizeCell(strings.Join(l.Tags, ", ")),
		quizID,
		l.CreatedAt.In(loc).Format(exportTimestamp),
		convertedAt,
	}
}

// sanitizeCell stops spreadsheet applications from evaluating submitted
// text as a formula.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

var dialablePhone = regexp.MustCompile(`^\+?[0-9]+$`)

// phoneCell keeps normalized numbers such as +4915112345678 as they are and
// sanitizes anything else.
func phoneCell(v string) string {
	if dialablePhone.MatchString(v) {
		return v
	}
	return sanitizeCell(v)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		// score is numeric so that spreadsheets can sort and sum it
		if score, err := strconv.Atoi(record[7]); err == nil {
			row[7] = score
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

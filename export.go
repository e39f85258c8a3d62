package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExportFormat is an output document type
type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
	ExportHTML ExportFormat = "html"
)

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportPDF:
		return "application/pdf"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// ParseExportFormat accepts pdf, xlsx or html in any case
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ExportPDF:
		return ExportPDF, nil
	case ExportXLSX, "excel":
		return ExportXLSX, nil
	case ExportHTML:
		return ExportHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ExportError reports a failed render or write of one export format
type ExportError struct {
	Format ExportFormat
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ReportFilename returns Report_<customer>_<timestamp>.<ext>
func ReportFilename(customer string, format ExportFormat, at time.Time) string {
	name := sanitizeFilename(strings.TrimSpace(customer))
	if name == "" {
		name = "Customer"
	}
	return fmt.Sprintf("Report_%s_%s.%s", name, at.Format("20060102_150405"), format)
}

// sanitizeFilename replaces characters that are not safe in filenames
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\t', '\n', '\r':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Exporter renders snapshots into report documents
type Exporter struct {
	Options  ComparisonOptions
	FontFile string // UTF-8 TrueType font; without it PDFs use English labels
	Logger   *zap.Logger
}

// NewExporter creates an exporter from the settings
func NewExporter(settings *Settings, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		Options:  settings.ComparisonOptions(),
		FontFile: settings.Report.FontFile,
		Logger:   logger,
	}
}

// comparisonFor builds the comparison with labels the format can display
func (e *Exporter) comparisonFor(format ExportFormat, state AppState) Comparison {
	opts := e.Options
	if format == ExportPDF && e.FontFile == "" {
		opts.Lang = LangEN
	}
	return BuildComparison(state, opts)
}

// Render produces the document bytes for one format
func (e *Exporter) Render(format ExportFormat, state AppState) (data []byte, err error) {
	started := time.Now()
	defer func() { recordExport(string(format), started, err) }()

	if len(state.Slots) == 0 {
		return nil, &ExportError{Format: format, Err: ErrNoConfiguredSlot}
	}

	cmp := e.comparisonFor(format, state)
	switch format {
	case ExportPDF:
		data, err = GenerateComparisonPDF(cmp, e.FontFile)
	case ExportXLSX:
		data, err = GenerateComparisonXLSX(cmp)
	case ExportHTML:
		data, err = GenerateComparisonHTML(cmp)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}
	return data, nil
}

// ExportToDir renders a format and writes it to dir, returning the file path
func (e *Exporter) ExportToDir(format ExportFormat, state AppState, dir string) (string, error) {
	data, err := e.Render(format, state)
	if err != nil {
		e.Logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &ExportError{Format: format, Err: err}
	}
	at := state.Date
	if at.IsZero() {
		at = time.Now()
	}
	path := filepath.Join(dir, ReportFilename(state.Customer.Name, format, at))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &ExportError{Format: format, Err: err}
	}

	e.Logger.Info("report exported",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return path, nil
}

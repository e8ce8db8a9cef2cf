package exporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/logging"
	"github.com/mmrzaf/empgen/internal/registry"
	"github.com/mmrzaf/empgen/internal/validation"
)

const (
	DefaultFileName = "employees.xlsx"

	EmployeesSheet = "Employees"
	SummarySheet   = "Summary"

	ColumnAverageSalary = "Average Salary"
	TimestampLabel      = "Export Timestamp:"
	TimestampLayout     = "2006-01-02 15:04:05"
)

var SummaryColumns = []string{domain.ColumnDepartment, ColumnAverageSalary}

var ErrDestinationMissing = errors.New("destination folder does not exist")

var (
	employeeWidths = []float64{12, 28, 18, 12, 14}
	summaryWidths  = []float64{20, 18}
)

type Exporter struct {
	validator *validation.Validator
	logger    *logging.Logger
	now       func() time.Time
}

// New builds an Exporter. A nil validator checks records against the default
// provider registry.
func New(validator *validation.Validator, logger *logging.Logger) *Exporter {
	if validator == nil {
		validator = validation.NewValidator(registry.DefaultProviderRegistry())
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{
		validator: validator,
		logger:    logger.WithComponent("exporter"),
		now:       time.Now,
	}
}

// TimestampRow is the 1-based Summary row holding the export timestamp:
// header, one row per department, one blank row, then the label.
func TimestampRow(summaryRows int) int {
	return summaryRows + 3
}

// Export writes records to destination as a two-sheet workbook. The file is
// staged next to destination and renamed into place, so destination is
// either replaced by a complete workbook or left untouched.
func (e *Exporter) Export(records []domain.EmployeeRecord, destination string) (*domain.ExportResult, error) {
	if destination == "" {
		return nil, errors.New("destination path is required")
	}
	if err := e.validator.ValidateRecords(records); err != nil {
		return nil, err
	}

	dir := filepath.Dir(destination)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationMissing, dir)
		}
		return nil, fmt.Errorf("stat destination folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("destination parent %s is not a folder", dir)
	}

	exportedAt := e.now()
	summary := Summarize(records)

	f, err := buildWorkbook(records, summary, exportedAt)
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := writeAtomic(destination, f.Write); err != nil {
		return nil, err
	}

	e.logger.Debugw("export.written", map[string]any{
		"path":         destination,
		"rows":         len(records),
		"summary_rows": len(summary),
	})

	return &domain.ExportResult{
		Path:        destination,
		Rows:        len(records),
		SummaryRows: len(summary),
		ExportedAt:  exportedAt,
	}, nil
}

func buildWorkbook(records []domain.EmployeeRecord, summary []domain.DepartmentSummary, exportedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), EmployeesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeEmployees(f, records, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %q: %w", EmployeesSheet, err)
	}
	if err := writeSummary(f, summary, exportedAt, bold, money); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %q: %w", SummarySheet, err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeEmployees(f *excelize.File, records []domain.EmployeeRecord, headerStyle int) error {
	if err := writeHeader(f, EmployeesSheet, domain.Columns, headerStyle); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		if err := f.SetSheetRow(EmployeesSheet, cell, &values); err != nil {
			return fmt.Errorf("employee %d: %w", r.EmployeeID, err)
		}
	}

	return setWidths(f, EmployeesSheet, employeeWidths)
}

func writeSummary(f *excelize.File, summary []domain.DepartmentSummary, exportedAt time.Time, headerStyle, moneyStyle int) error {
	if err := writeHeader(f, SummarySheet, SummaryColumns, headerStyle); err != nil {
		return err
	}

	for i, s := range summary {
		row := i + 2
		if err := f.SetCellStr(SummarySheet, fmt.Sprintf("A%d", row), s.Department); err != nil {
			return err
		}
		avg := fmt.Sprintf("B%d", row)
		if err := f.SetCellFloat(SummarySheet, avg, s.AverageSalary, 2, 64); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, avg, avg, moneyStyle); err != nil {
			return err
		}
	}

	tsRow := TimestampRow(len(summary))
	label := fmt.Sprintf("A%d", tsRow)
	if err := f.SetCellStr(SummarySheet, label, TimestampLabel); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, label, label, headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStr(SummarySheet, fmt.Sprintf("B%d", tsRow), exportedAt.Format(TimestampLayout)); err != nil {
		return err
	}

	return setWidths(f, SummarySheet, summaryWidths)
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic stages write's output in a temp file inside destination's
// folder and renames it over destination.
func writeAtomic(destination string, write func(io.Writer, ...excelize.Options) error) error {
	dir := filepath.Dir(destination)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destination)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, destination); err != nil {
		return fmt.Errorf("save %s: %w", destination, err)
	}
	committed = true
	return nil
}

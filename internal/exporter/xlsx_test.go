package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/generators"
	"github.com/mmrzaf/empgen/internal/registry"
	"github.com/mmrzaf/empgen/internal/validation"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)

func newExporter() *Exporter {
	e := New(validation.NewValidator(registry.DefaultProviderRegistry()), nil)
	e.now = func() time.Time { return fixedNow }
	return e
}

func sampleRecords() []domain.EmployeeRecord {
	return []domain.EmployeeRecord{
		{EmployeeID: 1, FullName: "John Doe", Department: "IT", Salary: 50000, HireDate: "2021-01-01"},
		{EmployeeID: 2, FullName: "Jane Smith", Department: "HR", Salary: 60000, HireDate: "2022-03-05"},
	}
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func summaryByDepartment(t *testing.T, f *excelize.File) map[string]float64 {
	t.Helper()
	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	require.Equal(t, SummaryColumns, rows[0])

	out := map[string]float64{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			break
		}
		if row[0] == TimestampLabel {
			break
		}
		v, err := strconv.ParseFloat(row[1], 64)
		require.NoError(t, err)
		out[row[0]] = v
	}
	return out
}

func TestExport_CreatesWorkbookWithBothSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	res, err := newExporter().Export(sampleRecords(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 2, res.SummaryRows)
	assert.Equal(t, "employees.xlsx", filepath.Base(res.Path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{EmployeesSheet, SummarySheet}, f.GetSheetList())
}

func TestExport_EmployeesSheetRoundTrip(t *testing.T) {
	g, err := generators.NewEmployeeGenerator(generators.Options{})
	require.NoError(t, err)
	records := g.Generate(250)

	path := filepath.Join(t.TempDir(), DefaultFileName)
	_, err = newExporter().Export(records, path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	rows, err := f.GetRows(EmployeesSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, domain.Columns, rows[0])

	for i, row := range rows[1:] {
		rec := records[i]
		require.Len(t, row, len(domain.Columns))
		assert.Equal(t, strconv.Itoa(i+1), row[0])
		assert.Equal(t, rec.FullName, row[1])
		assert.Equal(t, rec.Department, row[2])
		assert.Equal(t, strconv.Itoa(rec.Salary), row[3])
		assert.Equal(t, rec.HireDate, row[4])
	}

	typ, err := f.GetCellType(EmployeesSheet, "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "salary should be numeric")
}

func TestExport_SummaryAverages(t *testing.T) {
	records := []domain.EmployeeRecord{
		{EmployeeID: 1, FullName: "A B", Department: "IT", Salary: 50000, HireDate: "2021/01/01"},
		{EmployeeID: 2, FullName: "C D", Department: "IT", Salary: 70000, HireDate: "2021/01/02"},
	}
	path := filepath.Join(t.TempDir(), DefaultFileName)
	_, err := newExporter().Export(records, path)
	require.NoError(t, err)

	got := summaryByDepartment(t, openWorkbook(t, path))
	assert.Equal(t, map[string]float64{"IT": 60000.0}, got)

	records = append(records, domain.EmployeeRecord{EmployeeID: 3, FullName: "E F", Department: "Finance", Salary: 30001, HireDate: "2022/02/02"})
	_, err = newExporter().Export(records, path)
	require.NoError(t, err)

	got = summaryByDepartment(t, openWorkbook(t, path))
	assert.Equal(t, map[string]float64{"IT": 60000.0, "Finance": 30001.0}, got)
}

func TestExport_TimestampPlacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	_, err := newExporter().Export(sampleRecords(), path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	got := summaryByDepartment(t, f)
	assert.Equal(t, map[string]float64{"IT": 50000.0, "HR": 60000.0}, got)

	for _, cell := range []string{"A4", "B4"} {
		v, err := f.GetCellValue(SummarySheet, cell)
		require.NoError(t, err)
		assert.Empty(t, v, "row 4 must be blank")
	}

	label, err := f.GetCellValue(SummarySheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, TimestampLabel, label)

	ts, err := f.GetCellValue(SummarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 14:05:06", ts)
	_, err = time.Parse(TimestampLayout, ts)
	assert.NoError(t, err)
}

func TestExport_SummaryOrderIsAlphabetical(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	_, err := newExporter().Export(sampleRecords(), path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	a2, _ := f.GetCellValue(SummarySheet, "A2")
	a3, _ := f.GetCellValue(SummarySheet, "A3")
	assert.Equal(t, "HR", a2)
	assert.Equal(t, "IT", a3)
}

func TestExport_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	res, err := newExporter().Export(nil, path)
	require.NoError(t, err)
	assert.Zero(t, res.SummaryRows)

	f := openWorkbook(t, path)
	rows, err := f.GetRows(EmployeesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	label, err := f.GetCellValue(SummarySheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, TimestampLabel, label)
}

func TestExport_MissingParentFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does", "not", "exist", DefaultFileName)
	_, err := newExporter().Export(sampleRecords(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDestinationMissing))

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr), "exporter must not create folders")
}

func TestExport_DestinationIsDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.Mkdir(target, 0o755))

	_, err := newExporter().Export(sampleRecords(), target)
	require.Error(t, err)
	assertNoTempFiles(t, dir)
}

func TestExport_MalformedRecordsFail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	records := []domain.EmployeeRecord{{EmployeeID: 0, FullName: "X", Department: "IT", HireDate: "2021/01/01"}}

	_, err := newExporter().Export(records, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrMalformedBatch))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_OverwritesExistingFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := newExporter().Export(sampleRecords(), path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{EmployeesSheet, SummarySheet}, f.GetSheetList())
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()), "leftover temp file %s", e.Name())
	}
}

func TestSummarize(t *testing.T) {
	assert.Empty(t, Summarize(nil))

	got := Summarize([]domain.EmployeeRecord{
		{Department: "Ops", Salary: 1},
		{Department: "Ops", Salary: 2},
		{Department: "Ops", Salary: 2},
		{Department: "Admin", Salary: 10},
	})
	assert.Equal(t, []domain.DepartmentSummary{
		{Department: "Admin", AverageSalary: 10},
		{Department: "Ops", AverageSalary: 1.67},
	}, got)
}

func TestSummarize_HalfCentRoundsToEven(t *testing.T) {
	records := make([]domain.EmployeeRecord, 0, 8)
	for i := 0; i < 7; i++ {
		records = append(records, domain.EmployeeRecord{Department: "IT", Salary: 25000})
	}
	records = append(records, domain.EmployeeRecord{Department: "IT", Salary: 25001})

	got := Summarize(records)
	require.Len(t, got, 1)
	assert.Equal(t, 25000.12, got[0].AverageSalary)

	// 5/8 = 0.625 sits exactly on a half cent.
	hr := []domain.EmployeeRecord{}
	for i := 0; i < 8; i++ {
		salary := 0
		if i < 5 {
			salary = 1
		}
		hr = append(hr, domain.EmployeeRecord{Department: "HR", Salary: salary})
	}
	got = Summarize(hr)
	assert.Equal(t, 0.62, got[0].AverageSalary)
}

func TestNew_NilValidatorUsesDefault(t *testing.T) {
	e := New(nil, nil)
	dir := t.TempDir()

	res, err := e.Export(sampleRecords(), filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	_, err = e.Export([]domain.EmployeeRecord{{EmployeeID: 1}}, filepath.Join(dir, "bad.xlsx"))
	assert.True(t, errors.Is(err, validation.ErrMalformedBatch))
}

func TestTimestampRow(t *testing.T) {
	assert.Equal(t, 3, TimestampRow(0))
	assert.Equal(t, 5, TimestampRow(2))
	assert.Equal(t, 8, TimestampRow(5))
}

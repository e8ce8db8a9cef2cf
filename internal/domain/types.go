package domain

import (
	"time"
)

// Column headers of the Employees sheet, in sheet order.
const (
	ColumnEmployeeID = "Employee ID"
	ColumnFullName   = "Full Name"
	ColumnDepartment = "Department"
	ColumnSalary     = "Salary"
	ColumnHireDate   = "Hire Date"
)

var Columns = []string{
	ColumnEmployeeID,
	ColumnFullName,
	ColumnDepartment,
	ColumnSalary,
	ColumnHireDate,
}

var Departments = []string{"IT", "HR", "Operations", "Administration", "Finance"}

const (
	SalaryMin = 25_000
	SalaryMax = 120_000

	// HireDateLayout is the on-sheet format of EmployeeRecord.HireDate.
	HireDateLayout = "2006/01/02"
)

// HireDateFrom is the earliest possible hire date.
var HireDateFrom = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.Local)

type EmployeeRecord struct {
	EmployeeID int    `json:"Employee ID" yaml:"Employee ID" validate:"gt=0"`
	FullName   string `json:"Full Name" yaml:"Full Name" validate:"required"`
	Department string `json:"Department" yaml:"Department" validate:"required"`
	Salary     int    `json:"Salary" yaml:"Salary"`
	HireDate   string `json:"Hire Date" yaml:"Hire Date" validate:"required"`
}

// Values returns the record as a sheet row ordered like Columns.
func (r EmployeeRecord) Values() []interface{} {
	return []interface{}{r.EmployeeID, r.FullName, r.Department, r.Salary, r.HireDate}
}

type DepartmentSummary struct {
	Department    string  `json:"Department" yaml:"Department"`
	AverageSalary float64 `json:"Average Salary" yaml:"Average Salary"`
}

type Batch struct {
	ID          string           `json:"id" yaml:"id"`
	Provider    string           `json:"provider" yaml:"provider"`
	ProfileID   string           `json:"profile_id,omitempty" yaml:"profile_id,omitempty"`
	ProfileHash string           `json:"profile_hash,omitempty" yaml:"profile_hash,omitempty"`
	Seed        *int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Records     []EmployeeRecord `json:"records" yaml:"records"`
}

type ExportResult struct {
	Path        string    `json:"path"`
	Rows        int       `json:"rows"`
	SummaryRows int       `json:"summary_rows"`
	ExportedAt  time.Time `json:"exported_at"`
}

type ExportRun struct {
	ID          string       `json:"id" yaml:"id"`
	BatchID     string       `json:"batch_id" yaml:"batch_id"`
	Path        string       `json:"path" yaml:"path"`
	Rows        int          `json:"rows" yaml:"rows"`
	Provider    string       `json:"provider" yaml:"provider"`
	ProfileHash string       `json:"profile_hash" yaml:"profile_hash"`
	Status      ExportStatus `json:"status" yaml:"status"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

type ExportStatus string

const (
	ExportStatusRunning ExportStatus = "running"
	ExportStatusSuccess ExportStatus = "success"
	ExportStatusFailed  ExportStatus = "failed"
)

type GenerateRequest struct {
	Count    int    `json:"count" validate:"gt=0"`
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=static faker"`
	Seed     *int64 `json:"seed,omitempty"`
	Profile  string `json:"profile,omitempty"`
}

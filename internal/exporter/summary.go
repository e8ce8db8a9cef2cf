package exporter

import (
	"math"
	"sort"

	"github.com/mmrzaf/empgen/internal/domain"
)

// Summarize averages salary per department, rounded to cents with ties to
// even. Rows are ordered alphabetically by department.
func Summarize(records []domain.EmployeeRecord) []domain.DepartmentSummary {
	sums := make(map[string]int64)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.Department] += int64(r.Salary)
		counts[r.Department]++
	}

	departments := make([]string, 0, len(counts))
	for d := range counts {
		departments = append(departments, d)
	}
	sort.Strings(departments)

	summary := make([]domain.DepartmentSummary, 0, len(departments))
	for _, d := range departments {
		mean := float64(sums[d]) / float64(counts[d])
		summary = append(summary, domain.DepartmentSummary{
			Department:    d,
			AverageSalary: math.RoundToEven(mean*100) / 100,
		})
	}
	return summary
}

package generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/timeutil"
)

type Options struct {
	// Names defaults to a StaticNameProvider over the profile's lists.
	Names   NameProvider
	Profile *domain.Profile
	// Rand takes precedence over Seed.
	Rand *rand.Rand
	Seed *int64
	Now  func() time.Time
}

type EmployeeGenerator struct {
	rng         *rand.Rand
	names       NameProvider
	departments []string
	salaryMin   int
	salaryMax   int
	hireFrom    time.Time
	now         func() time.Time
}

func NewRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func NewEmployeeGenerator(opts Options) (*EmployeeGenerator, error) {
	profile := opts.Profile.WithDefaults()

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	hireFrom, err := timeutil.ParseRelativeTime(profile.HireDateFrom, now())
	if err != nil {
		return nil, fmt.Errorf("invalid hire_date_from: %w", err)
	}

	if profile.SalaryMax < profile.SalaryMin {
		return nil, fmt.Errorf("salary_max (%d) must be >= salary_min (%d)", profile.SalaryMax, profile.SalaryMin)
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewRand(opts.Seed)
	}
	names := opts.Names
	if names == nil {
		names = NewStaticNameProvider(rng, profile.FirstNames, profile.LastNames)
	}

	return &EmployeeGenerator{
		rng:         rng,
		names:       names,
		departments: profile.Departments,
		salaryMin:   profile.SalaryMin,
		salaryMax:   profile.SalaryMax,
		hireFrom:    timeutil.StartOfDay(hireFrom),
		now:         now,
	}, nil
}

// Generate returns count records with IDs 1..count. A non-positive count
// yields an empty slice.
func (g *EmployeeGenerator) Generate(count int) []domain.EmployeeRecord {
	if count <= 0 {
		return []domain.EmployeeRecord{}
	}

	now := g.now()
	dayRange := timeutil.DaysBetween(g.hireFrom, now)
	if dayRange < 0 {
		dayRange = 0
	}

	records := make([]domain.EmployeeRecord, count)
	for i := range records {
		first := g.names.FirstName()
		last := g.names.LastName()
		records[i] = domain.EmployeeRecord{
			EmployeeID: i + 1,
			FullName:   first + " " + last,
			Department: g.departments[g.rng.Intn(len(g.departments))],
			Salary:     g.salaryMin + g.rng.Intn(g.salaryMax-g.salaryMin+1),
			HireDate:   g.hireFrom.AddDate(0, 0, g.rng.Intn(dayRange+1)).Format(domain.HireDateLayout),
		}
	}
	return records
}

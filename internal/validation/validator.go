package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/registry"
	"github.com/mmrzaf/empgen/internal/timeutil"
)

var (
	ErrInvalidCount   = errors.New("Please enter a valid positive number.")
	ErrCountTooLarge  = errors.New("requested count exceeds the configured maximum")
	ErrMalformedBatch = errors.New("malformed record batch")
)

// ParseCount turns user input into a positive record count.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCount
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidCount
	}
	return n, nil
}

type Validator struct {
	providers *registry.ProviderRegistry
	structs   *validator.Validate
	now       func() time.Time
}

func NewValidator(providers *registry.ProviderRegistry) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{providers: providers, structs: v, now: time.Now}
}

// ValidateCount enforces 0 < n <= max. A non-positive max disables the cap.
func (v *Validator) ValidateCount(n, max int) error {
	if n <= 0 {
		return ErrInvalidCount
	}
	if max > 0 && n > max {
		return fmt.Errorf("%w: %d > %d", ErrCountTooLarge, n, max)
	}
	return nil
}

func (v *Validator) ValidateGenerateRequest(req *domain.GenerateRequest, max int) error {
	if req == nil {
		return errors.New("request is required")
	}
	if err := v.structs.Struct(req); err != nil {
		if req.Count <= 0 {
			return ErrInvalidCount
		}
		return formatStructError("request", err)
	}
	if err := v.ValidateCount(req.Count, max); err != nil {
		return err
	}
	if req.Provider != "" {
		if _, err := v.providers.Get(req.Provider); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) ValidateProfile(p *domain.Profile) error {
	if p == nil {
		return errors.New("profile is required")
	}
	resolved := p.WithDefaults()

	if resolved.Provider != "" {
		if _, err := v.providers.Get(resolved.Provider); err != nil {
			return fmt.Errorf("profile '%s': %w", resolved.ID, err)
		}
	}
	if err := nonEmptyEntries("departments", resolved.Departments); err != nil {
		return err
	}
	if err := nonEmptyEntries("first_names", p.FirstNames); err != nil {
		return err
	}
	if err := nonEmptyEntries("last_names", p.LastNames); err != nil {
		return err
	}
	if resolved.SalaryMin <= 0 {
		return fmt.Errorf("salary_min must be > 0, got %d", resolved.SalaryMin)
	}
	if resolved.SalaryMax < resolved.SalaryMin {
		return fmt.Errorf("salary_max (%d) must be >= salary_min (%d)", resolved.SalaryMax, resolved.SalaryMin)
	}

	now := v.now()
	from, err := timeutil.ParseRelativeTime(resolved.HireDateFrom, now)
	if err != nil {
		return fmt.Errorf("invalid hire_date_from: %w", err)
	}
	if from.After(now) {
		return fmt.Errorf("hire_date_from %s is in the future", resolved.HireDateFrom)
	}
	return nil
}

func nonEmptyEntries(field string, values []string) error {
	seen := make(map[string]bool, len(values))
	for i, s := range values {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s[%d] is empty", field, i)
		}
		if seen[s] {
			return fmt.Errorf("duplicate entry in %s: %s", field, s)
		}
		seen[s] = true
	}
	return nil
}

// ValidateRecords checks that every record carries the fields the exporter
// writes. It does not enforce generation bounds.
func (v *Validator) ValidateRecords(records []domain.EmployeeRecord) error {
	for i := range records {
		if err := v.structs.Struct(&records[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedBatch, formatStructError(fmt.Sprintf("record %d", i+1), err))
		}
	}
	return nil
}

func formatStructError(subject string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%s: %w", subject, err)
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("%s: field '%s' failed '%s=%s'", subject, fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s: field '%s' failed '%s'", subject, fe.Field(), fe.Tag())
}

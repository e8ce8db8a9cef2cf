package domain

// Profile overrides the built-in generation constants. Empty fields fall back
// to the defaults when the profile is resolved.
type Profile struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Provider     string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Departments  []string `json:"departments,omitempty" yaml:"departments,omitempty"`
	FirstNames   []string `json:"first_names,omitempty" yaml:"first_names,omitempty"`
	LastNames    []string `json:"last_names,omitempty" yaml:"last_names,omitempty"`
	SalaryMin    int      `json:"salary_min,omitempty" yaml:"salary_min,omitempty"`
	SalaryMax    int      `json:"salary_max,omitempty" yaml:"salary_max,omitempty"`
	HireDateFrom string   `json:"hire_date_from,omitempty" yaml:"hire_date_from,omitempty"`
}

const DefaultProfileID = "default"

func DefaultProfile() *Profile {
	return &Profile{
		ID:           DefaultProfileID,
		Name:         "Default",
		Provider:     "static",
		Departments:  append([]string(nil), Departments...),
		SalaryMin:    SalaryMin,
		SalaryMax:    SalaryMax,
		HireDateFrom: HireDateFrom.Format("2006-01-02"),
	}
}

// WithDefaults returns a copy of p where every unset field takes the default
// value. Name lists are left empty so the provider decides.
func (p *Profile) WithDefaults() *Profile {
	def := DefaultProfile()
	if p == nil {
		return def
	}
	cp := *p
	if cp.ID == "" {
		cp.ID = def.ID
	}
	if cp.Name == "" {
		cp.Name = cp.ID
	}
	if cp.Provider == "" {
		cp.Provider = def.Provider
	}
	if len(cp.Departments) == 0 {
		cp.Departments = def.Departments
	}
	if cp.SalaryMin == 0 && cp.SalaryMax == 0 {
		cp.SalaryMin, cp.SalaryMax = def.SalaryMin, def.SalaryMax
	}
	if cp.HireDateFrom == "" {
		cp.HireDateFrom = def.HireDateFrom
	}
	return &cp
}

package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/empgen/internal/domain"
)

// HashProfile fingerprints the resolved generation settings. Two profiles
// that generate from the same constants hash equal regardless of ID or name.
func HashProfile(profile *domain.Profile) (string, error) {
	canonical := canonicalizeProfile(profile.WithDefaults())
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeProfile(p *domain.Profile) map[string]interface{} {
	result := map[string]interface{}{
		"provider":       p.Provider,
		"departments":    p.Departments,
		"salary_min":     p.SalaryMin,
		"salary_max":     p.SalaryMax,
		"hire_date_from": p.HireDateFrom,
	}
	if len(p.FirstNames) > 0 {
		result["first_names"] = p.FirstNames
	}
	if len(p.LastNames) > 0 {
		result["last_names"] = p.LastNames
	}
	return result
}

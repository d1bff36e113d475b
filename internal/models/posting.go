// internal/models/posting.go
package models

import "time"

// JobPosting is the canonical shape of one job listing. It is produced only
// by the provider client's normalization layer; all fields downstream of
// that boundary are plain strings with empty-string defaults, never nested
// provider objects.
type JobPosting struct {
	ProviderID      string    `json:"providerId"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	ContractType    string    `json:"contractType,omitempty"`
	RedirectURL     string    `json:"redirectUrl"`
	SalaryMin       *float64  `json:"salaryMin,omitempty"`
	SalaryMax       *float64  `json:"salaryMax,omitempty"`
	SalaryPredicted bool      `json:"salaryPredicted,omitempty"`
	Created         time.Time `json:"created"`
}

// HasSalary reports whether either salary bound is present.
func (p *JobPosting) HasSalary() bool {
	return p.SalaryMin != nil || p.SalaryMax != nil
}

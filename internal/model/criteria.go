package model

import (
	"slices"
	"strings"
)

// SearchCriteria is the caller input for one pipeline run.
type SearchCriteria struct {
	Role          string   `json:"role"`
	Location      string   `json:"location,omitempty"`
	Sites         []string `json:"sites,omitempty"`
	ContractTypes []string `json:"contract_types,omitempty"`
	Modalities    []string `json:"modalities,omitempty"`
	Keywords      string   `json:"keywords,omitempty"`
	SalaryMin     *float64 `json:"salary_min,omitempty"`
	SalaryMax     *float64 `json:"salary_max,omitempty"`
}

// Validate checks the fields the pipeline cannot run without.
func (c SearchCriteria) Validate() error {
	if strings.TrimSpace(c.Role) == "" {
		return ErrRoleRequired
	}
	return nil
}

// Clone returns a deep copy so adapters never share slices or pointers.
func (c SearchCriteria) Clone() SearchCriteria {
	out := c
	out.Sites = slices.Clone(c.Sites)
	out.ContractTypes = slices.Clone(c.ContractTypes)
	out.Modalities = slices.Clone(c.Modalities)
	if c.SalaryMin != nil {
		v := *c.SalaryMin
		out.SalaryMin = &v
	}
	if c.SalaryMax != nil {
		v := *c.SalaryMax
		out.SalaryMax = &v
	}
	return out
}

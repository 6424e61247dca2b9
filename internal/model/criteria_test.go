package model

import (
	"errors"
	"testing"
)

func TestSearchCriteria_Validate(t *testing.T) {
	tests := []struct {
		name string
		role string
		want error
	}{
		{"empty role", "", ErrRoleRequired},
		{"blank role", "   ", ErrRoleRequired},
		{"valid role", "Desenvolvedor", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SearchCriteria{Role: tt.role}.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearchCriteria_CloneIsIndependent(t *testing.T) {
	salaryMin := 5000.0
	orig := SearchCriteria{Role: "Dev", Sites: []string{"indeed"}, SalaryMin: &salaryMin}
	cp := orig.Clone()
	cp.Sites[0] = "catho"
	*cp.SalaryMin = 1

	if orig.Sites[0] != "indeed" {
		t.Errorf("orig.Sites mutated: %v", orig.Sites)
	}
	if *orig.SalaryMin != 5000 {
		t.Errorf("orig.SalaryMin mutated: %v", *orig.SalaryMin)
	}
}

func TestJobPosting_DedupKeyAndID(t *testing.T) {
	a := JobPosting{Title: "Engenheiro", Company: "Acme"}
	b := JobPosting{Title: "ENGENHEIRO", Company: "acme"}
	if a.DedupKey() != "engenheiro_acme" {
		t.Errorf("DedupKey() = %q", a.DedupKey())
	}
	if a.ID() != b.ID() {
		t.Errorf("ID() differs for same key: %q vs %q", a.ID(), b.ID())
	}
}

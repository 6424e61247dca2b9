package pipeline

import (
	"testing"

	"github.com/buscajob/buscajob/internal/model"
)

func TestDedup(t *testing.T) {
	in := []model.JobPosting{
		job("Dev", "Acme", "Indeed", "https://a/1"),
		job("Dev Go", "Acme", "Indeed", ""),
		job("DEV", "ACME", "Catho", "https://b/2"),
		job("Dev", "Beta", "Catho", ""),
		job("dev", "acme", "LinkedIn", ""),
	}
	got := Dedup(in)

	if len(got) != 3 {
		t.Fatalf("expected 3 unique postings, got %d", len(got))
	}
	if got[0].URLString() != "https://a/1" || got[0].SourceSite != "Indeed" {
		t.Errorf("first seen did not win: %+v", got[0])
	}
	if got[1].Title != "Dev Go" || got[2].Company != "Beta" {
		t.Errorf("order not stable: %+v", got)
	}
}

func TestDedup_CountEqualsDistinctKeys(t *testing.T) {
	in := []model.JobPosting{
		job("A", "X", "", ""), job("a", "x", "", ""), job("B", "X", "", ""),
		job("A", "Y", "", ""), job("b", "x", "", ""),
	}
	distinct := map[string]bool{}
	for _, p := range in {
		distinct[p.DedupKey()] = true
	}
	got := Dedup(in)
	if len(got) != len(distinct) || len(got) > len(in) {
		t.Errorf("got %d postings, want %d", len(got), len(distinct))
	}
}

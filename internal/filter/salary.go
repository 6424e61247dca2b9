package filter

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryNumberRe = regexp.MustCompile(`[\d.,]+`)

// ParseSalary extracts the first number in s using the Brazilian convention
// ("." groups thousands, "," marks decimals). It returns 0 when s carries no
// usable number, e.g. "A combinar".
func ParseSalary(s string) float64 {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a combinar", "não informado":
		return 0
	}
	run := salaryNumberRe.FindString(s)
	if run == "" {
		return 0
	}
	run = strings.ReplaceAll(run, ".", "")
	run = strings.ReplaceAll(run, ",", ".")
	v, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0
	}
	return v
}

package dataset

import (
	"fmt"
	"time"
)

// ValidationRule checks one aspect of a dataset row.
type ValidationRule interface {
	Check(row Row, line int) []QualityIssue
	Name() string
}

// QualityIssue describes a problem found in the dataset.
type QualityIssue struct {
	Rule      string    `json:"rule"`
	Severity  string    `json:"severity"` // low, medium, high
	Message   string    `json:"message"`
	Line      int       `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidationStats summarizes a validation pass.
type ValidationStats struct {
	TotalRows int              `json:"total_rows"`
	Passed    int              `json:"passed"`
	Flagged   int              `json:"flagged"`
	Issues    map[string]int64 `json:"issues"`
}

// Validator applies a set of rules to every row of a frame.
type Validator struct {
	rules []ValidationRule
}

// NewValidator builds a validator with the default rules for the student
// dataset: numeric ranges and categorical domains.
func NewValidator() *Validator {
	v := &Validator{}
	v.AddRule(numericRangeRule{})
	v.AddRule(categoricalDomainRule{})
	return v
}

// AddRule registers an extra rule.
func (v *Validator) AddRule(rule ValidationRule) {
	v.rules = append(v.rules, rule)
}

// Validate runs all rules over the frame and returns the issues found.
func (v *Validator) Validate(frame *Frame) ([]QualityIssue, ValidationStats) {
	stats := ValidationStats{
		TotalRows: frame.Len(),
		Issues:    make(map[string]int64),
	}
	var issues []QualityIssue
	for i := 0; i < frame.Len(); i++ {
		row := frame.Row(i)
		var rowIssues []QualityIssue
		for _, rule := range v.rules {
			rowIssues = append(rowIssues, rule.Check(row, i+2)...) // +2: header and 1-based lines
		}
		if len(rowIssues) > 0 {
			stats.Flagged++
			for _, issue := range rowIssues {
				stats.Issues[issue.Rule]++
			}
			issues = append(issues, rowIssues...)
		} else {
			stats.Passed++
		}
	}
	return issues, stats
}

// numericBounds holds the documented value ranges of the UCI student data.
var numericBounds = map[string][2]float64{
	"age":        {15, 22},
	"Medu":       {0, 4},
	"Fedu":       {0, 4},
	"traveltime": {1, 4},
	"studytime":  {1, 4},
	"failures":   {0, 4},
	"famrel":     {1, 5},
	"freetime":   {1, 5},
	"goout":      {1, 5},
	"Dalc":       {1, 5},
	"Walc":       {1, 5},
	"health":     {1, 5},
	"absences":   {0, 93},
	"G1":         {0, 20},
	"G2":         {0, 20},
	"G3":         {0, 20},
}

type numericRangeRule struct{}

func (numericRangeRule) Name() string { return "numeric_range" }

func (r numericRangeRule) Check(row Row, line int) []QualityIssue {
	var issues []QualityIssue
	for col, bounds := range numericBounds {
		value, ok := row.Nums[col]
		if !ok {
			continue
		}
		if value < bounds[0] || value > bounds[1] {
			issues = append(issues, QualityIssue{
				Rule:      r.Name(),
				Severity:  "medium",
				Message:   fmt.Sprintf("%s=%g outside [%g, %g]", col, value, bounds[0], bounds[1]),
				Line:      line,
				Timestamp: time.Now(),
			})
		}
	}
	return issues
}

// categoricalDomains holds the known levels of each categorical column.
var categoricalDomains = map[string][]string{
	"school":     {"GP", "MS"},
	"sex":        {"F", "M"},
	"address":    {"U", "R"},
	"famsize":    {"LE3", "GT3"},
	"Pstatus":    {"T", "A"},
	"Mjob":       {"teacher", "health", "services", "at_home", "other"},
	"Fjob":       {"teacher", "health", "services", "at_home", "other"},
	"reason":     {"home", "reputation", "course", "other"},
	"guardian":   {"mother", "father", "other"},
	"schoolsup":  {"yes", "no"},
	"famsup":     {"yes", "no"},
	"paid":       {"yes", "no"},
	"activities": {"yes", "no"},
	"nursery":    {"yes", "no"},
	"higher":     {"yes", "no"},
	"internet":   {"yes", "no"},
	"romantic":   {"yes", "no"},
}

type categoricalDomainRule struct{}

func (categoricalDomainRule) Name() string { return "categorical_domain" }

func (r categoricalDomainRule) Check(row Row, line int) []QualityIssue {
	var issues []QualityIssue
	for col, levels := range categoricalDomains {
		value, ok := row.Cats[col]
		if !ok {
			continue
		}
		known := false
		for _, level := range levels {
			if value == level {
				known = true
				break
			}
		}
		if !known {
			issues = append(issues, QualityIssue{
				Rule:      r.Name(),
				Severity:  "low",
				Message:   fmt.Sprintf("%s=%q is not a documented level", col, value),
				Line:      line,
				Timestamp: time.Now(),
			})
		}
	}
	return issues
}

// Domain returns the documented levels of a categorical column, or nil.
func Domain(col string) []string {
	return categoricalDomains[col]
}

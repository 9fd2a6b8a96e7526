// Package predict maps partial user input to complete feature rows and runs
// the loaded pipeline over them.
package predict

import (
	"fmt"
	"strconv"
	"strings"

	"gradecast/dataset"
)

// UserColumns are the six fields collected from the form; everything else in
// the schema is filled from the defaults below.
var UserColumns = []string{"school", "sex", "age", "studytime", "failures", "absences"}

// UserInput is one prediction request. Validation tags mirror the form's
// input restrictions, so out-of-range values are rejected before any model
// code runs.
type UserInput struct {
	School    string `json:"school" validate:"required,oneof=GP MS"`
	Sex       string `json:"sex" validate:"required,oneof=F M"`
	Age       int    `json:"age" validate:"min=15,max=22"`
	StudyTime int    `json:"studytime" validate:"min=1,max=4"`
	Failures  int    `json:"failures" validate:"min=0,max=4"`
	Absences  int    `json:"absences" validate:"min=0,max=50"`
}

// Defaults for the columns not collected from the user. G3 is here because
// the training-era schema re-supplies the target at inference time; the
// encoder selects columns by name and was never fitted on G3, so the value
// is carried but ignored.
var categoricalDefaults = map[string]string{
	"address":    "U",
	"famsize":    "GT3",
	"Pstatus":    "T",
	"Mjob":       "other",
	"Fjob":       "other",
	"reason":     "course",
	"guardian":   "mother",
	"schoolsup":  "no",
	"famsup":     "no",
	"paid":       "no",
	"activities": "no",
	"nursery":    "yes",
	"higher":     "yes",
	"internet":   "yes",
	"romantic":   "no",
}

var numericDefaults = map[string]float64{
	"Medu":       2,
	"Fedu":       2,
	"traveltime": 1,
	"famrel":     3,
	"freetime":   3,
	"goout":      3,
	"Dalc":       1,
	"Walc":       1,
	"health":     3,
	"G1":         10,
	"G2":         10,
	"G3":         10,
}

var userColumnSet = func() map[string]bool {
	set := make(map[string]bool, len(UserColumns))
	for _, col := range UserColumns {
		set[col] = true
	}
	return set
}()

// VerifyDefaults checks that every schema column outside the user fields has
// a default. A missing entry is a configuration error, caught at startup
// rather than inside a request.
func VerifyDefaults() error {
	for _, col := range dataset.Columns {
		if userColumnSet[col] {
			continue
		}
		if dataset.IsCategorical(col) {
			if _, ok := categoricalDefaults[col]; !ok {
				return fmt.Errorf("no default configured for categorical column %q", col)
			}
		} else {
			if _, ok := numericDefaults[col]; !ok {
				return fmt.Errorf("no default configured for numeric column %q", col)
			}
		}
	}
	return nil
}

// BuildFeatureRow overlays the user's six fields onto the default vector,
// producing a row covering the full schema. The result never leaves a column
// unset; column order is carried by the schema, not by input order.
func BuildFeatureRow(in UserInput) (dataset.Row, error) {
	row := dataset.NewRow()
	for col, value := range categoricalDefaults {
		row.Cats[col] = value
	}
	for col, value := range numericDefaults {
		row.Nums[col] = value
	}

	row.Cats["school"] = in.School
	row.Cats["sex"] = in.Sex
	row.Nums["age"] = float64(in.Age)
	row.Nums["studytime"] = float64(in.StudyTime)
	row.Nums["failures"] = float64(in.Failures)
	row.Nums["absences"] = float64(in.Absences)

	for _, col := range dataset.Columns {
		if !row.Has(col) {
			return dataset.Row{}, fmt.Errorf("feature row missing column %q", col)
		}
	}
	return row, nil
}

// Fingerprint renders a row canonically in schema order, for use as a cache
// key: identical rows always produce identical fingerprints.
func Fingerprint(row dataset.Row) string {
	var b strings.Builder
	for _, col := range dataset.Columns {
		b.WriteString(col)
		b.WriteByte('=')
		if dataset.IsCategorical(col) {
			b.WriteString(row.Cats[col])
		} else {
			b.WriteString(strconv.FormatFloat(row.Nums[col], 'g', -1, 64))
		}
		b.WriteByte(';')
	}
	return b.String()
}

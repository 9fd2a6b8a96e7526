// Package dataset loads and validates the student performance dataset.
package dataset

// Columns lists every column of the student dataset in file order. G3 is the
// training target but still appears in inference rows (defaulted) so that row
// construction covers the full header.
var Columns = []string{
	"school", "sex", "age", "address", "famsize", "Pstatus",
	"Medu", "Fedu", "Mjob", "Fjob", "reason", "guardian",
	"traveltime", "studytime", "failures", "schoolsup",
	"famsup", "paid", "activities", "nursery", "higher",
	"internet", "romantic", "famrel", "freetime", "goout",
	"Dalc", "Walc", "health", "absences", "G1", "G2", "G3",
}

// CategoricalColumns are the columns that get one-hot encoded.
var CategoricalColumns = []string{
	"school", "sex", "address", "famsize", "Pstatus", "Mjob", "Fjob",
	"reason", "guardian", "schoolsup", "famsup", "paid", "activities",
	"nursery", "higher", "internet", "romantic",
}

// TargetColumn is the final grade the model predicts.
const TargetColumn = "G3"

var categoricalSet = func() map[string]bool {
	set := make(map[string]bool, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		set[col] = true
	}
	return set
}()

// IsCategorical reports whether the named column is one-hot encoded.
func IsCategorical(col string) bool {
	return categoricalSet[col]
}

// FeatureColumns returns the schema columns without the target, preserving
// order. This is the column set the pipeline is fitted on.
func FeatureColumns() []string {
	cols := make([]string, 0, len(Columns)-1)
	for _, col := range Columns {
		if col == TargetColumn {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// ColumnIndex returns the schema position of col, or -1 if unknown.
func ColumnIndex(col string) int {
	for i, name := range Columns {
		if name == col {
			return i
		}
	}
	return -1
}

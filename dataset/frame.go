package dataset

import (
	"errors"
	"fmt"
)

// Row is a single record keyed by column name. Categorical values live in
// Cats, numeric values in Nums. Column order is carried by the schema, not
// the row.
type Row struct {
	Cats map[string]string
	Nums map[string]float64
}

// NewRow returns an empty row with both maps allocated.
func NewRow() Row {
	return Row{
		Cats: make(map[string]string),
		Nums: make(map[string]float64),
	}
}

// Has reports whether the row holds a value for col.
func (r Row) Has(col string) bool {
	if _, ok := r.Cats[col]; ok {
		return true
	}
	_, ok := r.Nums[col]
	return ok
}

// Frame is a column-oriented table of dataset records.
type Frame struct {
	Columns []string
	cats    map[string][]string
	nums    map[string][]float64
	rows    int
}

// NewFrame allocates an empty frame for the given columns.
func NewFrame(columns []string) *Frame {
	f := &Frame{
		Columns: append([]string(nil), columns...),
		cats:    make(map[string][]string),
		nums:    make(map[string][]float64),
	}
	for _, col := range columns {
		if IsCategorical(col) {
			f.cats[col] = nil
		} else {
			f.nums[col] = nil
		}
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Cat returns the values of a categorical column.
func (f *Frame) Cat(col string) []string {
	return f.cats[col]
}

// Num returns the values of a numeric column.
func (f *Frame) Num(col string) []float64 {
	return f.nums[col]
}

// Append adds one row. The row must cover every frame column.
func (f *Frame) Append(r Row) error {
	for _, col := range f.Columns {
		if !r.Has(col) {
			return fmt.Errorf("row missing column %q", col)
		}
	}
	for _, col := range f.Columns {
		if IsCategorical(col) {
			f.cats[col] = append(f.cats[col], r.Cats[col])
		} else {
			f.nums[col] = append(f.nums[col], r.Nums[col])
		}
	}
	f.rows++
	return nil
}

// Row materializes record i.
func (f *Frame) Row(i int) Row {
	r := NewRow()
	for _, col := range f.Columns {
		if IsCategorical(col) {
			r.Cats[col] = f.cats[col][i]
		} else {
			r.Nums[col] = f.nums[col][i]
		}
	}
	return r
}

// Subset returns a new frame holding only the given row indices.
func (f *Frame) Subset(indices []int) *Frame {
	sub := NewFrame(f.Columns)
	for _, idx := range indices {
		sub.Append(f.Row(idx))
	}
	return sub
}

// SplitTarget separates the numeric target column from the feature columns.
// The returned frame keeps the remaining columns in schema order.
func (f *Frame) SplitTarget(target string) (*Frame, []float64, error) {
	values, ok := f.nums[target]
	if !ok {
		return nil, nil, fmt.Errorf("target column %q not found", target)
	}
	if f.rows == 0 {
		return nil, nil, errors.New("frame is empty")
	}

	cols := make([]string, 0, len(f.Columns)-1)
	for _, col := range f.Columns {
		if col == target {
			continue
		}
		cols = append(cols, col)
	}

	features := NewFrame(cols)
	for i := 0; i < f.rows; i++ {
		r := f.Row(i)
		delete(r.Nums, target)
		if err := features.Append(r); err != nil {
			return nil, nil, err
		}
	}

	y := append([]float64(nil), values...)
	return features, y, nil
}

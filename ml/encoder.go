package ml

import (
	"errors"
	"fmt"
	"sort"

	"gradecast/dataset"
)

// Policies for categorical levels unseen at fit time.
const (
	// HandleUnknownIgnore encodes an unseen level as an all-zero block.
	HandleUnknownIgnore = "ignore"
	// HandleUnknownError rejects rows carrying unseen levels.
	HandleUnknownError = "error"
)

// EncoderOptions configures one-hot encoding behaviour.
type EncoderOptions struct {
	HandleUnknown string
}

// Encoder one-hot encodes the categorical columns of a row and passes the
// remaining fitted columns through unchanged. Output order is fixed at fit
// time: one-hot blocks in categorical-column order, then the passthrough
// block. Columns are selected by name, so a row may carry extra columns the
// encoder was not fitted on; they are ignored.
type Encoder struct {
	CategoricalCols []string            `json:"categorical_cols"`
	PassthroughCols []string            `json:"passthrough_cols"`
	Categories      map[string][]string `json:"categories"`
	HandleUnknown   string              `json:"handle_unknown"`
}

// FitEncoder learns the categorical levels present in the frame. Level order
// is sorted so the encoded layout does not depend on row order.
func FitEncoder(frame *dataset.Frame, categoricalCols []string, opts EncoderOptions) (*Encoder, error) {
	if frame == nil || frame.Len() == 0 {
		return nil, errors.New("frame is empty")
	}
	switch opts.HandleUnknown {
	case "":
		opts.HandleUnknown = HandleUnknownError
	case HandleUnknownIgnore, HandleUnknownError:
	default:
		return nil, fmt.Errorf("unsupported handle_unknown policy %q", opts.HandleUnknown)
	}

	catSet := make(map[string]bool, len(categoricalCols))
	for _, col := range categoricalCols {
		catSet[col] = true
	}

	enc := &Encoder{
		Categories:    make(map[string][]string, len(categoricalCols)),
		HandleUnknown: opts.HandleUnknown,
	}
	for _, col := range categoricalCols {
		values := frame.Cat(col)
		if values == nil {
			return nil, fmt.Errorf("categorical column %q not in frame", col)
		}
		levels := make(map[string]bool)
		for _, v := range values {
			levels[v] = true
		}
		sorted := make([]string, 0, len(levels))
		for level := range levels {
			sorted = append(sorted, level)
		}
		sort.Strings(sorted)
		enc.Categories[col] = sorted
		enc.CategoricalCols = append(enc.CategoricalCols, col)
	}
	for _, col := range frame.Columns {
		if !catSet[col] {
			enc.PassthroughCols = append(enc.PassthroughCols, col)
		}
	}
	return enc, nil
}

// NumFeatures returns the width of the encoded feature space.
func (e *Encoder) NumFeatures() int {
	n := len(e.PassthroughCols)
	for _, col := range e.CategoricalCols {
		n += len(e.Categories[col])
	}
	return n
}

// FeatureNames returns one name per encoded column, in output order.
func (e *Encoder) FeatureNames() []string {
	names := make([]string, 0, e.NumFeatures())
	for _, col := range e.CategoricalCols {
		for _, level := range e.Categories[col] {
			names = append(names, col+"_"+level)
		}
	}
	names = append(names, e.PassthroughCols...)
	return names
}

// Transform encodes a single row. A row missing a fitted column is a schema
// mismatch and fails; columns beyond the fitted set are ignored.
func (e *Encoder) Transform(row dataset.Row) ([]float64, error) {
	out := make([]float64, 0, e.NumFeatures())
	for _, col := range e.CategoricalCols {
		value, ok := row.Cats[col]
		if !ok {
			return nil, fmt.Errorf("row missing categorical column %q", col)
		}
		block := make([]float64, len(e.Categories[col]))
		found := false
		for i, level := range e.Categories[col] {
			if value == level {
				block[i] = 1
				found = true
				break
			}
		}
		if !found && e.HandleUnknown == HandleUnknownError {
			return nil, fmt.Errorf("unknown level %q for column %q", value, col)
		}
		out = append(out, block...)
	}
	for _, col := range e.PassthroughCols {
		value, ok := row.Nums[col]
		if !ok {
			return nil, fmt.Errorf("row missing numeric column %q", col)
		}
		out = append(out, value)
	}
	return out, nil
}

// TransformFrame encodes every row of a frame.
func (e *Encoder) TransformFrame(frame *dataset.Frame) ([][]float64, error) {
	vectors := make([][]float64, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		vector, err := e.Transform(frame.Row(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

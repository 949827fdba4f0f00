// Package dataset adapts an assembled feature set for the model trainer:
// it splits features from the label, drops rows unusable for supervised
// learning and exports the artifact metadata the trainer ships with a model.
package dataset

import (
	"errors"
	"math"
	"time"

	"github.com/raykavin/quantfeat/pkg/feature"
)

var (
	// ErrMissingLabel is returned when training data is requested from a
	// feature set built without labels
	ErrMissingLabel = errors.New("feature set has no future_ret column")

	// ErrNoTrainableRows is returned when every row was dropped for holding
	// an undefined feature or label value
	ErrNoTrainableRows = errors.New("no rows with fully defined features and label")
)

// Matrix holds aligned training inputs: one X row per retained bar, the
// corresponding label values and the timestamps kept for audit.
type Matrix struct {
	Names []string
	Time  []time.Time
	X     [][]float64
	Y     []float64
}

// Regressor is the boundary to the external model trainer. The pipeline
// produces a Matrix; fitting and artifact serialization of the model itself
// happen on the other side of this interface.
type Regressor interface {
	Fit(x [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
}

// Prepare splits a labeled feature set into X and y, dropping every row where
// a feature or the label is undefined. Warm-up rows and the final unlabeled
// row disappear here when the caller retained them during assembly.
func Prepare(fs *feature.FeatureSet) (*Matrix, error) {
	if !fs.HasLabels() {
		return nil, ErrMissingLabel
	}

	names := fs.FeatureNames()
	label := fs.Column(feature.LabelFutureReturn)

	m := &Matrix{Names: names}
	for i := 0; i < fs.Len(); i++ {
		if math.IsNaN(label[i]) {
			continue
		}

		row := make([]float64, len(names))
		defined := true
		for c, name := range names {
			value := fs.Column(name)[i]
			if math.IsNaN(value) {
				defined = false
				break
			}
			row[c] = value
		}
		if !defined {
			continue
		}

		m.Time = append(m.Time, fs.Time[i])
		m.X = append(m.X, row)
		m.Y = append(m.Y, label[i])
	}

	if len(m.X) == 0 {
		return nil, ErrNoTrainableRows
	}
	return m, nil
}

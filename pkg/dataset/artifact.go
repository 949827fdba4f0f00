package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
)

const (
	featureSpecFile = "features.json"
	metaFile        = "meta.json"
)

// FeatureSpec describes the model input schema shipped alongside a trained
// model so that inference uses exactly the training column order
type FeatureSpec struct {
	FeatureNames []string          `json:"feature_names"`
	NumFeatures  int               `json:"num_features"`
	FeatureTypes map[string]string `json:"feature_types"`
}

// Meta records how a training dataset was produced
type Meta struct {
	Pair      string    `json:"pair"`
	Timeframe string    `json:"timeframe"`
	Rows      int       `json:"rows"`
	Labeled   bool      `json:"labeled"`
	BuiltAt   time.Time `json:"built_at"`
}

// ExportArtifacts writes features.json and meta.json into dir, creating the
// directory when needed
func ExportArtifacts(dir string, names []string, meta Meta) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	spec := FeatureSpec{
		FeatureNames: names,
		NumFeatures:  len(names),
		FeatureTypes: lo.SliceToMap(names, func(name string) (string, string) {
			return name, "float"
		}),
	}

	if err := writeJSON(filepath.Join(dir, featureSpecFile), spec); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, metaFile), meta)
}

func writeJSON(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitryikh/leaves"
	"gonum.org/v1/gonum/floats"
)

// stackManifest is the on-disk description of the stacking regressor: a set
// of base XGBoost models blended by a linear meta-learner.
type stackManifest struct {
	Version       int       `json:"version"`
	BaseModels    []string  `json:"base_models"`
	MetaWeights   []float64 `json:"meta_weights"`
	MetaIntercept float64   `json:"meta_intercept"`
}

// StackModel predicts days until the next purchase. Base model outputs form
// the level-one feature vector for the meta-learner.
type StackModel struct {
	bases []ensemble
	w     []float64
	b     float64
	path  string
}

// LoadStackModel reads a stack manifest and loads every base model it
// names. Relative base paths resolve against the manifest directory.
func LoadStackModel(path string) (*StackModel, error) {
	abs, err := resolveArtifactPath(path)
	if err != nil {
		return nil, fmt.Errorf("next-purchase model: %w", err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("next-purchase model %s: %w", abs, err)
	}
	var man stackManifest
	if err := json.Unmarshal(raw, &man); err != nil {
		return nil, fmt.Errorf("next-purchase model %s: parse manifest: %w", abs, err)
	}
	if len(man.BaseModels) == 0 {
		return nil, fmt.Errorf("next-purchase model %s: manifest names no base models", abs)
	}
	if len(man.MetaWeights) != len(man.BaseModels) {
		return nil, fmt.Errorf("next-purchase model %s: %d meta weights for %d base models",
			abs, len(man.MetaWeights), len(man.BaseModels))
	}
	dir := filepath.Dir(abs)
	bases := make([]ensemble, 0, len(man.BaseModels))
	for _, name := range man.BaseModels {
		bp := name
		if !filepath.IsAbs(bp) {
			bp = filepath.Join(dir, name)
		}
		ens, err := leaves.XGEnsembleFromFile(bp, false)
		if err != nil {
			return nil, fmt.Errorf("next-purchase base model %s: %w", bp, err)
		}
		if n := ens.NFeatures(); n > 0 && n != numRegressionFeatures {
			return nil, fmt.Errorf("next-purchase base model %s: expects %d features, trained with %d",
				bp, numRegressionFeatures, n)
		}
		bases = append(bases, ens)
	}
	return &StackModel{bases: bases, w: man.MetaWeights, b: man.MetaIntercept, path: abs}, nil
}

// Predict returns the blended days-to-next-purchase estimate, clamped at
// zero since a negative day count is meaningless.
func (s *StackModel) Predict(features []float64) float64 {
	level1 := make([]float64, len(s.bases))
	for i, base := range s.bases {
		level1[i] = base.PredictSingle(features, 0)
	}
	days := floats.Dot(s.w, level1) + s.b
	if days < 0 {
		return 0
	}
	return days
}

// Name reports the stack composition, e.g. "stack(2 xgboost.gbtree + linear meta)".
func (s *StackModel) Name() string {
	if len(s.bases) == 0 {
		return "stack(empty)"
	}
	return fmt.Sprintf("stack(%d %s + linear meta)", len(s.bases), s.bases[0].Name())
}

// Path returns the resolved manifest path.
func (s *StackModel) Path() string { return s.path }

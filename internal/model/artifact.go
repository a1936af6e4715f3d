package model

import (
	"fmt"
	"path/filepath"

	"github.com/dmitryikh/leaves"

	"churnd/internal/common/fsutil"
)

// ensemble is the subset of leaves.Ensemble the predictor relies on.
// Narrowing to an interface keeps inference testable without artifacts.
type ensemble interface {
	PredictSingle(fvals []float64, nEstimators int) float64
	NFeatures() int
	Name() string
}

// ChurnModel wraps the XGBoost churn classifier artifact. Predictions are
// probabilities; the logistic transform is applied at load time.
type ChurnModel struct {
	ens  ensemble
	path string
}

// LoadChurnModel reads an XGBoost binary model file from path.
func LoadChurnModel(path string) (*ChurnModel, error) {
	abs, err := resolveArtifactPath(path)
	if err != nil {
		return nil, fmt.Errorf("churn model: %w", err)
	}
	ens, err := leaves.XGEnsembleFromFile(abs, true)
	if err != nil {
		return nil, fmt.Errorf("churn model %s: %w", abs, err)
	}
	if n := ens.NFeatures(); n > 0 && n != numChurnFeatures {
		return nil, fmt.Errorf("churn model %s: expects %d features, trained with %d", abs, numChurnFeatures, n)
	}
	return &ChurnModel{ens: ens, path: abs}, nil
}

// PredictProba returns the churn probability in [0,1].
func (m *ChurnModel) PredictProba(features []float64) float64 {
	p := m.ens.PredictSingle(features, 0)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Name reports the underlying model type, e.g. "xgboost.gbtree".
func (m *ChurnModel) Name() string { return m.ens.Name() }

// Path returns the resolved artifact path.
func (m *ChurnModel) Path() string { return m.path }

// resolveArtifactPath expands '~', makes the path absolute, and verifies
// the file exists so load errors name the real location.
func resolveArtifactPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty artifact path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return "", fmt.Errorf("%s not found", abs)
	}
	return abs, nil
}

package model

import (
	"context"
	"fmt"
	"math"
	"time"

	"churnd/internal/common/fsutil"
	"churnd/pkg/types"
)

// Feature vector widths for the two artifacts.
//
// Regression: [Frequency, Monetary, Avg_Order_Value, Total_Items_Sold,
// Customer_Type, Attribution]. Classification: [Recency_Days,
// Avg_Order_Value, Total_Items_Sold, Attribution].
const (
	numRegressionFeatures = 6
	numChurnFeatures      = 4
)

// Config encapsulates the artifact locations for Load.
type Config struct {
	ChurnModelPath        string
	NextPurchaseModelPath string
}

// Predictor holds the two loaded models and the frozen category encoder.
// It is read-only after Load and safe for concurrent use.
type Predictor struct {
	churn     *ChurnModel
	stack     *StackModel
	enc       *LabelEncoder
	cfg       Config
	startTime time.Time
}

// smokeInput is the canned record used to exercise both models right after
// loading, before the server starts accepting traffic.
var smokeInput = types.CustomerInput{
	RecencyDays:    10,
	Frequency:      1,
	Monetary:       100,
	AvgOrderValue:  100,
	TotalItemsSold: 1,
	Attribution:    "Direct",
	CustomerType:   types.CustomerTypeNew,
}

// Load reads both artifacts and verifies them with a smoke prediction.
// Any failure here is fatal to startup; there is no degraded mode.
func Load(cfg Config) (*Predictor, error) {
	churn, err := LoadChurnModel(cfg.ChurnModelPath)
	if err != nil {
		return nil, err
	}
	stack, err := LoadStackModel(cfg.NextPurchaseModelPath)
	if err != nil {
		return nil, err
	}
	p := &Predictor{
		churn:     churn,
		stack:     stack,
		enc:       NewLabelEncoder(append(types.CustomerTypes(), types.AttributionValues()...)),
		cfg:       cfg,
		startTime: time.Now(),
	}
	if _, err := p.Predict(context.Background(), smokeInput); err != nil {
		return nil, fmt.Errorf("model smoke test: %w", err)
	}
	return p, nil
}

// Ready reports whether both artifacts are loaded.
func (p *Predictor) Ready() bool {
	return p != nil && p.churn != nil && p.stack != nil
}

// Predict runs both models over a single validated customer record.
func (p *Predictor) Predict(ctx context.Context, in types.CustomerInput) (types.CustomerPrediction, error) {
	var zero types.CustomerPrediction
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if !p.Ready() {
		return zero, ErrNotLoaded()
	}
	ctype, ok := p.enc.Encode(in.CustomerType)
	if !ok {
		return zero, ErrUnknownCategory("Customer_Type", in.CustomerType)
	}
	attr, ok := p.enc.Encode(in.Attribution)
	if !ok {
		return zero, ErrUnknownCategory("Attribution", in.Attribution)
	}

	regFeatures := []float64{
		float64(in.Frequency),
		in.Monetary,
		in.AvgOrderValue,
		float64(in.TotalItemsSold),
		ctype,
		attr,
	}
	clfFeatures := []float64{
		float64(in.RecencyDays),
		in.AvgOrderValue,
		float64(in.TotalItemsSold),
		attr,
	}

	days := p.stack.Predict(regFeatures)
	prob := p.churn.PredictProba(clfFeatures) * 100
	if !isFinite(days) || !isFinite(prob) {
		return zero, fmt.Errorf("inference produced a non-finite value for customer %d", in.CustomerID)
	}
	if prob < 0 {
		prob = 0
	}
	if prob > 100 {
		prob = 100
	}
	return types.CustomerPrediction{
		CustomerID:           in.CustomerID,
		PredNextPurchaseDays: days,
		ChurnProbability:     prob,
	}, nil
}

// PredictBatch predicts each record independently, preserving input order.
// The first inference failure aborts the batch.
func (p *Predictor) PredictBatch(ctx context.Context, ins []types.CustomerInput) ([]types.CustomerPrediction, error) {
	out := make([]types.CustomerPrediction, 0, len(ins))
	for _, in := range ins {
		pred, err := p.Predict(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, pred)
	}
	return out, nil
}

// Health reports live predictor state for GET /health.
func (p *Predictor) Health() types.HealthResponse {
	resp := types.HealthResponse{
		Status:     "unhealthy",
		ModelFiles: map[string]bool{},
	}
	if p == nil {
		return resp
	}
	if p.cfg.ChurnModelPath != "" {
		resp.ModelFiles[p.cfg.ChurnModelPath] = artifactPresent(p.cfg.ChurnModelPath)
	}
	if p.cfg.NextPurchaseModelPath != "" {
		resp.ModelFiles[p.cfg.NextPurchaseModelPath] = artifactPresent(p.cfg.NextPurchaseModelPath)
	}
	if p.churn != nil {
		resp.ClassificationModel = p.churn.Name()
	}
	if p.stack != nil {
		resp.RegressionModel = p.stack.Name()
	}
	if p.Ready() {
		resp.Status = "healthy"
		resp.ModelsLoaded = true
	}
	if !p.startTime.IsZero() {
		resp.UptimeSeconds = int64(time.Since(p.startTime).Seconds())
	}
	return resp
}

func artifactPresent(path string) bool {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return false
	}
	return fsutil.PathExists(p)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

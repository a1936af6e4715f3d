package types

// CustomerInput is one customer record submitted for prediction.
// Field names follow the training data column names on the wire.
type CustomerInput struct {
	// Unique customer identifier, echoed back in the prediction.
	// example: 1042
	CustomerID int `json:"Customer_ID" example:"1042"`
	// Days since the customer's last purchase.
	// example: 12
	RecencyDays int `json:"Recency_Days" example:"12"`
	// Number of purchases; at least one.
	// example: 4
	Frequency int `json:"Frequency" example:"4"`
	// Total monetary value across all purchases.
	// example: 642.5
	Monetary float64 `json:"Monetary" example:"642.5"`
	// Average order value.
	// example: 160.62
	AvgOrderValue float64 `json:"Avg_Order_Value" example:"160.62"`
	// Total number of items sold to this customer.
	// example: 9
	TotalItemsSold int `json:"Total_Items_Sold" example:"9"`
	// Acquisition source; must be one of the known attribution values.
	// example: Direct
	Attribution string `json:"Attribution" example:"Direct"`
	// Either "new" or "returning".
	// example: returning
	CustomerType string `json:"Customer_Type" example:"returning"`
}

// CustomerPrediction is the model output for a single customer.
type CustomerPrediction struct {
	CustomerID int `json:"Customer_ID" example:"1042"`
	// Predicted days until the next purchase, never negative.
	// example: 37.4
	PredNextPurchaseDays float64 `json:"Pred_Next_Purchase_Days" example:"37.4"`
	// Churn probability as a percentage in [0,100].
	// example: 18.2
	ChurnProbability float64 `json:"Churn_Probability" example:"18.2"`
}

// BatchPredictionRequest wraps the customer list for POST /predict/batch.
type BatchPredictionRequest struct {
	Customers []CustomerInput `json:"customers"`
}

// BatchPredictionResponse preserves the order of the submitted customers.
type BatchPredictionResponse struct {
	Predictions []CustomerPrediction `json:"predictions"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Human-readable error description.
	// example: Frequency: must be no less than 1.
	Detail string `json:"detail" example:"Frequency: must be no less than 1."`
}

// RootResponse is the service banner returned by GET /.
type RootResponse struct {
	Message string `json:"message" example:"churnd customer behavior prediction API"`
	Status  string `json:"status" example:"healthy"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall status: "healthy" when both models are loaded.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Whether both model artifacts loaded successfully.
	// example: true
	ModelsLoaded bool `json:"models_loaded" example:"true"`
	// Per-artifact file presence keyed by configured path.
	ModelFiles map[string]bool `json:"model_files"`
	// Type name of the loaded regression model.
	// example: stack(2 xgboost.gbtree + linear meta)
	RegressionModel string `json:"regression_model,omitempty"`
	// Type name of the loaded classification model.
	// example: xgboost.gbtree
	ClassificationModel string `json:"classification_model,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
}

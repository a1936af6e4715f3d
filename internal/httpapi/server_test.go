package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"churnd/internal/model"
	"churnd/pkg/types"
)

type mockService struct {
	days       float64
	churn      float64
	predictErr error
	health     types.HealthResponse
	ready      bool
}

func (m *mockService) Predict(ctx context.Context, in types.CustomerInput) (types.CustomerPrediction, error) {
	if m.predictErr != nil {
		return types.CustomerPrediction{}, m.predictErr
	}
	return types.CustomerPrediction{
		CustomerID:           in.CustomerID,
		PredNextPurchaseDays: m.days + float64(in.Frequency),
		ChurnProbability:     m.churn,
	}, nil
}

func (m *mockService) PredictBatch(ctx context.Context, ins []types.CustomerInput) ([]types.CustomerPrediction, error) {
	out := make([]types.CustomerPrediction, 0, len(ins))
	for _, in := range ins {
		p, err := m.Predict(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockService) Health() types.HealthResponse { return m.health }
func (m *mockService) Ready() bool                  { return m.ready }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func validInput() types.CustomerInput {
	return types.CustomerInput{
		CustomerID:     7,
		RecencyDays:    12,
		Frequency:      3,
		Monetary:       300,
		AvgOrderValue:  100,
		TotalItemsSold: 5,
		Attribution:    "Direct",
		CustomerType:   types.CustomerTypeReturning,
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return e.Detail
}

func TestRootHandler(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.RootResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(body.Message, "churnd") || body.Status != "healthy" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthHandler(t *testing.T) {
	svc := &mockService{health: types.HealthResponse{
		Status:       "healthy",
		ModelsLoaded: true,
		ModelFiles:   map[string]bool{"churn_model.xgb": true},
	}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !body.ModelsLoaded || !body.ModelFiles["churn_model.xgb"] {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthNotLoaded(t *testing.T) {
	svc := &mockService{health: types.HealthResponse{Status: "unhealthy"}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.ModelsLoaded || body.Status != "unhealthy" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestPredictOK(t *testing.T) {
	r := NewMux(&mockService{days: 30, churn: 18.5})
	w := postJSON(t, r, "/predict", validInput())
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var pred types.CustomerPrediction
	if err := json.Unmarshal(w.Body.Bytes(), &pred); err != nil {
		t.Fatalf("json: %v", err)
	}
	if pred.CustomerID != 7 {
		t.Fatalf("customer id not echoed: %+v", pred)
	}
	if pred.ChurnProbability < 0 || pred.ChurnProbability > 100 {
		t.Fatalf("churn probability out of range: %+v", pred)
	}
}

func TestPredictBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if d := errorDetail(t, w); d != "invalid JSON body" {
		t.Fatalf("detail=%q", d)
	}
}

func TestPredictUnsupportedMediaType(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictBodyTooLarge(t *testing.T) {
	r := NewMux(&mockService{})
	big := make([]byte, (1<<20)+10)
	for i := range big {
		big[i] = 'a'
	}
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestPredictValidationRejected(t *testing.T) {
	r := NewMux(&mockService{})
	cases := []struct {
		name   string
		mutate func(*types.CustomerInput)
	}{
		{"negative recency", func(c *types.CustomerInput) { c.RecencyDays = -1 }},
		{"zero frequency", func(c *types.CustomerInput) { c.Frequency = 0 }},
		{"unknown attribution", func(c *types.CustomerInput) { c.Attribution = "Source: Nowhere" }},
		{"unknown customer type", func(c *types.CustomerInput) { c.CustomerType = "lapsed" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			w := postJSON(t, r, "/predict", in)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if errorDetail(t, w) == "" {
				t.Fatalf("expected a validation detail")
			}
		})
	}
}

func TestPredictNotLoadedMaps500(t *testing.T) {
	r := NewMux(&mockService{predictErr: model.ErrNotLoaded()})
	w := postJSON(t, r, "/predict", validInput())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if d := errorDetail(t, w); !strings.Contains(d, "not loaded") {
		t.Fatalf("detail=%q", d)
	}
}

func TestPredictGenericErrorMaps500(t *testing.T) {
	r := NewMux(&mockService{predictErr: io.EOF})
	w := postJSON(t, r, "/predict", validInput())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	// internal errors must not leak into the detail
	if d := errorDetail(t, w); d != "prediction failed" {
		t.Fatalf("detail=%q", d)
	}
}

func TestPredictHTTPErrorMapping(t *testing.T) {
	r := NewMux(&mockService{predictErr: mockHTTPError{msg: "too busy", code: http.StatusTooManyRequests}})
	w := postJSON(t, r, "/predict", validInput())
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	r := NewMux(&mockService{churn: 10})
	var req types.BatchPredictionRequest
	for _, id := range []int{3, 1, 2} {
		in := validInput()
		in.CustomerID = id
		in.Frequency = id * 10
		req.Customers = append(req.Customers, in)
	}
	w := postJSON(t, r, "/predict/batch", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.BatchPredictionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Predictions) != len(req.Customers) {
		t.Fatalf("len=%d want %d", len(resp.Predictions), len(req.Customers))
	}
	for i, p := range resp.Predictions {
		if p.CustomerID != req.Customers[i].CustomerID {
			t.Fatalf("order not preserved at %d: %+v", i, resp.Predictions)
		}
	}
}

func TestBatchAllOrNothing(t *testing.T) {
	r := NewMux(&mockService{})
	req := types.BatchPredictionRequest{Customers: []types.CustomerInput{validInput(), validInput()}}
	req.Customers[1].RecencyDays = -5
	w := postJSON(t, r, "/predict/batch", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if d := errorDetail(t, w); !strings.Contains(d, "customers[1]") {
		t.Fatalf("detail=%q", d)
	}
}

func TestBatchEmpty(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/predict/batch", types.BatchPredictionRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBatchTooLarge(t *testing.T) {
	SetMaxBatchSize(2)
	t.Cleanup(func() { SetMaxBatchSize(0) })
	r := NewMux(&mockService{})
	req := types.BatchPredictionRequest{Customers: []types.CustomerInput{validInput(), validInput(), validInput()}}
	w := postJSON(t, r, "/predict/batch", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if d := errorDetail(t, w); !strings.Contains(d, "exceeds limit") {
		t.Fatalf("detail=%q", d)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

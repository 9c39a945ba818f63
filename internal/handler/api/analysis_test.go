package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"arina/internal/analysis/feasibility"
	"arina/internal/domain/models"
	"arina/internal/repository"
	"arina/internal/usecase"
	"arina/pkg/cache"
	"arina/pkg/logger"
)

func newTestHandler(t *testing.T) (*echo.Echo, *AnalysisHandler) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store := repository.NewMemoryAnalysisStore()
	metrics := &noopMetrics{}
	recorder := usecase.NewRecorder(nil, store, metrics, "direct")
	engines := usecase.NewCalculationEngines(feasibility.DefaultPolicy())
	analyses := usecase.NewAnalysisService(engines, recorder, store, cache.NewMemoryCache(), log)
	recs := usecase.NewRecommendationService(store, cache.NewMemoryCache(), time.Hour, log)

	h := NewAnalysisHandler(log, analyses, recs)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(backend string, typ models.AnalysisType) {}
func (noopMetrics) RecordError(kind string)                                {}
func (noopMetrics) RecordObjective(typ string, value float64)              {}
func (noopMetrics) RecordLatency(op string, seconds float64)               {}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const feasibilityBody = `{
	"userId": "user-1",
	"input": {
		"businessName": "Catfish Pond",
		"investmentCosts": [{"id":"1","name":"Pond","quantity":1,"price":20000000,"amount":20000000}],
		"operationalCosts": [{"id":"2","name":"Feed","quantity":100,"price":15000,"amount":1500000}],
		"productionCostPerUnit": 7000,
		"monthlySalesVolume": 1000,
		"markup": 50,
		"projectLifespan": 5
	}
}`

func TestFeasibilityEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", feasibilityBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			Result models.FeasibilityResult `json:"result"`
			Save   usecase.SaveOutcome      `json:"save"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Result.SellingPrice != 12750 {
		t.Errorf("sellingPrice = %v, want 12750", resp.Data.Result.SellingPrice)
	}
	if !resp.Data.Save.Saved || resp.Data.Save.AnalysisID == "" {
		t.Errorf("save outcome = %+v, want saved with id", resp.Data.Save)
	}
}

func TestFeasibilitySaveFalse(t *testing.T) {
	e, _ := newTestHandler(t)

	body := strings.Replace(feasibilityBody, `"userId": "user-1",`, `"userId": "user-1", "save": false,`, 1)
	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Save usecase.SaveOutcome `json:"save"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Save.Saved {
		t.Error("save: false must skip persistence")
	}
}

func TestFeasibilityValidationError(t *testing.T) {
	e, _ := newTestHandler(t)

	body := strings.Replace(feasibilityBody, `"monthlySalesVolume": 1000`, `"monthlySalesVolume": 0`, 1)
	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", body)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Status)
	}
}

func TestFeasibilityDomainError(t *testing.T) {
	e, _ := newTestHandler(t)

	// Zero markup makes revenue exactly cover costs; payback is undefined.
	body := strings.Replace(feasibilityBody, `"markup": 50`, `"markup": 0`, 1)
	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", body)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.Status)
	}
}

func TestMissingUserIDRejected(t *testing.T) {
	e, _ := newTestHandler(t)

	body := strings.Replace(feasibilityBody, `"userId": "user-1",`, ``, 1)
	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", body)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Status)
	}
}

func TestForecastEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	body := `{
		"userId": "user-1",
		"input": {
			"productName": "Chili",
			"historicalDemand": [
				{"id":"1","period":"Month 1","demand":10},
				{"id":"2","period":"Month 2","demand":20},
				{"id":"3","period":"Month 3","demand":30}
			],
			"method": "sma",
			"periodLength": 3
		}
	}`
	rec := doJSON(e, http.MethodPost, "/api/analysis/forecast", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Result models.ForecastResult `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Result.Forecasted) != 1 {
		t.Fatalf("forecasted = %+v", resp.Data.Result.Forecasted)
	}
	got := resp.Data.Result.Forecasted[0]
	if got.Period != "Period 4" || got.Forecast != 20 {
		t.Errorf("forecast = %+v, want Period 4 / 20", got)
	}
}

func TestOptimizationEndpointInfeasible(t *testing.T) {
	e, _ := newTestHandler(t)

	// Contradictory constraints: a normal 200 with feasible=false.
	body := `{
		"userId": "user-1",
		"input": {
			"name": "Land split",
			"type": "profit_max",
			"variables": [{"id":"x","name":"Corn","lowerBound":0,"upperBound":10,"profit":2}],
			"constraints": [
				{"id":"c1","name":"min","variables":[{"variableId":"x","coefficient":1}],"rhs":5,"sign":">="},
				{"id":"c2","name":"max","variables":[{"variableId":"x","coefficient":1}],"rhs":3,"sign":"<="}
			]
		}
	}`
	rec := doJSON(e, http.MethodPost, "/api/analysis/optimization", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Result models.OptimizationResult `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Result.Feasible {
		t.Error("expected infeasible result")
	}
	if !strings.Contains(strings.ToLower(resp.Data.Result.Summary), "infeasible") {
		t.Errorf("summary = %q", resp.Data.Result.Summary)
	}
}

func TestHistoryAndDeleteEndpoints(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", feasibilityBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d", rec.Code)
	}
	var seeded struct {
		Data struct {
			Save usecase.SaveOutcome `json:"save"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &seeded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := seeded.Data.Save.AnalysisID

	list := doJSON(e, http.MethodGet, "/api/analysis?userId=user-1", "")
	if list.Code != http.StatusOK {
		t.Fatalf("history status = %d, body %s", list.Code, list.Body.String())
	}
	var listResp struct {
		Data struct {
			Rows  []models.AnalysisRecord `json:"rows"`
			Total int64                   `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listResp.Data.Total != 1 || len(listResp.Data.Rows) != 1 {
		t.Fatalf("list = %+v", listResp.Data)
	}

	get := doJSON(e, http.MethodGet, fmt.Sprintf("/api/analysis/%s?userId=user-1", id), "")
	if get.Code != http.StatusOK {
		t.Fatalf("get status = %d", get.Code)
	}

	del := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/analysis/%s?userId=user-1", id), "")
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.Code)
	}

	gone := doJSON(e, http.MethodGet, fmt.Sprintf("/api/analysis/%s?userId=user-1", id), "")
	var goneResp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(gone.Body.Bytes(), &goneResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if goneResp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", goneResp.Status)
	}
}

func TestRecommendationEndpoints(t *testing.T) {
	e, _ := newTestHandler(t)

	if rec := doJSON(e, http.MethodPost, "/api/analysis/feasibility", feasibilityBody); rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d", rec.Code)
	}

	gen := doJSON(e, http.MethodPost, "/api/recommendations/generate", `{"userId":"user-1"}`)
	if gen.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", gen.Code, gen.Body.String())
	}
	var genResp struct {
		Data models.RecommendationSet `json:"data"`
	}
	if err := json.Unmarshal(gen.Body.Bytes(), &genResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(genResp.Data.Items) != 1 {
		t.Fatalf("items = %+v", genResp.Data.Items)
	}

	latest := doJSON(e, http.MethodGet, "/api/recommendations/user-1", "")
	if latest.Code != http.StatusOK {
		t.Fatalf("latest status = %d", latest.Code)
	}

	none := doJSON(e, http.MethodGet, "/api/recommendations/nobody", "")
	var noneResp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(none.Body.Bytes(), &noneResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if noneResp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", noneResp.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

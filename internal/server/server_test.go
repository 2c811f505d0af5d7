package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/rekap/dataset"
	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/internal/testutil"
	"github.com/spektr-org/rekap/tabular"
)

func newTestServer(t *testing.T, loaded bool) (*Server, http.Handler) {
	t.Helper()
	store := dataset.NewStore(nil)
	if loaded {
		ds, err := dataset.FromTable("recap.csv", tabular.ParseText(testutil.RecapCSV))
		require.NoError(t, err)
		store.Replace(ds)
	}
	s := New(Config{Store: store, Logger: testutil.NewTestLogger(t)})
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, true)
	rec, body := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 6, body["records"])
}

func TestNoDataset(t *testing.T) {
	_, h := newTestServer(t, false)
	for _, path := range []string{"/api/dataset", "/api/records", "/api/kpis", "/api/aggregates/customer-count"} {
		rec, body := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, CodeNoDataset, errorCode(body), path)
	}
}

func TestDatasetInfo(t *testing.T) {
	_, h := newTestServer(t, true)
	rec, body := do(t, h, http.MethodGet, "/api/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recap.csv", body["source"])
	assert.EqualValues(t, 6, body["records"])
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, body, "roles")
}

func TestUpload(t *testing.T) {
	s, h := newTestServer(t, true)
	before := s.store.Current().ID

	csv := "CUSTOMER NAME,MARKERTING,KETERANGAN\nPT Baru,Eve,JADI OC\n"
	rec, body := do(t, h, http.MethodPost, "/api/dataset?name=new.csv", csv)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, body["records"])
	assert.NotEqual(t, before, s.store.Current().ID)

	rec, body = do(t, h, http.MethodGet, "/api/kpis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	kpis := body["kpis"].(map[string]any)
	assert.EqualValues(t, 1, kpis["totalRfq"])
}

func TestUploadErrors(t *testing.T) {
	s, h := newTestServer(t, true)
	before := s.store.Current().ID

	rec, body := do(t, h, http.MethodPost, "/api/dataset", "A,B\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidQuery, errorCode(body))

	rec, body = do(t, h, http.MethodPost, "/api/dataset?name=empty.csv", "CUSTOMER,SALES\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, tabular.CodeEmptyDataset, errorCode(body))

	rec, body = do(t, h, http.MethodPost, "/api/dataset?name=recap.pdf", "%PDF")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, tabular.CodeUnreadableInput, errorCode(body))

	assert.Equal(t, before, s.store.Current().ID, "failed uploads keep the served dataset")
}

func TestRecords(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/records?customer=maju&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["matched"])
	assert.EqualValues(t, 6, body["total"])
	assert.Len(t, body["records"], 2)

	rec, _ = do(t, h, http.MethodGet, "/api/records?sales=bob&converted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestKPIsFiltered(t *testing.T) {
	_, h := newTestServer(t, true)
	rec, body := do(t, h, http.MethodGet, "/api/kpis?sales=Bob", "")
	require.Equal(t, http.StatusOK, rec.Code)

	kpis := body["kpis"].(map[string]any)
	assert.EqualValues(t, 3, kpis["totalRfq"])
	assert.EqualValues(t, 1, kpis["converted"])
	assert.Contains(t, body["reply"], "3 RFQ | 1 converted")
}

func TestSummary(t *testing.T) {
	_, h := newTestServer(t, true)
	rec, body := do(t, h, http.MethodGet, "/api/summary?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["customers"], 1)
	assert.EqualValues(t, 3, body["totalCustomers"])
}

func TestAggregate(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/aggregates/customer-count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer-count", body["aggregate"])
	rows := body["rows"].([]any)
	require.Len(t, rows, 3)
	first := rows[0].(map[string]any)
	assert.Equal(t, "PT Maju", first["key"])
	assert.EqualValues(t, 3, first["count"])
	assert.NotNil(t, body["tableData"])

	rec, body = do(t, h, http.MethodGet, "/api/aggregates/customer-conversion?converted=true&notConverted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, r := range body["rows"].([]any) {
		assert.Positive(t, r.(map[string]any)["converted"])
	}
}

func TestAggregateErrors(t *testing.T) {
	_, h := newTestServer(t, true)
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown kind", "/api/aggregates/nope", http.StatusNotFound, CodeNotFound},
		{"bad mode", "/api/aggregates/customer-volume?mode=sideways", http.StatusBadRequest, CodeInvalidQuery},
		{"bad breakdown", "/api/aggregates/customer-breakdown?by=colour", http.StatusBadRequest, CodeInvalidQuery},
		{"bad limit", "/api/aggregates/customer-count?limit=-3", http.StatusBadRequest, CodeInvalidQuery},
		{"bad date", "/api/aggregates/customer-count?from=yesterday", http.StatusBadRequest, CodeInvalidQuery},
		{"bad bool", "/api/aggregates/customer-count?converted=perhaps", http.StatusBadRequest, CodeInvalidQuery},
		{"unknown route", "/api/nothing", http.StatusNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestAggregateCustomerBreakdown(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/aggregates/customer-breakdown?customerExact=PT%20Maju&by=sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PT Maju", body["customer"])
	assert.Equal(t, "salesperson", body["breakdown"])
	rows := body["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "Bob", first["key"])
	assert.EqualValues(t, 2, first["total"])
	assert.EqualValues(t, 1, first["converted"])

	rec, body = do(t, h, http.MethodGet, "/api/aggregates/rfq-per-month", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []string
	for _, r := range body["rows"].([]any) {
		keys = append(keys, r.(map[string]any)["key"].(string))
	}
	assert.Equal(t, []string{"2024-03", "2024-02", "2024-01", engine.NoDateKey}, keys)
}

func TestAggregateKinds(t *testing.T) {
	_, h := newTestServer(t, true)
	rec, _ := do(t, h, http.MethodGet, "/api/aggregates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var kinds []aggregateKind
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kinds))
	assert.Len(t, kinds, len(engine.AggregateKinds))
	assert.Equal(t, engine.AggCustomerBreakdown, kinds[len(kinds)-1].Kind)
}

func TestFacets(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/facets/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "salesperson", body["facet"])
	options := body["options"].([]any)
	require.Len(t, options, 3)
	assert.Equal(t, "Bob", options[0].(map[string]any)["key"])

	rec, _ = do(t, h, http.MethodGet, "/api/facets/colour", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCharts(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/charts/customer-salesperson?orientation=sales-customer&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sales", body["xAxis"])
	assert.NotEmpty(t, body["series"])

	rec, body = do(t, h, http.MethodGet, "/api/charts/customer-volume?mode=converted", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["series"], 1)

	rec, body = do(t, h, http.MethodGet, "/api/charts/customer-conversion", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bar", body["chartType"])

	rec, body = do(t, h, http.MethodGet, "/api/charts/customer-volume?customer=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["series"])

	rec, _ = do(t, h, http.MethodGet, "/api/charts/customer-salesperson?orientation=diagonal", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryDocument(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodPost, "/api/query", `{"aggregate":"customer-volume","mode":"not-converted","limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "customer-volume", body["aggregate"])
	assert.Len(t, body["rows"], 1)

	rec, body = do(t, h, http.MethodPost, "/api/query", `{"aggregate":"revenue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidQuery, errorCode(body))

	rec, _ = do(t, h, http.MethodPost, "/api/query", `{"aggregate":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// chartPoints returns label → value for the single series of a chart body.
func chartPoints(t *testing.T, body map[string]any) map[string]float64 {
	t.Helper()
	series := body["series"].([]any)
	require.Len(t, series, 1)
	points := map[string]float64{}
	for _, p := range series[0].(map[string]any)["data"].([]any) {
		point := p.(map[string]any)
		points[point["label"].(string)] = point["value"].(float64)
	}
	return points
}

func TestConversionGatesMatchAcrossViews(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodGet, "/api/aggregates/customer-conversion?notConverted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rates := map[string]float64{}
	for _, r := range body["rows"].([]any) {
		row := r.(map[string]any)
		rates[row["customer"].(string)] = row["conversionRate"].(float64)
	}
	assert.InDelta(t, 66.67, rates["PT Maju"], 0.01)
	assert.InDelta(t, 50, rates["CV Sentosa"], 0.01)
	assert.NotContains(t, rates, "UD Jaya")

	rec, body = do(t, h, http.MethodGet, "/api/charts/customer-conversion?notConverted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]float64{"PT Maju": 66.67, "CV Sentosa": 50}, chartPoints(t, body))

	rec, body = do(t, h, http.MethodGet, "/api/aggregates/customer-volume?notConverted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := body["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, "PT Maju", first["customer"])
	assert.EqualValues(t, 3, first["total"])
	assert.EqualValues(t, 1, first["notConverted"])

	rec, body = do(t, h, http.MethodGet, "/api/charts/customer-volume?notConverted=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]float64{"PT Maju": 2, "CV Sentosa": 1}, chartPoints(t, body))
}

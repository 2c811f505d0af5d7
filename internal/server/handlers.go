package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spektr-org/rekap/dataset"
	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/schema"
)

// ============================================================================
// DATASET
// ============================================================================

type datasetInfo struct {
	ID       uuid.UUID              `json:"id"`
	Source   string                 `json:"source"`
	LoadedAt time.Time              `json:"loadedAt"`
	Rows     int                    `json:"rows"`
	Records  int                    `json:"records"`
	Headers  []string               `json:"headers"`
	Roles    schema.ColumnRoleMap   `json:"roles"`
	Profiles []schema.ColumnProfile `json:"profiles"`
}

func newDatasetInfo(ds *dataset.Dataset) datasetInfo {
	return datasetInfo{
		ID:       ds.ID,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Rows:     ds.Rows,
		Records:  ds.Len(),
		Headers:  ds.Headers,
		Roles:    ds.Roles,
		Profiles: ds.Profiles,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	body := map[string]any{"status": "ok", "records": ds.Len()}
	if ds != nil {
		body["dataset"] = ds.ID
	}
	writeJSON(w, http.StatusOK, body)
}

// current returns the served dataset or writes a 404.
func (s *Server) current(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds := s.store.Current()
	if ds == nil {
		writeError(w, http.StatusNotFound, CodeNoDataset, "no dataset loaded")
		return nil, false
	}
	return ds, true
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDatasetInfo(ds))
}

// handleUpload replaces the served dataset with the request body.
// ?name= carries the file name, whose extension selects the format.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimSpace(r.URL.Query().Get("name")))
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "name query parameter is required")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	opts := append([]dataset.Option{dataset.WithLogger(s.logger)}, s.loadOpts...)
	ds, err := dataset.LoadReader(r.Context(), name, body, opts...)
	if err != nil {
		s.logger.Warn("upload rejected", "name", name, "error", err)
		writeErr(w, err)
		return
	}

	previous := s.store.Replace(ds)
	if previous != nil {
		s.logger.Info("dataset replaced", "previous", previous.ID, "current", ds.ID)
	}
	writeJSON(w, http.StatusCreated, newDatasetInfo(ds))
}

// ============================================================================
// RECORDS AND SUMMARIES
// ============================================================================

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := limitParam(r, 0)
	if err != nil {
		writeErr(w, err)
		return
	}

	matched := engine.Filter(ds.Records(), spec)
	writeJSON(w, http.StatusOK, map[string]any{
		"matched": len(matched),
		"total":   ds.Len(),
		"records": engine.Top(matched, limit),
	})
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	records := engine.Filter(ds.Records(), spec)
	kpis := engine.ComputeKPIs(records)
	writeJSON(w, http.StatusOK, map[string]any{
		"kpis":            kpis,
		"ordersWithValue": engine.OrdersWithValue(records),
		"reply":           engine.KPIReply(kpis),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := limitParam(r, s.settings.Limits.Insights)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildInsights(engine.Filter(ds.Records(), spec), limit))
}

// ============================================================================
// AGGREGATES AND FACETS
// ============================================================================

type aggregateKind struct {
	Kind  engine.AggregateKind `json:"kind"`
	Title string               `json:"title"`
}

func (s *Server) handleAggregateKinds(w http.ResponseWriter, _ *http.Request) {
	kinds := make([]aggregateKind, 0, len(engine.AggregateKinds))
	for _, k := range engine.AggregateKinds {
		kinds = append(kinds, aggregateKind{Kind: k, Title: k.Title()})
	}
	writeJSON(w, http.StatusOK, kinds)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	kind, err := engine.ParseAggregateKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	ds, ok := s.current(w)
	if !ok {
		return
	}

	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	mode, err := engine.ParseStatusMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := limitParam(r, s.settings.Limit(kind))
	if err != nil {
		writeErr(w, err)
		return
	}

	result, err := engine.Execute(ds.Records(), engine.Query{
		Aggregate: kind,
		Filter:    spec,
		Mode:      mode,
		Breakdown: engine.BreakdownDimension(r.URL.Query().Get("by")),
		Limit:     limit,
	}, engine.WithLogger(s.logger))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleQuery runs a posted QueryDocument.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeErr(w, err)
		return
	}
	doc, err := engine.ParseQueryDocument(string(body))
	if err != nil {
		writeErr(w, err)
		return
	}
	loc, err := s.settings.Location()
	if err != nil {
		writeErr(w, err)
		return
	}
	q, err := doc.Query(loc, s.settings.Limit)
	if err != nil {
		writeErr(w, err)
		return
	}

	result, err := engine.Execute(ds.Records(), q, engine.WithLogger(s.logger))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFacet(w http.ResponseWriter, r *http.Request) {
	facet, err := engine.ParseFacet(chi.URLParam(r, "facet"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	ds, ok := s.current(w)
	if !ok {
		return
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"facet":   facet,
		"options": engine.FacetCounts(engine.Filter(ds.Records(), spec), facet),
	})
}

// ============================================================================
// CHARTS
// ============================================================================

// filtered returns the dataset records matching the request filters.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) ([]engine.Record, bool) {
	ds, ok := s.current(w)
	if !ok {
		return nil, false
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return engine.Filter(ds.Records(), spec), true
}

// writeChart writes cfg, or an empty chart object when there is nothing to plot.
func writeChart(w http.ResponseWriter, cfg *engine.ChartConfig) {
	if cfg == nil {
		writeJSON(w, http.StatusOK, map[string]any{"series": []engine.ChartSeries{}})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleStackedChart(w http.ResponseWriter, r *http.Request) {
	orientation, err := engine.ParseOrientation(r.URL.Query().Get("orientation"))
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := limitParam(r, s.settings.Limits.Pairs)
	if err != nil {
		writeErr(w, err)
		return
	}
	records, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeChart(w, engine.BuildStackedChart(engine.CountByCustomerSalesperson(records), orientation, limit))
}

func (s *Server) handleVolumeChart(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, s.settings.Limits.Volume)
	if err != nil {
		writeErr(w, err)
		return
	}
	records, mode, ok := s.gatedRecords(w, r)
	if !ok {
		return
	}
	rows := engine.Top(engine.TopCustomersByVolume(records, mode), limit)
	writeChart(w, engine.BuildVolumeChart(rows, mode))
}

func (s *Server) handleConversionChart(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, s.settings.Limits.Conversion)
	if err != nil {
		writeErr(w, err)
		return
	}
	records, mode, ok := s.gatedRecords(w, r)
	if !ok {
		return
	}
	rows := engine.FilterConversionRows(engine.ConversionByCustomer(records), mode)
	writeChart(w, engine.BuildConversionChart(engine.Top(rows, limit)))
}

// gatedRecords filters the dataset for the volume and conversion charts.
// A one-sided conversion gate becomes the display mode, so counts and rates
// cover every RFQ of a customer, as they do in the aggregates.
func (s *Server) gatedRecords(w http.ResponseWriter, r *http.Request) ([]engine.Record, engine.StatusMode, bool) {
	mode, err := engine.ParseStatusMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeErr(w, err)
		return nil, "", false
	}
	ds, ok := s.current(w)
	if !ok {
		return nil, "", false
	}
	spec, err := s.filterSpec(r)
	if err != nil {
		writeErr(w, err)
		return nil, "", false
	}
	spec, mode = engine.SplitConversionGate(spec, mode)
	return engine.Filter(ds.Records(), spec), mode, true
}

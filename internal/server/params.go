package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spektr-org/rekap/engine"
)

// filterInput reads the filter query parameters.
func filterInput(q url.Values) engine.FilterInput {
	return engine.FilterInput{
		Customer:      q.Get("customer"),
		CustomerExact: q.Get("customerExact"),
		Sales:         q.Get("sales"),
		Status:        q.Get("status"),
		From:          q.Get("from"),
		To:            q.Get("to"),
		Converted:     q.Get("converted"),
		NotConverted:  q.Get("notConverted"),
	}
}

func (s *Server) filterSpec(r *http.Request) (engine.FilterSpec, error) {
	loc, err := s.settings.Location()
	if err != nil {
		return engine.FilterSpec{}, err
	}
	return filterInput(r.URL.Query()).Spec(loc)
}

// limitParam reads ?limit=, falling back to def when absent. 0 means all rows.
func limitParam(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer, got %q", engine.ErrInvalidQuery, raw)
	}
	return n, nil
}

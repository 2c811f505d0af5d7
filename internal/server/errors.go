package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/tabular"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidQuery     = "INVALID_QUERY"
	CodeNotFound         = "NOT_FOUND"
	CodeNoDataset        = "NO_DATASET"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeErr maps err onto a status and code.
//
//	engine.ErrInvalidQuery          → 400 INVALID_QUERY
//	tabular unreadable / empty      → 422 UNREADABLE_INPUT / EMPTY_DATASET
//	anything else                   → 500 INTERNAL
func writeErr(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, engine.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, err.Error())
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidQuery, err.Error())
	case tabular.IsUnreadable(err), tabular.IsEmptyDataset(err):
		writeError(w, http.StatusUnprocessableEntity, tabular.ErrorCode(err), err.Error())
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

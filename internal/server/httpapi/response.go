package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fileporter/fileporter/internal/common"
)

// result is the uniform JSON envelope every endpoint answers with.
type result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// envelope code for an incomplete merge. The HTTP status is a plain 409,
// the code lets clients tell "retry after uploading the rest" apart from
// "task already exists".
const codeIncomplete = 425

func writeJSON(w http.ResponseWriter, status int, res result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, result{Code: http.StatusOK, Msg: "ok", Data: data})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, result{Code: http.StatusBadRequest, Msg: msg})
}

// writeError maps service errors onto HTTP statuses and envelope codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, result{Code: http.StatusNotFound, Msg: err.Error()})
	case errors.Is(err, common.ErrTaskConflict):
		writeJSON(w, http.StatusConflict, result{Code: http.StatusConflict, Msg: err.Error()})
	case errors.Is(err, common.ErrChunksIncomplete):
		writeJSON(w, http.StatusConflict, result{Code: codeIncomplete, Msg: err.Error()})
	case errors.Is(err, common.ErrUnsupported):
		writeJSON(w, http.StatusNotImplemented, result{Code: http.StatusNotImplemented, Msg: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, result{Code: http.StatusInternalServerError, Msg: err.Error()})
	}
}

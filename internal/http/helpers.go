package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/core"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, ok := marshalJSON(w, v)
	if !ok {
		return
	}
	writeJSONBytes(w, status, body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func marshalJSON(w http.ResponseWriter, v any) ([]byte, bool) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to encode response")
		return nil, false
	}
	return body, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body, _ := json.Marshal(errorBody{Error: errorDetail{Code: code, Message: message}})
	writeJSONBytes(w, status, body)
}

// writeDomainError maps the domain error taxonomy onto structured HTTP
// error responses without leaking stack detail.
func writeDomainError(w http.ResponseWriter, err error) {
	var malformed *core.MalformedInputError
	var persist *core.PersistenceError
	switch {
	case errors.Is(err, core.ErrEmptyLedger):
		writeError(w, http.StatusConflict, "empty_ledger", "the ledger has no records")
	case errors.Is(err, core.ErrNoInputFiles):
		writeError(w, http.StatusUnprocessableEntity, "no_input_files", err.Error())
	case errors.As(err, &malformed):
		writeError(w, http.StatusUnprocessableEntity, "malformed_input", malformed.Error())
	case errors.As(err, &persist):
		writeError(w, http.StatusInternalServerError, "persistence_error", persist.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

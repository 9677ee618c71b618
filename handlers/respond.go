package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/imranKhanTsx/indian-cences/census"
)

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses. A
// cancelled request writes nothing; the client is gone.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Printf("Request cancelled: %s %s", r.Method, r.URL.Path)
		return
	}

	var (
		ve *census.ValidationError
		nf *census.NotFoundError
		ue *census.UpstreamError
	)

	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ue):
		log.Printf("Upstream error on %s: %v", r.URL.Path, err)
		msg = "internal server error"
	default:
		log.Printf("Unhandled error on %s: %v", r.URL.Path, err)
		msg = "internal server error"
	}

	writeJSON(w, status, errorBody{Error: msg, Code: status})
}

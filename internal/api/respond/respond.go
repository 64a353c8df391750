package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

type response struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, response{Data: data})
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, response{Data: data})
}

// Fail writes an error response with the given status code.
func Fail(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, response{Error: err.Error()})
}

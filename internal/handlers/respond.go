// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the gallery
// server. Handlers are grouped by concern (auth, gallery, admin,
// orders) and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fotoproof/internal/models"
)

// maxBodyBytes caps request bodies. Order payloads are the largest
// legitimate requests and stay far below this.
const maxBodyBytes = 1 << 20

// errorResponse is the uniform error body for all endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError sends a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// readJSON decodes the request body into dst. On failure it writes a
// 400 response and returns false; the handler should return immediately.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

// writeDomainError maps the domain error categories onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure: logged
// with context and reported as a plain 500.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// jsonError writes {"ok":false,"error":msg}.
func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, errorResponse{OK: false, Error: msg})
}

package http

import (
	"encoding/json"
	"net/http"
)

// writeJSON serializes data and writes it with the given status code. A
// marshal failure turns into a 500 before any body is written.
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonData)
}

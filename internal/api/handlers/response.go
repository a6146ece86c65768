package handlers

import (
	"encoding/json"
	"net/http"
)

// response is the uniform {success, message, data} envelope wrapping
// every response body.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respondOK(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

func respondFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

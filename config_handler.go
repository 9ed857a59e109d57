package main

import (
	"encoding/json"
	"net/http"

	"lotqc/config"
)

// GetConfigHandler returns the running configuration with credentials
// removed from the DSN.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig().Redacted()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}
}

package main

import (
	"net/http"

	"lotqc/lot"
)

func SetupRoutes(mux *http.ServeMux, svc *lot.Service) {
	mux.HandleFunc("GET /lots", lot.ListLotsHandler(svc))
	mux.HandleFunc("POST /lots", lot.CreateLotHandler(svc))
	mux.HandleFunc("GET /lots/export", lot.ExportLotsHandler(svc))
	mux.HandleFunc("POST /lots/import", lot.ImportLotsHandler(svc))
	mux.HandleFunc("POST /lots/scan", lot.ScanLotHandler(svc))
	mux.HandleFunc("GET /lots/{id}", lot.GetLotHandler(svc))
	mux.HandleFunc("DELETE /lots/{id}", lot.DeleteLotHandler(svc))

	mux.HandleFunc("GET /compliant_lots", lot.CompliantLotsHandler(svc))
	mux.HandleFunc("GET /compliant_percentage", lot.CompliantPercentageHandler(svc))
	mux.HandleFunc("GET /expired_lots", lot.ExpiredLotsHandler(svc))

	mux.HandleFunc("GET /api/config", GetConfigHandler())
	mux.HandleFunc("GET /healthz", lot.HealthHandler(svc))
}

package lot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lotqc/model"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type LotListResponse struct {
	Lots []model.Lot `json:"lots"`
}

type LotResponse struct {
	Lot model.Lot `json:"lot"`
}

type CompliantLotsResponse struct {
	CompliantLots []model.Lot `json:"compliant_lots"`
}

type ExpiredLotsResponse struct {
	ExpiredLots []model.Lot `json:"expired_lots"`
}

type CompliantPercentageResponse struct {
	CompliantPercentage float64 `json:"compliant_percentage"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	LotID   int64  `json:"lot_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Message: message})
}

// writeError maps store and validation errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: ve.Error(), Field: ve.Field})
	case errors.Is(err, model.ErrLotNotFound):
		writeJSONError(w, "Lot not found", http.StatusNotFound)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// parseAsOf reads the optional as_of query parameter. A missing value
// yields the zero Date, which the service treats as today.
func parseAsOf(r *http.Request) (model.Date, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, &model.ValidationError{Field: "as_of", Message: err.Error()}
	}
	return d, nil
}

// parseLotID returns ErrLotNotFound for ids that are not integers, the
// same answer an unknown id gets.
func parseLotID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrLotNotFound
	}
	return id, nil
}

// ListLotsHandler returns every lot.
func ListLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lots, err := svc.GetAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, LotListResponse{Lots: lots})
	}
}

// CreateLotHandler creates a lot from a JSON body.
func CreateLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.LotRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		id, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Info().Int64("lot_id", id).Msg("lot created")
		writeJSON(w, http.StatusCreated, CreatedResponse{Message: "Lot created successfully", LotID: id})
	}
}

// GetLotHandler returns one lot by id.
func GetLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseLotID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		l, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, LotResponse{Lot: l})
	}
}

// DeleteLotHandler removes one lot by id.
func DeleteLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseLotID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Info().Int64("lot_id", id).Msg("lot deleted")
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Lot deleted successfully"})
	}
}

func CompliantLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := parseAsOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		lots, err := svc.GetCompliant(r.Context(), asOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, CompliantLotsResponse{CompliantLots: lots})
	}
}

func ExpiredLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := parseAsOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		lots, err := svc.GetExpired(r.Context(), asOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ExpiredLotsResponse{ExpiredLots: lots})
	}
}

func CompliantPercentageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := parseAsOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		pct, err := svc.GetCompliantPercentage(r.Context(), asOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, CompliantPercentageResponse{CompliantPercentage: pct})
	}
}

// HealthHandler reports whether the store answers.
func HealthHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

package lot

import (
	"encoding/json"
	"net/http"

	"lotqc/barcode"
	"lotqc/model"

	"github.com/rs/zerolog"
)

// ScanRequest creates a lot from a GS1 label. Dates come from AI(11) and
// AI(17); the label carries neither the product name nor the quantity.
type ScanRequest struct {
	Barcode     string  `json:"barcode"`
	ProductName *string `json:"product_name"`
	Quantity    *int64  `json:"quantity"`
}

type ScanResponse struct {
	Message   string `json:"message"`
	LotID     int64  `json:"lot_id"`
	Gtin14    string `json:"gtin14"`
	LotNumber string `json:"lot_number,omitempty"`
}

// LotRequest turns a decoded label into the same request a JSON create uses.
func (s ScanRequest) LotRequest() (model.LotRequest, *barcode.Result, error) {
	res, err := barcode.Parse(s.Barcode)
	if err != nil {
		return model.LotRequest{}, nil, &model.ValidationError{Field: "barcode", Message: err.Error()}
	}
	req := model.LotRequest{ProductName: s.ProductName, Quantity: s.Quantity}
	if !res.ProductionDate.IsZero() {
		d := res.ProductionDate.String()
		req.ProductionDate = &d
	}
	if !res.ExpirationDate.IsZero() {
		d := res.ExpirationDate.String()
		req.ExpirationDate = &d
	}
	return req, res, nil
}

// ScanLotHandler creates a lot from a scanned GS1 element string.
func ScanLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var scan ScanRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&scan); err != nil {
			writeJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		req, res, err := scan.LotRequest()
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().
			Int64("lot_id", id).
			Str("gtin14", res.Gtin14).
			Str("lot_number", res.LotNumber).
			Msg("lot created from barcode")
		writeJSON(w, http.StatusCreated, ScanResponse{
			Message:   "Lot created successfully",
			LotID:     id,
			Gtin14:    res.Gtin14,
			LotNumber: res.LotNumber,
		})
	}
}

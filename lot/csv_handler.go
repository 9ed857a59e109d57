package lot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"lotqc/model"
	"lotqc/parsers"

	"github.com/rs/zerolog"
)

const maxUploadBytes = 10 << 20

type ImportResponse struct {
	Message  string  `json:"message"`
	Imported int     `json:"imported"`
	LotIDs   []int64 `json:"lot_ids"`
}

type importErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteLotsCSV writes lots with a header row. UTF-8 output starts with a
// BOM so spreadsheet tools detect the encoding.
func WriteLotsCSV(w io.Writer, lots []model.Lot, enc string) error {
	if enc == parsers.EncodingUTF8 {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return err
		}
	}
	ew := parsers.NewEncodingWriter(w, enc)
	cw := csv.NewWriter(ew)
	cw.UseCRLF = true

	if err := cw.Write(parsers.LotCSVHeader); err != nil {
		return err
	}
	for _, l := range lots {
		record := []string{
			strconv.FormatInt(l.LotID, 10),
			l.ProductName,
			strconv.FormatInt(l.Quantity, 10),
			l.ProductionDate.String(),
			l.ExpirationDate.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return ew.Close()
}

// ExportLotsHandler downloads all lots as CSV (?encoding=utf-8|shift_jis).
func ExportLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enc, err := parsers.NormalizeEncoding(r.URL.Query().Get("encoding"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		lots, err := svc.GetAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		charset := "utf-8"
		if enc == parsers.EncodingShiftJIS {
			charset = "shift_jis"
		}
		filename := fmt.Sprintf("lots_%s.csv", svc.Today())
		w.Header().Set("Content-Type", "text/csv;charset="+charset)
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))

		if err := WriteLotsCSV(w, lots, enc); err != nil {
			// Headers are already sent; all that is left is to log.
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write lots CSV")
		}
	}
}

// ImportLotsHandler creates lots from an uploaded CSV ("file" form field,
// optional "encoding"). Nothing is stored unless every row is valid.
func ImportLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "Failed to read CSV file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		enc, err := parsers.NormalizeEncoding(r.FormValue("encoding"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		ins, err := parsers.ParseLotCSV(parsers.NewDecodingReader(file, enc))
		if err != nil {
			var csvErr *parsers.CSVError
			if errors.As(err, &csvErr) {
				msgs := make([]string, 0, len(csvErr.Rows))
				for _, row := range csvErr.Rows {
					msgs = append(msgs, row.Error())
				}
				writeJSON(w, http.StatusBadRequest, importErrorResponse{Message: "CSV contains invalid rows", Errors: msgs})
				return
			}
			writeJSONError(w, "Failed to parse CSV file: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(ins) == 0 {
			writeJSONError(w, "CSV contains no lots", http.StatusBadRequest)
			return
		}

		ids, err := svc.Import(r.Context(), ins)
		if err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Int("imported", len(ids)).Str("encoding", enc).Msg("lots imported from CSV")
		writeJSON(w, http.StatusCreated, ImportResponse{
			Message:  fmt.Sprintf("Imported %d lots", len(ids)),
			Imported: len(ids),
			LotIDs:   ids,
		})
	}
}

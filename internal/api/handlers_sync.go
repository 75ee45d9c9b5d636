package api

import (
	"net/http"
	"strconv"
	"time"
)

// maxUploadBytes bounds a single workbook upload (§5: "ingestion may
// request up to 5 min" but the payload itself still needs a bound against
// a runaway client).
const maxUploadBytes = 32 << 20

// handleSyncVacation implements POST /sync/vacation: ingest the vacation
// usage workbook (§4.2). preview=true runs the same parse/classify pass
// without writing, for an operator to review before committing.
func (h *Handlers) handleSyncVacation(w http.ResponseWriter, r *http.Request) {
	file, preview, err := openUpload(w, r)
	if err != nil {
		respondValidation(w, err.Error())
		return
	}
	defer file.Close()

	report, err := h.Ingestor.IngestVacationWorkbook(r.Context(), file, time.Now(), preview)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, report)
}

// handleSyncRegister implements POST /sync/register: ingest one of the
// three employee register workbooks (§4.2).
func (h *Handlers) handleSyncRegister(w http.ResponseWriter, r *http.Request) {
	file, preview, err := openUpload(w, r)
	if err != nil {
		respondValidation(w, err.Error())
		return
	}
	defer file.Close()

	report, err := h.Ingestor.IngestRegisterWorkbook(r.Context(), file, preview)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, report)
}

func openUpload(w http.ResponseWriter, r *http.Request) (multipartFile, bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, false, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, false, err
	}
	preview, _ := strconv.ParseBool(r.URL.Query().Get("preview"))
	return file, preview, nil
}

// multipartFile is the subset of multipart.File openUpload's caller needs.
type multipartFile interface {
	Read(p []byte) (n int, err error)
	Close() error
}

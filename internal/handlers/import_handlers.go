package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
)

// multipart parts beyond this are spooled to disk
const maxMultipartMemory = 8 << 20

// ImportHandler creates presentations from uploaded PDF files
type ImportHandler struct {
	service ContentService
	log     zerolog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(service ContentService, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		log:     log,
	}
}

// ImportPresentation reads the multipart "file" part as a PDF. The optional
// "name" field names the presentation, otherwise the file name is used.
// POST /api/presentations/import
func (h *ImportHandler) ImportPresentation(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.ImportPresentation"

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errs.HTTPErrorResponse(w, h.log, errs.E(errs.TooLarge, op, err))
			return
		}

		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, errs.Str("expected a multipart/form-data body")))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, errs.Parameter("file"), errs.Str("missing file part")))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	created, err := h.service.ImportPDF(r.Context(), name, file, header.Size)
	if err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusCreated, created)
}

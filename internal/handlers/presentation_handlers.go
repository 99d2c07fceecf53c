package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
)

// PresentationHandler handles HTTP requests for presentations
type PresentationHandler struct {
	service ContentService
	log     zerolog.Logger
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(service ContentService, log zerolog.Logger) *PresentationHandler {
	return &PresentationHandler{
		service: service,
		log:     log,
	}
}

// DeleteResponse is returned by a successful delete
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ListPresentations returns the whole collection
// GET /api/presentations
func (h *PresentationHandler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, h.service.ListPresentations(r.Context()))
}

// AddPresentation appends one presentation and echoes it
// POST /api/presentations
func (h *PresentationHandler) AddPresentation(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.AddPresentation"

	var p models.Presentation
	if err := decodeJSON(r, &p); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	if err := p.Validate(); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, err))
		return
	}

	created, err := h.service.AddPresentation(r.Context(), p)
	if err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusCreated, created)
}

// ReplacePresentations overwrites the collection with the request body
// PUT /api/presentations
func (h *PresentationHandler) ReplacePresentations(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.ReplacePresentations"

	var ps models.Presentations
	if err := decodeJSON(r, &ps); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	if ps == nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, errs.Str("expected a JSON array of presentations")))
		return
	}

	if err := ps.Validate(); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, err))
		return
	}

	if err := h.service.ReplacePresentations(r.Context(), ps); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusOK, ps)
}

// DeletePresentation removes a presentation and its quiz links
// DELETE /api/presentations/{id}
func (h *PresentationHandler) DeletePresentation(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.DeletePresentation"

	id := mux.Vars(r)["id"]

	if err := h.service.DeletePresentation(r.Context(), id); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusOK, DeleteResponse{Success: true})
}

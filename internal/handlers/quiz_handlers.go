package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
)

// QuizHandler handles HTTP requests for quiz links
type QuizHandler struct {
	service ContentService
	log     zerolog.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(service ContentService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		log:     log,
	}
}

// ListQuizzes returns the whole quiz map
// GET /api/quizzes
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, h.service.ListQuizzes(r.Context()))
}

// UpsertQuizLinks stores everything but fileId under quizzes[fileId]
// POST /api/quizzes
func (h *QuizHandler) UpsertQuizLinks(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.UpsertQuizLinks"

	var u models.QuizUpsert
	if err := decodeJSON(r, &u); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	if err := u.Validate(); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, errs.Parameter("fileId"), err))
		return
	}

	if err := h.service.UpsertQuizLinks(r.Context(), u.FileID, u.Links); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusCreated, u)
}

// ReplaceQuizzes overwrites the quiz map with the request body
// PUT /api/quizzes
func (h *QuizHandler) ReplaceQuizzes(w http.ResponseWriter, r *http.Request) {
	const op errs.Op = "handlers.ReplaceQuizzes"

	var quizzes models.QuizMap
	if err := decodeJSON(r, &quizzes); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	if quizzes == nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, errs.Str("expected a JSON object of quiz links")))
		return
	}

	if err := quizzes.Validate(); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(errs.InvalidRequest, op, err))
		return
	}

	if err := h.service.ReplaceQuizzes(r.Context(), quizzes); err != nil {
		errs.HTTPErrorResponse(w, h.log, errs.E(op, err))
		return
	}

	writeJSON(w, h.log, http.StatusOK, quizzes)
}

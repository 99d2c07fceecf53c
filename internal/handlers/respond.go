package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
)

// ContentService is what the handlers need from services.ContentService
type ContentService interface {
	ListPresentations(ctx context.Context) models.Presentations
	ListQuizzes(ctx context.Context) models.QuizMap
	AddPresentation(ctx context.Context, p models.Presentation) (models.Presentation, error)
	UpsertQuizLinks(ctx context.Context, fileID string, links models.QuizLinks) error
	ReplacePresentations(ctx context.Context, ps models.Presentations) error
	ReplaceQuizzes(ctx context.Context, quizzes models.QuizMap) error
	DeletePresentation(ctx context.Context, id string) error
	ImportPDF(ctx context.Context, name string, r io.ReaderAt, size int64) (models.Presentation, error)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writing response")
	}
}

// decodeJSON reads the whole body into v. The body is expected to be capped
// by middleware.BodyLimit.
func decodeJSON(r *http.Request, v interface{}) error {
	const op errs.Op = "handlers.decodeJSON"

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.E(errs.TooLarge, op, err)
		}

		return errs.E(errs.InvalidRequest, op, errs.Str("reading request body failed"))
	}

	if len(data) == 0 {
		return errs.E(errs.InvalidRequest, op, errs.Str("request body is empty"))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errs.E(errs.InvalidRequest, op, errs.Str("invalid JSON body: "+err.Error()))
	}

	return nil
}

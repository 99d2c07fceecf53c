package storage

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/metrics"
	"github.com/jrramp/arecheoedu/internal/models"
)

// DocumentStore loads and saves one whole collection.
type DocumentStore[T any] interface {
	// Load never fails. A document that is missing, unreadable or not valid
	// JSON of the right shape reads as the empty collection.
	Load(ctx context.Context) T
	Save(ctx context.Context, value T) error
}

// Document is a DocumentStore over a Backend.
type Document[T any] struct {
	name      string
	backend   Backend
	empty     func() T
	normalize func(T) T
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

var _ DocumentStore[models.Presentations] = &Document[models.Presentations]{}

func NewPresentations(backend Backend, log zerolog.Logger, m *metrics.Metrics) *Document[models.Presentations] {
	return &Document[models.Presentations]{
		name:    models.CollectionPresentations,
		backend: backend,
		empty:   func() models.Presentations { return models.Presentations{} },
		normalize: func(ps models.Presentations) models.Presentations {
			if ps == nil {
				return models.Presentations{}
			}
			return ps
		},
		log:     log.With().Str("collection", models.CollectionPresentations).Logger(),
		metrics: m,
	}
}

func NewQuizzes(backend Backend, log zerolog.Logger, m *metrics.Metrics) *Document[models.QuizMap] {
	return &Document[models.QuizMap]{
		name:    models.CollectionQuizzes,
		backend: backend,
		empty:   func() models.QuizMap { return models.QuizMap{} },
		normalize: func(q models.QuizMap) models.QuizMap {
			if q == nil {
				return models.QuizMap{}
			}
			return q
		},
		log:     log.With().Str("collection", models.CollectionQuizzes).Logger(),
		metrics: m,
	}
}

func (d *Document[T]) Name() string {
	return d.name
}

func (d *Document[T]) Load(ctx context.Context) T {
	data, err := d.backend.Read(ctx, d.name)
	d.metrics.StoreOp(d.name, "read", err)

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d.log.Warn().Msg("document missing, using empty collection")
		} else {
			d.log.Error().Err(err).Msg("reading document, using empty collection")
		}
		d.metrics.ReadFallback(d.name)

		return d.empty()
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		d.log.Error().Err(err).Msg("parsing document, using empty collection")
		d.metrics.ReadFallback(d.name)

		return d.empty()
	}

	return d.normalize(value)
}

func (d *Document[T]) Save(ctx context.Context, value T) error {
	const op errs.Op = "storage.Document.Save"

	data, err := json.MarshalIndent(d.normalize(value), "", "  ")
	if err != nil {
		d.log.Error().Err(err).Msg("encoding document")
		return errs.E(errs.Internal, op, err)
	}

	err = d.backend.Write(ctx, d.name, data)
	d.metrics.StoreOp(d.name, "write", err)

	if err != nil {
		d.log.Error().Err(err).Msg("writing document")
		return errs.E(errs.IO, op, err)
	}

	return nil
}

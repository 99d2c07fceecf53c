package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
	"github.com/jrramp/arecheoedu/internal/storage"
)

// Notifier receives a ChangeEvent after every successful write
type Notifier interface {
	Publish(event models.ChangeEvent)
}

// ContentService owns the presentations and quizzes collections. Every
// read-modify-write of a collection holds that collection's lock, so
// concurrent requests are applied one after the other. Writers in other
// processes are not coordinated with.
type ContentService struct {
	presMu        sync.RWMutex
	quizMu        sync.RWMutex
	presentations storage.DocumentStore[models.Presentations]
	quizzes       storage.DocumentStore[models.QuizMap]
	notifier      Notifier
	now           func() time.Time
	log           zerolog.Logger
}

// NewContentService creates the service. notifier may be nil.
func NewContentService(
	presentations storage.DocumentStore[models.Presentations],
	quizzes storage.DocumentStore[models.QuizMap],
	notifier Notifier,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		presentations: presentations,
		quizzes:       quizzes,
		notifier:      notifier,
		now:           time.Now,
		log:           log.With().Str("subsystem", "content_service").Logger(),
	}
}

func (s *ContentService) publish(collection, action, id string) {
	if s.notifier == nil {
		return
	}

	s.notifier.Publish(models.ChangeEvent{
		Collection: collection,
		Action:     action,
		ID:         id,
	})
}

// ListPresentations returns the whole collection, empty if it cannot be read.
func (s *ContentService) ListPresentations(ctx context.Context) models.Presentations {
	s.presMu.RLock()
	defer s.presMu.RUnlock()

	return s.presentations.Load(ctx)
}

// ListQuizzes returns the whole collection, empty if it cannot be read.
func (s *ContentService) ListQuizzes(ctx context.Context) models.QuizMap {
	s.quizMu.RLock()
	defer s.quizMu.RUnlock()

	return s.quizzes.Load(ctx)
}

// AddPresentation appends p as-is. Ids are not checked for collisions.
func (s *ContentService) AddPresentation(ctx context.Context, p models.Presentation) (models.Presentation, error) {
	const op errs.Op = "contentService.AddPresentation"

	if err := s.addPresentation(ctx, p); err != nil {
		return models.Presentation{}, errs.E(errs.Internal, op, errs.Msg("Failed to add presentation"), err)
	}

	return p, nil
}

func (s *ContentService) addPresentation(ctx context.Context, p models.Presentation) error {
	s.presMu.Lock()
	defer s.presMu.Unlock()

	ps := s.presentations.Load(ctx)
	ps = append(ps, p)

	if err := s.presentations.Save(ctx, ps); err != nil {
		return err
	}

	s.log.Info().Str("id", p.ID).Int("count", len(ps)).Msg("presentation added")
	s.publish(models.CollectionPresentations, models.ActionAdded, p.ID)

	return nil
}

// UpsertQuizLinks replaces the links stored under fileID.
func (s *ContentService) UpsertQuizLinks(ctx context.Context, fileID string, links models.QuizLinks) error {
	const op errs.Op = "contentService.UpsertQuizLinks"

	s.quizMu.Lock()
	defer s.quizMu.Unlock()

	quizzes := s.quizzes.Load(ctx)
	quizzes[fileID] = links

	if err := s.quizzes.Save(ctx, quizzes); err != nil {
		return errs.E(errs.Internal, op, errs.Parameter("fileId"), errs.Msg("Failed to save quizzes"), err)
	}

	s.log.Info().Str("file_id", fileID).Msg("quiz links saved")
	s.publish(models.CollectionQuizzes, models.ActionUpserted, fileID)

	return nil
}

// ReplacePresentations overwrites the whole collection with ps.
func (s *ContentService) ReplacePresentations(ctx context.Context, ps models.Presentations) error {
	const op errs.Op = "contentService.ReplacePresentations"

	s.presMu.Lock()
	defer s.presMu.Unlock()

	if err := s.presentations.Save(ctx, ps); err != nil {
		return errs.E(errs.Internal, op, errs.Msg("Failed to update presentations"), err)
	}

	s.log.Info().Int("count", len(ps)).Msg("presentations replaced")
	s.publish(models.CollectionPresentations, models.ActionReplaced, "")

	return nil
}

// ReplaceQuizzes overwrites the whole collection with quizzes.
func (s *ContentService) ReplaceQuizzes(ctx context.Context, quizzes models.QuizMap) error {
	const op errs.Op = "contentService.ReplaceQuizzes"

	s.quizMu.Lock()
	defer s.quizMu.Unlock()

	if err := s.quizzes.Save(ctx, quizzes); err != nil {
		return errs.E(errs.Internal, op, errs.Msg("Failed to update quizzes"), err)
	}

	s.log.Info().Int("count", len(quizzes)).Msg("quizzes replaced")
	s.publish(models.CollectionQuizzes, models.ActionReplaced, "")

	return nil
}

// DeletePresentation removes every presentation with the given id and the
// quiz links stored under it. Deleting an unknown id succeeds.
func (s *ContentService) DeletePresentation(ctx context.Context, id string) error {
	const op errs.Op = "contentService.DeletePresentation"

	// Lock order is presentations, then quizzes.
	s.presMu.Lock()
	defer s.presMu.Unlock()
	s.quizMu.Lock()
	defer s.quizMu.Unlock()

	ps := s.presentations.Load(ctx)
	if err := s.presentations.Save(ctx, ps.Without(id)); err != nil {
		return errs.E(errs.Internal, op, errs.Parameter("id"), errs.Msg("Failed to delete presentation"), err)
	}

	quizzes := s.quizzes.Load(ctx)
	delete(quizzes, id)

	if err := s.quizzes.Save(ctx, quizzes); err != nil {
		return errs.E(errs.Internal, op, errs.Parameter("id"), errs.Msg("Failed to delete presentation"), err)
	}

	s.log.Info().Str("id", id).Msg("presentation deleted")
	s.publish(models.CollectionPresentations, models.ActionDeleted, id)

	return nil
}

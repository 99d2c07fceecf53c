package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
	"github.com/jrramp/arecheoedu/internal/services"
	"github.com/jrramp/arecheoedu/internal/storage"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (n *recordingNotifier) Publish(e models.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []models.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.ChangeEvent(nil), n.events...)
}

func newService(t *testing.T) (*services.ContentService, *storage.MemoryBackend, *recordingNotifier) {
	t.Helper()

	b := storage.NewMemoryBackend()
	storage.Bootstrap(context.Background(), b, storage.DefaultSeeds(t.TempDir()), zerolog.Nop())

	n := &recordingNotifier{}
	svc := services.NewContentService(
		storage.NewPresentations(b, zerolog.Nop(), nil),
		storage.NewQuizzes(b, zerolog.Nop(), nil),
		n,
		zerolog.Nop(),
	)

	return svc, b, n
}

func presentation(id string) models.Presentation {
	return models.Presentation{
		ID:         id,
		Name:       "Deck " + id,
		UploadedAt: "2024-03-01",
		Slides:     []models.Slide{{ID: 1, Title: "Welcome", Content: "Dig in"}},
	}
}

func TestContentService_AddAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	got, err := svc.AddPresentation(ctx, presentation("p1"))
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	_, err = svc.AddPresentation(ctx, presentation("p1"))
	require.NoError(t, err, "duplicate ids are accepted")

	want := models.Presentations{presentation("p1"), presentation("p1")}
	if diff := cmp.Diff(want, svc.ListPresentations(ctx)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []models.ChangeEvent{
		{Collection: "presentations", Action: "added", ID: "p1"},
		{Collection: "presentations", Action: "added", ID: "p1"},
	}, n.Events())
}

func TestContentService_ConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddPresentation(ctx, presentation(fmt.Sprintf("p%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, svc.ListPresentations(ctx), writers)
}

func TestContentService_UpsertQuizLinks(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	require.NoError(t, svc.UpsertQuizLinks(ctx, "p2", models.QuizLinks{PreQuizURL: "x", PostQuizURL: "y"}))
	require.NoError(t, svc.UpsertQuizLinks(ctx, "p2", models.QuizLinks{GoogleSlidesURL: "z"}))

	assert.Equal(t, models.QuizMap{"p2": {GoogleSlidesURL: "z"}}, svc.ListQuizzes(ctx))
}

func TestContentService_Replace(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.AddPresentation(ctx, presentation("old"))
	require.NoError(t, err)
	require.NoError(t, svc.UpsertQuizLinks(ctx, "old", models.QuizLinks{PreQuizURL: "x"}))

	newSet := models.Presentations{presentation("a"), presentation("b")}
	require.NoError(t, svc.ReplacePresentations(ctx, newSet))
	require.NoError(t, svc.ReplaceQuizzes(ctx, models.QuizMap{"a": {PostQuizURL: "y"}}))

	if diff := cmp.Diff(newSet, svc.ListPresentations(ctx)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.QuizMap{"a": {PostQuizURL: "y"}}, svc.ListQuizzes(ctx))
}

func TestContentService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	for _, id := range []string{"p1", "p2"} {
		_, err := svc.AddPresentation(ctx, presentation(id))
		require.NoError(t, err)
		require.NoError(t, svc.UpsertQuizLinks(ctx, id, models.QuizLinks{PreQuizURL: "x"}))
	}

	require.NoError(t, svc.DeletePresentation(ctx, "p1"))

	assert.Equal(t, models.Presentations{presentation("p2")}, svc.ListPresentations(ctx))
	assert.Equal(t, models.QuizMap{"p2": {PreQuizURL: "x"}}, svc.ListQuizzes(ctx))

	events := n.Events()
	assert.Equal(t, models.ChangeEvent{Collection: "presentations", Action: "deleted", ID: "p1"}, events[len(events)-1])
}

func TestContentService_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.AddPresentation(ctx, presentation("p1"))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePresentation(ctx, "does-not-exist"))
	assert.Equal(t, models.Presentations{presentation("p1")}, svc.ListPresentations(ctx))
}

func TestContentService_WriteFailures(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		call    func(svc *services.ContentService) error
		wantMsg string
	}{
		{
			name: "add",
			call: func(svc *services.ContentService) error {
				_, err := svc.AddPresentation(ctx, presentation("p1"))
				return err
			},
			wantMsg: "Failed to add presentation",
		},
		{
			name: "upsert quiz links",
			call: func(svc *services.ContentService) error {
				return svc.UpsertQuizLinks(ctx, "p1", models.QuizLinks{})
			},
			wantMsg: "Failed to save quizzes",
		},
		{
			name: "replace presentations",
			call: func(svc *services.ContentService) error {
				return svc.ReplacePresentations(ctx, models.Presentations{})
			},
			wantMsg: "Failed to update presentations",
		},
		{
			name: "replace quizzes",
			call: func(svc *services.ContentService) error {
				return svc.ReplaceQuizzes(ctx, models.QuizMap{})
			},
			wantMsg: "Failed to update quizzes",
		},
		{
			name: "delete",
			call: func(svc *services.ContentService) error {
				return svc.DeletePresentation(ctx, "p1")
			},
			wantMsg: "Failed to delete presentation",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, b, n := newService(t)
			b.FailWrites(true)

			err := tc.call(svc)
			require.Error(t, err)

			var e *errs.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, errs.Internal, e.Kind)
			assert.Equal(t, errs.Msg(tc.wantMsg), e.Msg)
			assert.ErrorIs(t, err, storage.ErrInjected)
			assert.Empty(t, n.Events())
		})
	}
}

func TestContentService_ReadFailureListsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, b, _ := newService(t)

	_, err := svc.AddPresentation(ctx, presentation("p1"))
	require.NoError(t, err)

	b.FailReads(true)

	assert.Empty(t, svc.ListPresentations(ctx))
	assert.NotNil(t, svc.ListQuizzes(ctx))
}

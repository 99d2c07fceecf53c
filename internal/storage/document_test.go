package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
	"github.com/jrramp/arecheoedu/internal/storage"
)

func TestDocument_LoadFallsBackToEmpty(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(b *storage.MemoryBackend)
	}{
		{
			name:  "missing document",
			setup: func(b *storage.MemoryBackend) {},
		},
		{
			name: "invalid json",
			setup: func(b *storage.MemoryBackend) {
				_ = b.Write(context.Background(), "presentations", []byte(`[{"id": "p1",`))
			},
		},
		{
			name: "wrong shape",
			setup: func(b *storage.MemoryBackend) {
				_ = b.Write(context.Background(), "presentations", []byte(`{"id": "p1"}`))
			},
		},
		{
			name: "null",
			setup: func(b *storage.MemoryBackend) {
				_ = b.Write(context.Background(), "presentations", []byte(`null`))
			},
		},
		{
			name: "read error",
			setup: func(b *storage.MemoryBackend) {
				b.FailReads(true)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := storage.NewMemoryBackend()
			tc.setup(b)

			doc := storage.NewPresentations(b, zerolog.Nop(), nil)
			got := doc.Load(context.Background())

			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestDocument_QuizzesFallBackToEmptyMap(t *testing.T) {
	b := storage.NewMemoryBackend()
	require.NoError(t, b.Write(context.Background(), "quizzes", []byte(`[]`)))

	got := storage.NewQuizzes(b, zerolog.Nop(), nil).Load(context.Background())

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDocument_SaveIsPrettyPrinted(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	doc := storage.NewPresentations(b, zerolog.Nop(), nil)

	want := models.Presentations{
		{ID: "p1", Name: "Stratigraphy", UploadedAt: "2024-03-01", Slides: []models.Slide{{ID: 1, Title: "Layers", Content: "Oldest first"}}},
	}
	require.NoError(t, doc.Save(ctx, want))

	raw, ok := b.Raw("presentations")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n    \""), "got %q", raw)

	var decoded models.Presentations
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(want, doc.Load(ctx)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_SaveNilWritesEmptyCollection(t *testing.T) {
	b := storage.NewMemoryBackend()

	require.NoError(t, storage.NewQuizzes(b, zerolog.Nop(), nil).Save(context.Background(), nil))

	raw, ok := b.Raw("quizzes")
	require.True(t, ok)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDocument_SaveFailure(t *testing.T) {
	b := storage.NewMemoryBackend()
	b.FailWrites(true)

	err := storage.NewPresentations(b, zerolog.Nop(), nil).Save(context.Background(), models.Presentations{})

	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.IO, err))
	assert.ErrorIs(t, err, storage.ErrInjected)
}

package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/models"
)

// Seed describes how a missing collection is initialized at startup.
type Seed struct {
	Name string
	// Path of the seed file. Its content is copied verbatim.
	Path string
	// Default is written when there is no usable seed file.
	Default []byte
}

// DefaultSeeds returns the seeds of both collections, reading
// <seedDir>/<name>-seed.json.
func DefaultSeeds(seedDir string) []Seed {
	return []Seed{
		{
			Name:    models.CollectionPresentations,
			Path:    filepath.Join(seedDir, models.CollectionPresentations+"-seed.json"),
			Default: []byte("[]"),
		},
		{
			Name:    models.CollectionQuizzes,
			Path:    filepath.Join(seedDir, models.CollectionQuizzes+"-seed.json"),
			Default: []byte("{}"),
		},
	}
}

// Bootstrap creates every missing collection from its seed file, or from the
// empty default. It never fails: problems are logged and the next step runs.
func Bootstrap(ctx context.Context, backend Backend, seeds []Seed, log zerolog.Logger) {
	if d, ok := backend.(DirEnsurer); ok {
		if err := d.EnsureDir(); err != nil {
			log.Error().Err(err).Msg("ensuring storage directory")
		}
	}

	for _, seed := range seeds {
		l := log.With().Str("collection", seed.Name).Logger()

		exists, err := backend.Exists(ctx, seed.Name)
		if err != nil {
			l.Error().Err(err).Msg("checking for existing document, skipping initialization")
			continue
		}

		if exists {
			continue
		}

		data, err := os.ReadFile(seed.Path)
		switch {
		case err == nil:
			werr := backend.Write(ctx, seed.Name, data)
			if werr == nil {
				l.Info().Str("seed", seed.Path).Msg("initialized from seed file")
				continue
			}
			l.Error().Err(werr).Str("seed", seed.Path).Msg("copying seed file, writing empty default")
		case os.IsNotExist(err):
			l.Info().Msg("no seed file, writing empty default")
		default:
			l.Error().Err(err).Str("seed", seed.Path).Msg("reading seed file, writing empty default")
		}

		if err := backend.Write(ctx, seed.Name, seed.Default); err != nil {
			l.Error().Err(err).Msg("writing empty default")
		}
	}
}

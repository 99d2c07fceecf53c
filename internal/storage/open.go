package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Options struct {
	Backend      string
	Dir          string
	AtomicWrites bool
	SQLitePath   string
	Redis        RedisOptions
}

// Open returns the backend selected by opts.Backend.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (Backend, error) {
	switch opts.Backend {
	case "", BackendFile:
		log.Info().Str("dir", opts.Dir).Bool("atomic_writes", opts.AtomicWrites).Msg("using file storage")
		return NewFileBackend(opts.Dir, opts.AtomicWrites), nil
	case BackendSQLite:
		log.Info().Str("path", opts.SQLitePath).Msg("using sqlite storage")
		b, err := NewSQLiteBackend(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendRedis:
		log.Info().Str("addr", opts.Redis.Addr).Str("key_prefix", opts.Redis.KeyPrefix).Msg("using redis storage")
		b, err := NewRedisBackend(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendMemory:
		log.Warn().Msg("using in-memory storage, content is lost on restart")
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

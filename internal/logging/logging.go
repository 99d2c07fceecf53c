package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to out. format "console" gives human readable
// output, anything else JSON lines. Unknown levels fall back to info.
func New(level, format string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

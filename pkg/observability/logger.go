package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LogSettings struct {
	Level  string
	Format string
}

// NewLogger builds the root logger. Format "console" gives human readable
// output, anything else JSON lines.
func NewLogger(w io.Writer, settings LogSettings) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if settings.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(settings.Level))
		if err != nil {
			return zerolog.Nop(), err
		}
		level = parsed
	}

	if strings.EqualFold(settings.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

package logger

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var once sync.Once

var log zerolog.Logger

// Get returns the process-wide logger, building it on first use.
// LOG_LEVEL overrides the default level, ENVIRONMENT=local switches
// to the human readable console writer.
func Get() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		level := zerolog.InfoLevel
		if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
			parsed, err := zerolog.ParseLevel(levelEnv)
			if err == nil {
				level = parsed
			}
		}

		var output = os.Stderr
		logger := zerolog.New(output).
			Level(level).
			With().
			Timestamp().
			Str("pid", strconv.Itoa(os.Getpid())).
			Logger()

		if os.Getenv("ENVIRONMENT") == "local" || os.Getenv("ENVIRONMENT") == "" {
			logger = logger.Output(zerolog.ConsoleWriter{Out: output})
		}

		log = logger
	})

	return log
}

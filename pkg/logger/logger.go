package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// L is the process-wide logger. main() replaces it with a console writer
// when the server runs in a terminal.
var L = zerolog.New(os.Stdout).With().Timestamp().Logger()

// UseConsole switches to human-readable output for local development.
func UseConsole() {
	L = L.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

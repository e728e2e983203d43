package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at a non-blocking console writer on out and sets the level.
// The returned func flushes pending lines and must be called before exit.
func Setup(out io.Writer, level string) (func() error, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		l, err := zerolog.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = l
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	d := diode.NewWriter(out, 1000, 10*time.Millisecond, func(missed int) {
		log.Printf("Logger dropped %v messages", missed)
	})
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = d
	})).With().Caller().Logger()

	return d.Close, nil
}

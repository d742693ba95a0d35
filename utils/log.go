package utils

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var callerOnce sync.Once

// shortCaller formats the caller as file:line without the directory.
func shortCaller(pc uintptr, file string, line int) string {
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	return fmt.Sprintf("%-16s", fmt.Sprintf("%s:%d", short, line))
}

// NewLogger returns a zerolog logger configured for console output. The
// first call also installs the short caller format for the process.
func NewLogger(out io.Writer, verbose bool) zerolog.Logger {
	callerOnce.Do(func() {
		zerolog.CallerMarshalFunc = shortCaller
	})
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
}

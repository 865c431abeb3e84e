package logx

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger. Protocol output owns stdout, so w is
// normally stderr.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	var lvl, err = ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	var output = zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%-20s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger(), nil
}

// ParseLevel accepts zerolog level names and "off".
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	}
	var lvl, err = zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}

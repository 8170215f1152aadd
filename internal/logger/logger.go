// Package logger construye el *slog.Logger de la aplicación.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New crea un logger con handler de texto o JSON. level acepta debug, info,
// warn o error (vacío = warn).
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if level == "" {
		lvl = slog.LevelWarn
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("nivel de log inválido %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("formato de log inválido %q", format)
}

// Discard no escribe nada.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package engine

import (
	"errors"

	"github.com/soyunomas/dupehash/internal/scanner"
)

var (
	// ErrInvalidArgument: entradas mal formadas. Fatal, nunca se reintenta.
	ErrInvalidArgument = scanner.ErrInvalidArgument

	// ErrInterrupted: la ejecución se canceló desde fuera. No hay reporte válido.
	ErrInterrupted = errors.New("ejecución interrumpida")

	// ErrLinkedToKeeper: el duplicado es el mismo inodo que el original y no se borra.
	ErrLinkedToKeeper = errors.New("comparte inodo con el original")
)

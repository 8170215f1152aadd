package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// Remover elimina (o aparta) un archivo duplicado.
type Remover interface {
	Remove(path string) error
}

// RemoverFunc adapta una función a Remover.
type RemoverFunc func(path string) error

func (f RemoverFunc) Remove(path string) error { return f(path) }

// OSRemover borra definitivamente con os.Remove.
var OSRemover Remover = RemoverFunc(os.Remove)

// TrashRemover mueve los archivos a Dir en lugar de borrarlos.
// Renombra el archivo para evitar colisiones: nombre_TIMESTAMP.ext
type TrashRemover struct {
	Dir string
}

func (t TrashRemover) Remove(srcPath string) error {
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return fmt.Errorf("creando papelera: %w", err)
	}

	filename := filepath.Base(srcPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	uniqueName := fmt.Sprintf("%s_%d%s", nameWithoutExt, time.Now().UnixNano(), ext)
	destPath := filepath.Join(t.Dir, uniqueName)

	// Rename es atómico dentro del mismo FS
	err := os.Rename(srcPath, destPath)
	if err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return moveCrossDevice(srcPath, destPath)
		}
		return err
	}
	return nil
}

// moveCrossDevice copia y borra (para mover entre particiones)
func moveCrossDevice(src, dst string) error {
	input, err := os.Open(src)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		os.Remove(dst)
		return err
	}
	// Close explícito para detectar errores de flush
	if err := output.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}

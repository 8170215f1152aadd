package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soyunomas/dupehash/internal/logger"
)

// ErrInvalidArgument indica un uso incorrecto del escáner (error de programación).
var ErrInvalidArgument = errors.New("argumento inválido")

// SymlinkMode decide qué se hace con los enlaces simbólicos.
type SymlinkMode int

const (
	// SymlinksNone (default): los symlinks se ignoran
	SymlinksNone SymlinkMode = iota
	// SymlinksFiles reporta los que apuntan a archivos regulares; nunca se
	// desciende por un symlink a directorio.
	SymlinksFiles
)

// ParseSymlinkMode acepta "none" o "files".
func ParseSymlinkMode(s string) (SymlinkMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return SymlinksNone, nil
	case "files":
		return SymlinksFiles, nil
	}
	return 0, fmt.Errorf("%w: modo de symlinks %q", ErrInvalidArgument, s)
}

func (m SymlinkMode) String() string {
	if m == SymlinksFiles {
		return "files"
	}
	return "none"
}

// Matcher filtra por nombre base. *regexp.Regexp lo satisface.
type Matcher interface {
	MatchString(name string) bool
}

// Config define las reglas para el escaneo.
type Config struct {
	// Matcher nil = todos los archivos
	Matcher  Matcher
	Symlinks SymlinkMode
	// Excludes son nombres de carpetas a ignorar
	Excludes []string
	// ExcludePaths son rutas de carpetas concretas a ignorar (p.ej. la papelera).
	// Se comparan con la ruta completa, así que deben ser del mismo tipo que
	// la raíz (absolutas si la raíz lo es).
	ExcludePaths []string
	Logger       *slog.Logger
}

// Warning es un directorio que no se pudo listar por falta de permisos.
type Warning struct {
	Path string
	Err  error
}

// FileScanner encapsula la lógica de recorrido del sistema de archivos.
type FileScanner struct {
	cfg         Config
	excludeMap  map[string]struct{} // Optimización O(1)
	excludePath map[string]struct{}
	log         *slog.Logger
}

// New crea una nueva instancia del escáner con configuración.
func New(cfg Config) *FileScanner {
	exMap := make(map[string]struct{}, len(cfg.Excludes))
	for _, e := range cfg.Excludes {
		exMap[e] = struct{}{}
	}
	pathMap := make(map[string]struct{}, len(cfg.ExcludePaths))
	for _, p := range cfg.ExcludePaths {
		pathMap[filepath.Clean(p)] = struct{}{}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &FileScanner{
		cfg:         cfg,
		excludeMap:  exMap,
		excludePath: pathMap,
		log:         log,
	}
}

// Walk recorre rootDir en profundidad y en orden léxico, llamando a h por cada
// archivo regular aceptado por el Matcher. Los directorios sin permiso de
// lectura se saltan y se devuelven como Warning; cualquier otro error aborta.
func (s *FileScanner) Walk(ctx context.Context, rootDir string, h Handler) ([]Warning, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: handler nil", ErrInvalidArgument)
	}

	var warnings []Warning

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// 1. Errores de acceso: solo los de permisos se recuperan
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				s.log.Warn("directorio sin permisos, se omite", "path", path, "err", err)
				warnings = append(warnings, Warning{Path: path, Err: err})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}

		// 2. Directorios: excluidos por nombre (nunca la raíz)
		if d.IsDir() {
			if path != rootDir {
				if _, ok := s.excludePath[filepath.Clean(path)]; ok {
					s.log.Debug("directorio excluido por ruta", "path", path)
					return filepath.SkipDir
				}
				if _, ok := s.excludeMap[d.Name()]; ok {
					s.log.Debug("directorio excluido", "path", path)
					return filepath.SkipDir
				}
			}
			return nil
		}

		// 3. Symlinks: se resuelven solo si el modo lo permite
		if d.Type()&fs.ModeSymlink != 0 {
			if s.cfg.Symlinks != SymlinksFiles {
				return nil
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				// Enlace roto o a directorio
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		// 4. Filtro de nombre (solo el nombre base)
		name := d.Name()
		if s.cfg.Matcher != nil && !s.cfg.Matcher.MatchString(name) {
			return nil
		}

		return h.Handle(path, name)
	})

	return warnings, err
}

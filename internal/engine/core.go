package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/soyunomas/dupehash/internal/entities"
	"github.com/soyunomas/dupehash/internal/hasher"
	"github.com/soyunomas/dupehash/internal/logger"
	"github.com/soyunomas/dupehash/internal/scanner"
)

type Options struct {
	Algorithm string // Nombre registrado en hasher; vacío = xxhash
	BlockSize int
	Workers   int // <= 0: runtime.NumCPU()
	Strategy  KeepStrategy
	Matcher   scanner.Matcher
	Symlinks  scanner.SymlinkMode
	Excludes  []string
	// ExcludePaths son carpetas concretas a ignorar; solo aplican si están bajo la raíz
	ExcludePaths []string
	Delete       bool
	Remover      Remover // Solo con Delete; nil = OSRemover
	Progress     ProgressFunc
	OnFound      func(count int)
	Logger       *slog.Logger
}

// Runner es la sesión de una ejecución: todo el estado vive aquí, nada es global.
type Runner struct {
	opts   Options
	hasher *hasher.Hasher
	log    *slog.Logger
}

// New valida las opciones. Los errores envuelven ErrInvalidArgument.
func New(opts Options) (*Runner, error) {
	alg, err := hasher.Lookup(opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers negativo (%d)", ErrInvalidArgument, opts.Workers)
	}
	if opts.BlockSize < 0 {
		return nil, fmt.Errorf("%w: tamaño de bloque negativo (%d)", ErrInvalidArgument, opts.BlockSize)
	}
	if isNilMatcher(opts.Matcher) {
		return nil, fmt.Errorf("%w: matcher nil", ErrInvalidArgument)
	}
	if opts.Delete && opts.Remover == nil {
		opts.Remover = OSRemover
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Runner{
		opts:   opts,
		hasher: hasher.New(alg, opts.BlockSize),
		log:    log,
	}, nil
}

// Run ejecuta recorrido, hashing, detección y (opcional) borrado sobre rootDir.
// Si ctx se cancela devuelve un error que envuelve ErrInterrupted y ningún reporte.
func (r *Runner) Run(ctx context.Context, rootDir string) (*entities.Report, error) {
	start := time.Now()

	root, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	// --- PASO 1: SCANNER ---
	r.log.Info("escaneando sistema de archivos", "root", root)
	sc := scanner.New(scanner.Config{
		Matcher:      r.opts.Matcher,
		Symlinks:     r.opts.Symlinks,
		Excludes:     r.opts.Excludes,
		ExcludePaths: r.excludePaths(root),
		Logger:       r.log,
	})

	collector := &scanner.Collector{OnFound: r.opts.OnFound}
	warnings, err := sc.Walk(ctx, root, collector)
	if err != nil {
		return nil, r.wrap(ctx, "fallo en scanner", err)
	}
	r.log.Info("recorrido terminado", "files", len(collector.Paths), "skipped_dirs", len(warnings))

	// --- PASO 2: HASHING ---
	r.log.Info("calculando hashes", "algorithm", r.hasher.Algorithm().Name, "files", len(collector.Paths))
	fp := NewFingerprinter(r.hasher, r.opts.Workers, r.opts.Progress, r.log)
	records, failures, err := fp.Run(ctx, collector.Paths)
	if err != nil {
		return nil, r.wrap(ctx, "fallo en hashing", err)
	}

	// --- PASO 3: DETECCIÓN ---
	det := NewDetector(r.opts.Strategy, r.log)
	rep := det.Detect(records)
	rep.Root = root
	rep.FilesFound = len(collector.Paths)
	rep.Failures = failures
	for _, w := range warnings {
		rep.Warnings = append(rep.Warnings, entities.Warning{Path: w.Path, Err: w.Err})
	}
	r.log.Info("detección terminada", "groups", len(rep.Groups), "duplicates", rep.DuplicateCount, "wasted_bytes", rep.WastedBytes)

	// --- PASO 4: BORRADO (opcional) ---
	if r.opts.Delete {
		if err := det.Purge(ctx, rep, r.opts.Remover); err != nil {
			return nil, r.wrap(ctx, "fallo borrando", err)
		}
		r.log.Info("borrado terminado", "deleted", len(rep.Deleted), "failed", len(rep.DeleteFailures))
	}

	rep.Duration = time.Since(start)
	return rep, nil
}

// wrap distingue interrupción de error fatal.
func (r *Runner) wrap(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// resolveRoot exige un directorio existente. Si la raíz es un symlink se
// resuelve, porque el recorrido nunca desciende por symlinks.
func resolveRoot(rootDir string) (string, error) {
	if rootDir == "" {
		return "", fmt.Errorf("%w: directorio raíz vacío", ErrInvalidArgument)
	}
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if li, err := os.Lstat(root); err == nil && li.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			root = resolved
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s no es un directorio", ErrInvalidArgument, root)
	}
	return root, nil
}

// excludePaths traduce ExcludePaths al espacio de rutas del recorrido. Solo
// se conservan las que están bajo root; ambas se comparan ya resueltas.
func (r *Runner) excludePaths(root string) []string {
	if len(r.opts.ExcludePaths) == 0 {
		return nil
	}
	realRoot := resolvePath(root)

	var out []string
	for _, p := range r.opts.ExcludePaths {
		rel, err := filepath.Rel(realRoot, resolvePath(p))
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, filepath.Join(root, rel))
	}
	return out
}

// resolvePath devuelve la ruta absoluta sin symlinks. Si el destino aún no
// existe (papelera sin crear) se resuelve el directorio padre.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs))
	}
	return abs
}

// isNilMatcher detecta un puntero nil envuelto en la interfaz (p.ej. un
// *regexp.Regexp nil), que de otro modo haría panic al filtrar.
func isNilMatcher(m scanner.Matcher) bool {
	if m == nil {
		return false
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

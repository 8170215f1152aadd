package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/soyunomas/dupehash/internal/entities"
	"github.com/soyunomas/dupehash/internal/hasher"
	"github.com/soyunomas/dupehash/internal/logger"
	"github.com/soyunomas/dupehash/internal/metadata"
)

// ProgressFunc recibe (completados, total) tras cada archivo procesado.
type ProgressFunc func(done, total int)

// StatFunc lee metadatos sin leer contenido.
type StatFunc func(path string) (metadata.Metadata, error)

// Fingerprinter hashea una lista de rutas con un pool fijo de workers.
type Fingerprinter struct {
	hasher   *hasher.Hasher
	stat     StatFunc
	workers  int
	progress ProgressFunc
	log      *slog.Logger
}

// NewFingerprinter crea el pool. workers <= 0 usa runtime.NumCPU().
func NewFingerprinter(h *hasher.Hasher, workers int, progress ProgressFunc, log *slog.Logger) *Fingerprinter {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Fingerprinter{
		hasher:   h,
		stat:     metadata.Stat,
		workers:  workers,
		progress: progress,
		log:      log,
	}
}

type job struct {
	seq  int
	path string
}

type result struct {
	seq     int
	record  *entities.FileRecord
	failure *entities.FileFailure
}

// Run calcula un FileRecord por ruta. Los fallos por archivo (desaparecido,
// sin permisos) no abortan: se devuelven aparte, ordenados por aparición.
// len(records)+len(failures) == len(paths). Si ctx se cancela, los hashes en
// curso se abandonan y se devuelve el error del contexto.
func (f *Fingerprinter) Run(ctx context.Context, paths []string) ([]*entities.FileRecord, []entities.FileFailure, error) {
	total := len(paths)
	if total == 0 {
		return nil, nil, ctx.Err()
	}

	jobs := make(chan job)
	results := make(chan result, f.workers)

	g, gctx := errgroup.WithContext(ctx)

	// Productor
	g.Go(func() error {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- job{seq: i, path: p}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Workers
	for w := 0; w < f.workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				res := f.fingerprint(gctx, j)
				if err := gctx.Err(); err != nil {
					return err
				}
				results <- res
			}
			return nil
		})
	}

	// Monitor de cierre: el pool se desmonta siempre antes de cerrar results
	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	records := make([]*entities.FileRecord, 0, total)
	var failed []result
	done := 0

	// Consumidor único: es el dueño de records y failed
	for res := range results {
		done++
		if res.failure != nil {
			failed = append(failed, res)
		} else {
			records = append(records, res.record)
		}
		if f.progress != nil {
			f.progress(done, total)
		}
	}
	if waitErr != nil {
		return nil, nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Los fallos se ordenan por aparición para que el reporte sea estable
	sort.Slice(failed, func(i, j int) bool { return failed[i].seq < failed[j].seq })
	var failures []entities.FileFailure
	for _, res := range failed {
		failures = append(failures, *res.failure)
	}

	return records, failures, nil
}

func (f *Fingerprinter) fingerprint(ctx context.Context, j job) result {
	md, err := f.stat(j.path)
	if err != nil {
		f.log.Warn("no se pudo leer metadatos", "path", j.path, "err", err)
		return result{seq: j.seq, failure: &entities.FileFailure{Path: j.path, Op: "stat", Err: err}}
	}

	sum, err := f.hasher.HashFile(ctx, j.path)
	if err != nil {
		if ctx.Err() == nil {
			f.log.Warn("no se pudo hashear", "path", j.path, "err", err)
		}
		return result{seq: j.seq, failure: &entities.FileFailure{Path: j.path, Op: "hash", Err: err}}
	}

	return result{seq: j.seq, record: &entities.FileRecord{
		Seq:       j.seq,
		Path:      j.path,
		Size:      md.Size,
		CreatedAt: md.CreatedAt,
		ModTime:   md.ModTime,
		Hash:      sum,
		DeviceID:  md.DeviceID,
		Inode:     md.Inode,
	}}
}

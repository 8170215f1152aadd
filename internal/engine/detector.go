package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/soyunomas/dupehash/internal/entities"
	"github.com/soyunomas/dupehash/internal/logger"
)

// KeepStrategy decide qué miembro de cada grupo es el "Keeper".
type KeepStrategy int

const (
	// KeepFirst (default): el primero en orden de recorrido
	KeepFirst KeepStrategy = iota
	KeepShortestPath
	KeepLongestPath
	KeepOldest
	KeepNewest
)

var strategyNames = map[KeepStrategy]string{
	KeepFirst:        "first",
	KeepShortestPath: "shortest",
	KeepLongestPath:  "longest",
	KeepOldest:       "oldest",
	KeepNewest:       "newest",
}

func (s KeepStrategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("KeepStrategy(%d)", int(s))
}

// ParseKeepStrategy acepta: first, shortest, longest, oldest, newest.
func ParseKeepStrategy(s string) (KeepStrategy, error) {
	if s == "" {
		return KeepFirst, nil
	}
	for k, n := range strategyNames {
		if strings.EqualFold(n, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: estrategia desconocida %q", ErrInvalidArgument, s)
}

// Detector agrupa registros por hash. No guarda estado entre llamadas.
type Detector struct {
	strategy KeepStrategy
	log      *slog.Logger
}

func NewDetector(strategy KeepStrategy, log *slog.Logger) *Detector {
	if log == nil {
		log = logger.Discard()
	}
	return &Detector{strategy: strategy, log: log}
}

// Detect ordena por (hash, orden de aparición), agrupa hashes adyacentes
// iguales y contabiliza duplicados y espacio desperdiciado. Ni el slice de
// entrada ni los registros se modifican.
func (d *Detector) Detect(records []*entities.FileRecord) *entities.Report {
	sorted := make([]*entities.FileRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Hash != sorted[j].Hash {
			return sorted[i].Hash < sorted[j].Hash
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	rep := &entities.Report{FilesHashed: len(sorted)}

	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Hash == sorted[i].Hash {
			j++
		}
		if j-i > 1 {
			files := make([]*entities.FileRecord, j-i)
			copy(files, sorted[i:j])
			d.sortGroup(files)

			g := &entities.DuplicateGroup{Hash: files[0].Hash, Size: files[0].Size, Files: files}
			for _, f := range g.Duplicates() {
				rep.DuplicateCount++
				rep.WastedBytes += f.Size
				d.log.Debug("duplicado", "keeper", g.Keeper().Path, "path", f.Path, "size", f.Size)
			}
			rep.Groups = append(rep.Groups, g)
		}
		i = j
	}

	return rep
}

// sortGroup organiza los archivos de un grupo según la estrategia.
// El archivo en la posición [0] es el "Keeper". El desempate final es
// siempre el orden de recorrido, así el resultado es determinista.
func (d *Detector) sortGroup(files []*entities.FileRecord) {
	sort.SliceStable(files, func(i, j int) bool {
		f1 := files[i]
		f2 := files[j]

		switch d.strategy {
		case KeepShortestPath:
			if len(f1.Path) != len(f2.Path) {
				return len(f1.Path) < len(f2.Path)
			}

		case KeepLongestPath:
			if len(f1.Path) != len(f2.Path) {
				return len(f1.Path) > len(f2.Path)
			}

		case KeepOldest:
			if !f1.ModTime.Equal(f2.ModTime) {
				return f1.ModTime.Before(f2.ModTime)
			}

		case KeepNewest:
			if !f1.ModTime.Equal(f2.ModTime) {
				return f1.ModTime.After(f2.ModTime)
			}
		}

		return f1.Seq < f2.Seq
	})
}

// Purge borra cada duplicado del reporte con remover. El Keeper nunca se
// toca. Los fallos se acumulan en rep.DeleteFailures y no detienen el resto.
// Un duplicado que es el mismo inodo que su Keeper no se borra.
func (d *Detector) Purge(ctx context.Context, rep *entities.Report, remover Remover) error {
	for _, dup := range rep.Duplicates() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if dup.File.SameFile(dup.Keeper) {
			d.log.Warn("no se borra: mismo inodo que el original", "path", dup.File.Path, "keeper", dup.Keeper.Path)
			rep.DeleteFailures = append(rep.DeleteFailures, entities.FileFailure{Path: dup.File.Path, Op: "delete", Err: ErrLinkedToKeeper})
			continue
		}

		if err := remover.Remove(dup.File.Path); err != nil {
			d.log.Warn("error borrando", "path", dup.File.Path, "err", err)
			rep.DeleteFailures = append(rep.DeleteFailures, entities.FileFailure{Path: dup.File.Path, Op: "delete", Err: err})
			continue
		}

		d.log.Info("borrado", "path", dup.File.Path, "keeper", dup.Keeper.Path)
		rep.Deleted = append(rep.Deleted, dup.File.Path)
	}
	return nil
}

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soyunomas/dupehash/internal/engine"
	"github.com/soyunomas/dupehash/internal/entities"
)

// --- ESTRUCTURAS PARA EL REPORTE FINAL ---

type Report struct {
	Summary  Summary       `json:"summary"`
	Groups   []GroupResult `json:"groups"`
	Problems Problems      `json:"problems"`
	Metadata Metadata      `json:"metadata"`
}

type Metadata struct {
	ScannedPath string    `json:"scanned_path"`
	Algorithm   string    `json:"algorithm"`
	Strategy    string    `json:"strategy"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    string    `json:"duration_human"`
}

type Summary struct {
	TotalFilesFound   int    `json:"total_files_found"`
	TotalFilesHashed  int    `json:"total_files_hashed"`
	TotalDuplicates   int64  `json:"total_duplicates"`
	TotalHardLinks    int    `json:"total_hard_links"`
	WastedBytes       int64  `json:"wasted_bytes"`
	WastedBytesHuman  string `json:"wasted_bytes_human"`
	TotalDeleted      int    `json:"total_deleted"`
	TotalDeleteErrors int    `json:"total_delete_errors"`
	FreedBytes        int64  `json:"freed_bytes"`
	FreedBytesHuman   string `json:"freed_bytes_human"`
}

type GroupResult struct {
	Hash    string               `json:"hash"`
	Size    int64                `json:"file_size"`
	Keeper  *entities.FileRecord `json:"keeper"`
	Victims []Victim             `json:"victims"`
}

type Victim struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Linked  bool   `json:"hard_link,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Problems struct {
	SkippedDirs []entities.Warning     `json:"skipped_dirs"`
	Unreadable  []entities.FileFailure `json:"unreadable"`
}

func generateReport(rep *entities.Report, algorithm, strategy string) Report {
	out := Report{
		Metadata: Metadata{
			ScannedPath: rep.Root,
			Algorithm:   algorithm,
			Strategy:    strategy,
			Timestamp:   time.Now(),
			Duration:    rep.Duration.String(),
		},
		Summary: Summary{
			TotalFilesFound:   rep.FilesFound,
			TotalFilesHashed:  rep.FilesHashed,
			TotalDuplicates:   rep.DuplicateCount,
			WastedBytes:       rep.WastedBytes,
			WastedBytesHuman:  humanize.Bytes(uint64(rep.WastedBytes)),
			TotalDeleted:      len(rep.Deleted),
		},
		Groups: []GroupResult{},
		// Nunca null en el JSON
		Problems: Problems{
			SkippedDirs: append([]entities.Warning{}, rep.Warnings...),
			Unreadable:  append([]entities.FileFailure{}, rep.Failures...),
		},
	}

	deleted := make(map[string]bool, len(rep.Deleted))
	for _, p := range rep.Deleted {
		deleted[p] = true
	}
	failed := make(map[string]error, len(rep.DeleteFailures))
	for _, f := range rep.DeleteFailures {
		failed[f.Path] = f.Err
	}

	for _, group := range rep.Groups {
		gRes := GroupResult{
			Hash:   group.Hash,
			Size:   group.Size,
			Keeper: group.Keeper(),
		}
		for _, file := range group.Duplicates() {
			v := Victim{
				Path:    file.Path,
				Size:    file.Size,
				Linked:  file.SameFile(group.Keeper()),
				Deleted: deleted[file.Path],
			}
			if v.Linked {
				out.Summary.TotalHardLinks++
			}
			if v.Deleted {
				out.Summary.FreedBytes += file.Size
			}
			// Un enlace rechazado no es un error: se cuenta en TotalHardLinks
			if err, ok := failed[file.Path]; ok && !errors.Is(err, engine.ErrLinkedToKeeper) {
				v.Error = err.Error()
				out.Summary.TotalDeleteErrors++
			}
			gRes.Victims = append(gRes.Victims, v)
		}
		out.Groups = append(out.Groups, gRes)
	}
	out.Summary.FreedBytesHuman = humanize.Bytes(uint64(out.Summary.FreedBytes))

	return out
}

// printText muestra los pares (original, duplicado) y el resumen.
func printText(w io.Writer, r Report, deleteMode bool) {
	for _, d := range r.Problems.SkippedDirs {
		fmt.Fprintf(w, "⚠️  Sin permisos, omitido: %s\n", d.Path)
	}
	for _, f := range r.Problems.Unreadable {
		fmt.Fprintf(w, "⚠️  No se pudo leer: %s (%v)\n", f.Path, f.Err)
	}

	if len(r.Groups) == 0 {
		fmt.Fprintln(w, "✅ ¡Limpio! No se encontraron duplicados.")
		printSummary(w, r, deleteMode)
		return
	}

	fmt.Fprintln(w, "🔴 DUPLICADOS ENCONTRADOS:")
	n := 0
	for _, g := range r.Groups {
		fmt.Fprintf(w, "   📦 Grupo (Size: %s) | 👑 KEEPER: %s\n", humanize.Bytes(uint64(g.Size)), g.Keeper.Path)
		for _, v := range g.Victims {
			n++
			switch {
			case v.Linked:
				fmt.Fprintf(w, "      🔗 %d. [HardLink]: %s (no se borra)\n", n, v.Path)
			case v.Error != "":
				fmt.Fprintf(w, "      ❌ %d. Error borrando %s: %s\n", n, v.Path, v.Error)
			case v.Deleted:
				fmt.Fprintf(w, "      🔥 %d. Borrado: %s (%s)\n", n, v.Path, humanize.Bytes(uint64(v.Size)))
			default:
				fmt.Fprintf(w, "      🗑️  %d. [Duplicado]: %s (%s)\n", n, v.Path, humanize.Bytes(uint64(v.Size)))
			}
		}
		fmt.Fprintln(w)
	}

	printSummary(w, r, deleteMode)
}

func printSummary(w io.Writer, r Report, deleteMode bool) {
	fmt.Fprintln(w, "------------------------------------------------")
	fmt.Fprintf(w, "📁 Archivos: %s encontrados, %s hasheados\n",
		humanize.Comma(int64(r.Summary.TotalFilesFound)), humanize.Comma(int64(r.Summary.TotalFilesHashed)))
	if deleteMode {
		fmt.Fprintf(w, "🏁 Operación completada. Borrados: %d, errores: %d\n", r.Summary.TotalDeleted, r.Summary.TotalDeleteErrors)
		fmt.Fprintf(w, "💾 Espacio liberado: %s\n", r.Summary.FreedBytesHuman)
	} else {
		fmt.Fprintf(w, "🏁 Escaneo terminado. Duplicados: %d\n", r.Summary.TotalDuplicates)
		fmt.Fprintf(w, "💾 Espacio desperdiciado: %s\n", r.Summary.WastedBytesHuman)
	}
	if r.Summary.TotalHardLinks > 0 {
		fmt.Fprintf(w, "🔗 HardLinks al original (no ocupan espacio extra): %d\n", r.Summary.TotalHardLinks)
	}
	fmt.Fprintf(w, "⏱️  Tiempo: %s\n", r.Metadata.Duration)
}

func generateShellScript(r Report, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "#!/bin/sh\n")
	fmt.Fprintf(w, "# Generado por dupehash (%s)\n", r.Metadata.Algorithm)
	fmt.Fprintf(w, "echo 'Iniciando limpieza...'\n\n")

	for _, g := range r.Groups {
		if len(g.Victims) == 0 {
			continue
		}
		fmt.Fprintf(w, "# Group Hash: %s\n", g.Hash)
		fmt.Fprintf(w, "# Keeper: %s\n", g.Keeper.Path)
		for _, v := range g.Victims {
			if v.Linked {
				fmt.Fprintf(w, "# HardLink (se conserva): %s\n", v.Path)
				continue
			}
			fmt.Fprintf(w, "rm -v %q\n", v.Path)
		}
		fmt.Fprintf(w, "\n")
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

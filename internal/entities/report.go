package entities

import (
	"encoding/json"
	"time"
)

// FileFailure describe un fallo sobre un archivo concreto (stat, hash o borrado).
// Nunca aborta el escaneo; se acumula en el reporte.
type FileFailure struct {
	Path string
	Op   string
	Err  error
}

func (f FileFailure) Error() string {
	return f.Op + " " + f.Path + ": " + f.Err.Error()
}

func (f FileFailure) Unwrap() error { return f.Err }

// MarshalJSON serializa el error como texto.
func (f FileFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Op    string `json:"op"`
		Error string `json:"error"`
	}{f.Path, f.Op, f.Err.Error()})
}

// Warning es una incidencia no fatal del recorrido (directorio sin permisos).
type Warning struct {
	Path string
	Err  error
}

func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{w.Path, w.Err.Error()})
}

// Report es el resultado de una ejecución completa.
type Report struct {
	Root           string            `json:"root"`
	FilesFound     int               `json:"files_found"`
	FilesHashed    int               `json:"files_hashed"`
	DuplicateCount int64             `json:"duplicate_count"`
	WastedBytes    int64             `json:"wasted_bytes"`
	Groups         []*DuplicateGroup `json:"groups"`
	Failures       []FileFailure     `json:"failures,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
	Deleted        []string          `json:"deleted,omitempty"`
	DeleteFailures []FileFailure     `json:"delete_failures,omitempty"`
	Duration       time.Duration     `json:"duration_ns"`
}

// Duplicates aplana los grupos en pares (original, copia), en orden de grupo.
func (r *Report) Duplicates() []Duplicate {
	var out []Duplicate
	for _, g := range r.Groups {
		keeper := g.Keeper()
		for _, f := range g.Duplicates() {
			out = append(out, Duplicate{Keeper: keeper, File: f})
		}
	}
	return out
}

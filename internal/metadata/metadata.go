// Package metadata lee tamaño, fechas e identidad de un archivo sin leer su
// contenido.
package metadata

import "time"

// Metadata son los datos de stat relevantes para la detección de duplicados.
type Metadata struct {
	Size      int64
	CreatedAt time.Time // Fecha de creación; ctime o mtime si el sistema no la ofrece
	ModTime   time.Time
	DeviceID  uint64
	Inode     uint64
}

// Stat sigue symlinks: describe el contenido que se va a hashear.
func Stat(path string) (Metadata, error) {
	return stat(path)
}

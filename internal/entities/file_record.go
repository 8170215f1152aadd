package entities

import (
	"time"
)

// FileRecord es la huella de un archivo: ruta, metadatos y hash de contenido.
// Se construye una sola vez tras hashear el archivo y no se modifica después.
type FileRecord struct {
	Seq       int       `json:"-"` // Orden de aparición durante el recorrido
	Path      string    `json:"path"`
	Size      int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	ModTime   time.Time `json:"mod_time"`
	Hash      string    `json:"hash"`
	DeviceID  uint64    `json:"device_id"`
	Inode     uint64    `json:"inode"`
}

// SameFile indica si ambos registros apuntan al mismo inodo (hard link o
// symlink resuelto). Sin información de inodo nunca son el mismo archivo.
func (f *FileRecord) SameFile(other *FileRecord) bool {
	if f.Inode == 0 || other.Inode == 0 {
		return false
	}
	return f.DeviceID == other.DeviceID && f.Inode == other.Inode
}

// DuplicateGroup agrupa archivos con el mismo hash de contenido.
// Files[0] es el "Keeper" (Original); el resto son duplicados.
type DuplicateGroup struct {
	Hash  string        `json:"hash"`
	Size  int64         `json:"file_size"`
	Files []*FileRecord `json:"files"`
}

// Keeper devuelve el archivo que se conserva.
func (g *DuplicateGroup) Keeper() *FileRecord {
	return g.Files[0]
}

// Duplicates devuelve los archivos sobrantes del grupo.
func (g *DuplicateGroup) Duplicates() []*FileRecord {
	return g.Files[1:]
}

// Duplicate es un par (original conservado, copia).
type Duplicate struct {
	Keeper *FileRecord
	File   *FileRecord
}

package hasher

import (
	"crypto/md5"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// ErrUnknownAlgorithm se devuelve cuando se pide un algoritmo no registrado.
var ErrUnknownAlgorithm = errors.New("algoritmo de hash desconocido")

// DefaultAlgorithm es xxhash: no criptográfico pero muy rápido en disco.
const DefaultAlgorithm = "xxhash"

// Algorithm describe un digest disponible.
type Algorithm struct {
	Name string
	Size int // Bytes del digest
	New  func() hash.Hash
}

var algorithms = map[string]*Algorithm{
	"xxhash": {Name: "xxhash", Size: 8, New: func() hash.Hash { return xxhash.New() }},
	"blake3": {Name: "blake3", Size: 32, New: func() hash.Hash { return blake3.New() }},
	"sha256": {Name: "sha256", Size: sha256.Size, New: sha256.New},
	"md5":    {Name: "md5", Size: md5.Size, New: md5.New},
}

// Lookup devuelve el algoritmo por nombre (sin distinguir mayúsculas).
// Cadena vacía equivale a DefaultAlgorithm.
func Lookup(name string) (*Algorithm, error) {
	if name == "" {
		name = DefaultAlgorithm
	}
	alg, ok := algorithms[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (disponibles: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return alg, nil
}

// Names lista los algoritmos registrados, ordenados.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for n := range algorithms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

package hasher

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"
)

// BlockSize es el tamaño de bloque de lectura por defecto (4KB).
const BlockSize = 4 * 1024

// Hasher calcula el hash de contenido leyendo en bloques de tamaño fijo.
// Es seguro para uso concurrente: buffers y digests salen de pools propios.
type Hasher struct {
	alg       *Algorithm
	blockSize int

	bufferPool sync.Pool
	hashPool   sync.Pool
}

// New crea un Hasher. blockSize <= 0 usa BlockSize.
func New(alg *Algorithm, blockSize int) *Hasher {
	if blockSize <= 0 {
		blockSize = BlockSize
	}
	h := &Hasher{alg: alg, blockSize: blockSize}
	h.bufferPool.New = func() any {
		b := make([]byte, blockSize)
		return &b
	}
	h.hashPool.New = func() any {
		return alg.New()
	}
	return h
}

// Algorithm devuelve el algoritmo configurado.
func (h *Hasher) Algorithm() *Algorithm { return h.alg }

// HashFile calcula el hash completo de path sin cargar el archivo en memoria.
func (h *Hasher) HashFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	sum, err := h.HashReader(ctx, file)
	if err != nil {
		return "", fmt.Errorf("leyendo %s: %w", path, err)
	}
	return sum, nil
}

// HashReader consume r bloque a bloque y devuelve el digest en hexadecimal.
// Cancelar ctx aborta la lectura entre bloques.
func (h *Hasher) HashReader(ctx context.Context, r io.Reader) (string, error) {
	d := h.hashPool.Get().(hash.Hash)
	d.Reset()
	defer h.hashPool.Put(d)

	bufPtr := h.bufferPool.Get().(*[]byte)
	buf := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = d.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(d.Sum(nil)), nil
}

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soyunomas/dupehash/internal/entities"
	"github.com/soyunomas/dupehash/internal/hasher"
)

// makeTree crea los archivos indicados (ruta relativa -> contenido).
func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newHasher(t *testing.T, name string) *hasher.Hasher {
	t.Helper()
	alg, err := hasher.Lookup(name)
	require.NoError(t, err)
	return hasher.New(alg, 0)
}

func rec(seq int, path, hash string, size int64) *entities.FileRecord {
	return &entities.FileRecord{Seq: seq, Path: path, Hash: hash, Size: size}
}

func groupPaths(rep *entities.Report) [][]string {
	var out [][]string
	for _, g := range rep.Groups {
		var paths []string
		for _, f := range g.Files {
			paths = append(paths, f.Path)
		}
		out = append(out, paths)
	}
	return out
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyunomas/dupehash/internal/metadata"
)

func TestFingerprinter_OneRecordPerPath(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 50; i++ {
		files[fmt.Sprintf("d%d/f%02d.txt", i%5, i)] = fmt.Sprintf("contenido %d", i%7)
	}
	root := makeTree(t, files)

	var paths []string
	for rel := range files {
		paths = append(paths, filepath.Join(root, rel))
	}
	sort.Strings(paths)

	var calls atomic.Int64
	var last atomic.Int64
	fp := NewFingerprinter(newHasher(t, "sha256"), 4, func(done, total int) {
		calls.Add(1)
		last.Store(int64(done))
		assert.Equal(t, len(paths), total)
	}, nil)

	records, failures, err := fp.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, records, len(paths))
	assert.EqualValues(t, len(paths), calls.Load())
	assert.EqualValues(t, len(paths), last.Load())

	seen := map[string]bool{}
	for _, r := range records {
		assert.False(t, seen[r.Path], "ruta repetida %s", r.Path)
		seen[r.Path] = true
		assert.Equal(t, paths[r.Seq], r.Path)
		assert.Len(t, r.Hash, 64)
		assert.Greater(t, r.Size, int64(0))
		assert.False(t, r.ModTime.IsZero())
	}
}

func TestFingerprinter_VanishedFileIsReportedNotFatal(t *testing.T) {
	root := makeTree(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	paths := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "gone1.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "gone2.txt"),
	}

	records, failures, err := NewFingerprinter(newHasher(t, "xxhash"), 2, nil, nil).Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, failures, 2)
	assert.Equal(t, paths[1], failures[0].Path)
	assert.Equal(t, paths[3], failures[1].Path)
	for _, f := range failures {
		assert.True(t, errors.Is(f, fs.ErrNotExist))
	}
}

func TestFingerprinter_HashFailureAfterStat(t *testing.T) {
	root := makeTree(t, map[string]string{"a.txt": "a"})
	path := filepath.Join(root, "a.txt")

	fp := NewFingerprinter(newHasher(t, "md5"), 1, nil, nil)
	// Simula que el archivo desaparece entre stat y hash
	fp.stat = func(p string) (metadata.Metadata, error) {
		return metadata.Metadata{Size: 1}, nil
	}
	records, failures, err := fp.Run(context.Background(), []string{filepath.Join(root, "ghost"), path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, failures, 1)
	assert.Equal(t, "hash", failures[0].Op)
}

func TestFingerprinter_Empty(t *testing.T) {
	records, failures, err := NewFingerprinter(newHasher(t, "md5"), 0, nil, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, failures)
}

func TestFingerprinter_Canceled(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("f%d", i)] = "x"
	}
	root := makeTree(t, files)
	var paths []string
	for rel := range files {
		paths = append(paths, filepath.Join(root, rel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	fp := NewFingerprinter(newHasher(t, "md5"), 2, func(done, total int) {
		if done == 3 {
			cancel()
		}
	}, nil)

	records, failures, err := fp.Run(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
	assert.Nil(t, failures)
}

package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestWalk_DepthFirstLexical(t *testing.T) {
	root := makeTree(t, map[string]string{
		"b.txt":         "b",
		"a.txt":         "a",
		"sub/c.txt":     "c",
		"sub/deep/d.go": "d",
		"z/e.txt":       "e",
	})

	var c Collector
	warnings, err := New(Config{}).Walk(context.Background(), root, &c)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt", "sub/deep/d.go", "z/e.txt"}, rels(t, root, c.Paths))
}

func TestWalk_NameFilterMatchesBaseNameAtAnyDepth(t *testing.T) {
	root := makeTree(t, map[string]string{
		"a.txt":              "a",
		"a.log":              "l",
		"txt.dir/b.bin":      "b",
		"x/y/z/c.txt":        "c",
		"x/y/z/c.txt.backup": "c",
	})

	type call struct{ path, name string }
	var calls []call
	h := HandlerFunc(func(path, name string) error {
		calls = append(calls, call{path, name})
		return nil
	})

	_, err := New(Config{Matcher: regexp.MustCompile(`\.txt$`)}).Walk(context.Background(), root, h)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, filepath.Base(c.path), c.name)
		assert.Regexp(t, `\.txt$`, c.name)
	}
}

func TestWalk_Excludes(t *testing.T) {
	root := makeTree(t, map[string]string{
		"keep/a.txt":        "a",
		".git/objects/x":    "x",
		"node_modules/m.js": "m",
		"keep/.git/config":  "c",
	})

	var c Collector
	_, err := New(Config{Excludes: []string{".git", "node_modules"}}).Walk(context.Background(), root, &c)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep/a.txt"}, rels(t, root, c.Paths))
}

func TestWalk_ExcludePathsSkipsOnlyThatDirectory(t *testing.T) {
	root := makeTree(t, map[string]string{
		"a.txt":          "a",
		"docs/b.txt":     "b",
		"sub/docs/c.txt": "c",
	})

	var c Collector
	_, err := New(Config{ExcludePaths: []string{filepath.Join(root, "docs") + string(filepath.Separator)}}).
		Walk(context.Background(), root, &c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub/docs/c.txt"}, rels(t, root, c.Paths))
}

func TestWalk_PermissionDeniedSubtreeIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignora los permisos de directorio")
	}
	root := makeTree(t, map[string]string{
		"a/one.txt":    "1",
		"locked/x.txt": "x",
		"z/two.txt":    "2",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var c Collector
	warnings, err := New(Config{}).Walk(context.Background(), root, &c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one.txt", "z/two.txt"}, rels(t, root, c.Paths))
	require.Len(t, warnings, 1)
	assert.Equal(t, locked, warnings[0].Path)
}

func TestWalk_Symlinks(t *testing.T) {
	root := makeTree(t, map[string]string{
		"real.txt":   "r",
		"dir/in.txt": "i",
	})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks no soportados: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken")))

	var none Collector
	_, err := New(Config{}).Walk(context.Background(), root, &none)
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/in.txt", "real.txt"}, rels(t, root, none.Paths))

	var files Collector
	_, err = New(Config{Symlinks: SymlinksFiles}).Walk(context.Background(), root, &files)
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/in.txt", "link.txt", "real.txt"}, rels(t, root, files.Paths))
}

func TestWalk_HandlerErrorAborts(t *testing.T) {
	root := makeTree(t, map[string]string{"a": "a", "b": "b"})
	boom := errors.New("boom")

	n := 0
	_, err := New(Config{}).Walk(context.Background(), root, HandlerFunc(func(string, string) error {
		n++
		return boom
	}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
}

func TestWalk_NilHandler(t *testing.T) {
	_, err := New(Config{}).Walk(context.Background(), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWalk_MissingRootIsFatal(t *testing.T) {
	var c Collector
	_, err := New(Config{}).Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), &c)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWalk_Canceled(t *testing.T) {
	root := makeTree(t, map[string]string{"a": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var c Collector
	_, err := New(Config{}).Walk(ctx, root, &c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Paths)
}

func TestParseSymlinkMode(t *testing.T) {
	m, err := ParseSymlinkMode("FILES")
	require.NoError(t, err)
	assert.Equal(t, SymlinksFiles, m)

	m, err = ParseSymlinkMode("")
	require.NoError(t, err)
	assert.Equal(t, SymlinksNone, m)

	_, err = ParseSymlinkMode("all")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

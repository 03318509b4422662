package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigUsesKittenHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("KITTEN_HOME", home)

	c := DefaultConfig()
	assert.Equal(t, home, c.Home)
	assert.Equal(t, filepath.Join(home, "lib"), c.LibDir)

	require.NoError(t, c.EnsureDirs())
	info, err := os.Stat(c.LibDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLibraryDir(t *testing.T) {
	c := &Config{LibDir: "/lib"}
	tests := []struct {
		lib  Library
		want string
	}{
		{Library{Name: "shapes", Ref: "v1.2.0"}, "/lib/shapes@v1.2.0"},
		{Library{Name: "shapes", Ref: "feature/x"}, "/lib/shapes@feature_x"},
		{Library{Name: "shapes"}, "/lib/shapes@HEAD"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, c.LibraryDir(tt.lib))
		})
	}
}

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ProjectFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := writeProject(t, dir, `
main: Main
classpath: [src, /opt/kitten]
tests: true
libraries:
  - name: shapes
    url: https://example.com/shapes.git
    ref: v1.0.0
    dir: classes
`)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "Main", p.Main)
	assert.True(t, p.Tests)
	assert.Equal(t, dir, p.Dir())
	require.Len(t, p.Libraries, 1)
	assert.Equal(t, "v1.0.0", p.Libraries[0].Ref)

	c := &Config{LibDir: "/lib"}
	assert.Equal(t, []string{
		filepath.Join(dir, "src"),
		"/opt/kitten",
		"/lib/shapes@v1.0.0/classes",
	}, c.Classpath(p))
}

func TestLoadProjectDefaultsClasspath(t *testing.T) {
	dir := t.TempDir()
	p, err := LoadProject(writeProject(t, dir, "main: Main\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, (&Config{}).Classpath(p))
}

func TestLoadProjectErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "", "is empty"},
		{"unknown field", "mian: Main\n", "field mian not found"},
		{"library without url", "libraries:\n  - name: a\n", "library a has no url"},
		{"library without name", "libraries:\n  - url: x\n", "library 1 has no name"},
		{"duplicate library", "libraries:\n  - {name: a, url: x}\n  - {name: a, url: y}\n", "library a is declared twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProject(writeProject(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindProject(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "main: App\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	p, err := FindProject(nested)
	require.NoError(t, err)
	assert.Equal(t, "App", p.Main)
	assert.Equal(t, root, p.Dir())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewProject(dir)
	p.Main = "Main"
	p.Libraries = []Library{{Name: "shapes", URL: "https://example.com/shapes.git"}}
	require.NoError(t, p.Save())

	loaded, err := LoadProject(filepath.Join(dir, ProjectFile))
	require.NoError(t, err)
	assert.Equal(t, p.Main, loaded.Main)
	assert.Equal(t, p.Classpath, loaded.Classpath)
	assert.Equal(t, p.Libraries, loaded.Libraries)
}

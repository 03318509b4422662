package fetch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kitten/internal/config"
)

// libraryRepo creates a repository holding Shape.kit, committed twice:
// "v1" tagged v1.0.0, then "v2" on the default branch.
func libraryRepo(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(body string) plumbing.Hash {
		src := "class Shape { method int version() return " + body + " }"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Shape.kit"), []byte(src), 0644))
		_, err := wt.Add("Shape.kit")
		require.NoError(t, err)
		h, err := wt.Commit("version "+body, &git.CommitOptions{
			Author: &object.Signature{Name: "kitten", Email: "kitten@example.com", When: time.Now()},
		})
		require.NoError(t, err)
		return h
	}

	first := commit("1")
	_, err = repo.CreateTag("v1.0.0", first, nil)
	require.NoError(t, err)
	commit("2")
	return dir, first
}

func newFetcher(t *testing.T) *Fetcher {
	t.Helper()
	return New(&config.Config{Home: t.TempDir(), LibDir: filepath.Join(t.TempDir(), "lib")})
}

func readShape(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "Shape.kit"))
	require.NoError(t, err)
	return string(data)
}

func TestFetchRefs(t *testing.T) {
	repo, first := libraryRepo(t)
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"default branch", "", "return 2"},
		{"tag", "v1.0.0", "return 1"},
		{"commit", first.String(), "return 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFetcher(t)
			lib := config.Library{Name: "shapes", URL: repo, Ref: tt.ref}
			assert.False(t, f.IsCached(lib))

			dir, err := f.Fetch(lib)
			require.NoError(t, err)
			assert.Equal(t, f.cfg.LibraryDir(lib), dir)
			assert.Contains(t, readShape(t, dir), tt.want)
			assert.True(t, f.IsCached(lib))
		})
	}
}

func TestFetchUnknownRef(t *testing.T) {
	repo, _ := libraryRepo(t)
	f := newFetcher(t)
	lib := config.Library{Name: "shapes", URL: repo, Ref: "v9.9.9"}

	_, err := f.Fetch(lib)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ref not found: v9.9.9")
	assert.False(t, f.IsCached(lib))
}

func TestFetchUsesCache(t *testing.T) {
	repo, _ := libraryRepo(t)
	f := newFetcher(t)
	lib := config.Library{Name: "shapes", URL: repo, Ref: "v1.0.0"}

	dir, err := f.Fetch(lib)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(repo))

	again, err := f.Fetch(lib)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestFetchAllStopsAtFailure(t *testing.T) {
	repo, _ := libraryRepo(t)
	f := newFetcher(t)

	_, err := f.FetchAll([]config.Library{
		{Name: "shapes", URL: repo},
		{Name: "missing", URL: filepath.Join(t.TempDir(), "nothing")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library missing")
}

func TestTags(t *testing.T) {
	repo, _ := libraryRepo(t)
	tags, err := newFetcher(t).Tags(config.Library{Name: "shapes", URL: repo})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0"}, tags)
}

func TestGitURL(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"github.com/user/shapes", "https://github.com/user/shapes.git"},
		{"github.com/user/shapes/sub", "https://github.com/user/shapes.git"},
		{"gitlab.com/user/shapes.git", "https://gitlab.com/user/shapes.git"},
		{"example.com/shapes", "https://example.com/shapes.git"},
		{"https://example.com/shapes.git", "https://example.com/shapes.git"},
		{"git@github.com:user/shapes.git", "git@github.com:user/shapes.git"},
		{"/srv/git/shapes", "/srv/git/shapes"},
		{"./shapes", "./shapes"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, gitURL(tt.location))
		})
	}
}

// Package fetch checks out Kitten libraries from git repositories into the
// library directory, where they are added to the classpath.
package fetch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"martianoff/kitten/internal/config"
)

// Fetcher fetches libraries with go-git.
type Fetcher struct {
	cfg    *config.Config
	logger *log.Logger
}

// New returns a fetcher storing libraries under cfg.LibDir.
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{cfg: cfg, logger: log.New(io.Discard, "", 0)}
}

// SetLogger sets the logger reporting clones and checkouts.
func (f *Fetcher) SetLogger(l *log.Logger) {
	f.logger = l
}

// IsCached reports whether lib has already been checked out.
func (f *Fetcher) IsCached(lib config.Library) bool {
	info, err := os.Stat(f.cfg.LibraryDir(lib))
	return err == nil && info.IsDir()
}

// Fetch checks out lib at its ref and returns the checkout directory.
// A library already checked out is not fetched again.
func (f *Fetcher) Fetch(lib config.Library) (string, error) {
	dest := f.cfg.LibraryDir(lib)
	if f.IsCached(lib) {
		return dest, nil
	}
	if err := f.cfg.EnsureDirs(); err != nil {
		return "", fmt.Errorf("failed to create library directory: %w", err)
	}

	url := gitURL(lib.URL)
	// Cloned next to its destination so that the final rename stays on
	// one file system.
	tempDir, err := os.MkdirTemp(f.cfg.LibDir, ".fetch-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	f.logger.Printf("cloning %s", url)
	repo, err := git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone repository %s: %w", url, err)
	}
	if lib.Ref != "" {
		if err := checkout(repo, lib.Ref); err != nil {
			return "", fmt.Errorf("failed to checkout %s: %w", lib.Ref, err)
		}
		f.logger.Printf("checked out %s at %s", lib.Name, lib.Ref)
	}

	if err := os.Rename(tempDir, dest); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", lib.Name, err)
	}
	return dest, nil
}

// FetchAll fetches every library, stopping at the first failure.
func (f *Fetcher) FetchAll(libs []config.Library) ([]string, error) {
	dirs := make([]string, 0, len(libs))
	for _, lib := range libs {
		dir, err := f.Fetch(lib)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib.Name, err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// Tags lists the tags of the repository of lib, sorted by name, without
// cloning it.
func (f *Fetcher) Tags(lib config.Library) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{gitURL(lib.URL)},
	})
	refs, err := remote.List(&git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs: %w", err)
	}
	var tags []string
	for _, ref := range refs {
		if ref.Name().IsTag() {
			tags = append(tags, ref.Name().Short())
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// checkout tries ref as a tag, a branch, a remote branch and a commit.
func checkout(repo *git.Repository, ref string) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	candidates := []plumbing.Revision{
		plumbing.Revision(plumbing.NewTagReferenceName(ref)),
		plumbing.Revision(plumbing.NewBranchReferenceName(ref)),
		plumbing.Revision(plumbing.NewRemoteReferenceName("origin", ref)),
		plumbing.Revision(ref),
	}
	for _, rev := range candidates {
		hash, err := repo.ResolveRevision(rev)
		if err != nil {
			continue
		}
		return worktree.Checkout(&git.CheckoutOptions{Hash: *hash})
	}
	return fmt.Errorf("ref not found: %s", ref)
}

// gitURL turns a library location into a clone URL. URLs and local paths
// are kept, host paths such as github.com/user/repo become https URLs.
func gitURL(location string) string {
	if strings.Contains(location, "://") || strings.HasPrefix(location, "git@") || filepath.IsAbs(location) || strings.HasPrefix(location, ".") {
		return location
	}
	parts := strings.Split(strings.TrimSuffix(location, ".git"), "/")
	switch parts[0] {
	case "github.com", "gitlab.com", "bitbucket.org":
		if len(parts) >= 3 {
			return fmt.Sprintf("https://%s/%s/%s.git", parts[0], parts[1], parts[2])
		}
	}
	return "https://" + strings.Join(parts, "/") + ".git"
}

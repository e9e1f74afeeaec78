package report

import (
	"errors"
	"fmt"

	ggit "github.com/go-git/go-git/v5"
)

// Revision identifies the commit the model sources were taken from.
type Revision struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// Short returns the abbreviated commit hash, with a "+dirty" suffix when
// the worktree has changes.
func (r *Revision) Short() string {
	c := r.Commit
	if len(c) > 12 {
		c = c[:12]
	}
	if r.Dirty {
		c += "+dirty"
	}
	return c
}

// ModelRevision returns the HEAD revision of the repository containing dir.
// It returns nil and no error when dir is not inside a git repository.
func ModelRevision(dir string) (*Revision, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("open repository for %s: %w", dir, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	rev := &Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return rev, nil
	}
	status, err := wt.Status()
	if err != nil {
		return rev, nil
	}
	rev.Dirty = !status.IsClean()
	return rev, nil
}

package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// hasUnpushedCommits reports whether the tip of branch is reachable from
// neither its upstream (or origin/<branch>) nor the default branch.
// A branch in that state holds commits that exist nowhere else.
func hasUnpushedCommits(repoPath, branch string) (bool, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("open repository: %w", err)
	}

	local, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return false, fmt.Errorf("lookup branch %s: %w", branch, err)
	}
	tip, err := repo.CommitObject(local.Hash())
	if err != nil {
		return false, fmt.Errorf("lookup commit %s: %w", local.Hash(), err)
	}

	for _, name := range safeRefs(repo, branch) {
		ref, err := repo.Reference(name, true)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("lookup %s: %w", name, err)
		}
		if ref.Hash() == tip.Hash {
			return false, nil
		}
		other, err := repo.CommitObject(ref.Hash())
		if err != nil {
			continue
		}
		contained, err := tip.IsAncestor(other)
		if err != nil {
			return false, fmt.Errorf("check ancestry: %w", err)
		}
		if contained {
			return false, nil
		}
	}
	return true, nil
}

// safeRefs lists the refs that count as "somewhere else" for branch.
func safeRefs(repo *gogit.Repository, branch string) []plumbing.ReferenceName {
	var refs []plumbing.ReferenceName

	remote, merge := "origin", plumbing.NewBranchReferenceName(branch)
	if cfg, err := repo.Config(); err == nil {
		if b, ok := cfg.Branches[branch]; ok && b.Remote != "" && b.Merge != "" {
			remote, merge = b.Remote, b.Merge
		}
	}
	if remote != "." {
		refs = append(refs, plumbing.NewRemoteReferenceName(remote, merge.Short()))
	}

	for _, def := range defaultRefCandidates(repo) {
		if def.Short() != branch {
			refs = append(refs, def)
		}
	}
	return refs
}

func defaultRefCandidates(repo *gogit.Repository) []plumbing.ReferenceName {
	var refs []plumbing.ReferenceName
	if head, err := repo.Reference(plumbing.NewRemoteHEADReferenceName("origin"), false); err == nil && head.Type() == plumbing.SymbolicReference {
		refs = append(refs, head.Target())
	}
	return append(refs,
		plumbing.NewBranchReferenceName("main"),
		plumbing.NewBranchReferenceName("master"),
	)
}

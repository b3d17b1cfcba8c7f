// Package filesync copies configured files from the main repository into a
// new worktree.
//
// Patterns are doublestar globs relative to the source root. A directory match
// is copied recursively. Existing destination files are never overwritten.
package filesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Tsdevendra1/branchlet/internal/log"
)

// Error reports an I/O failure that stopped the copy.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("copy files: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result lists relative paths handled by CopyFiles.
type Result struct {
	// Copied holds files and symlinks written to the destination.
	Copied []string
	// Skipped holds files left alone because the destination already had them.
	Skipped []string
}

// CopyFiles copies every entry under sourceRoot matched by include and not
// matched by exclude to the same relative path under destRoot.
//
// A pattern matching nothing is not an error, nor is a file that vanishes
// while copying. Any other I/O failure aborts with *Error.
func CopyFiles(ctx context.Context, sourceRoot, destRoot string, include, exclude []string) (*Result, error) {
	l := log.FromContext(ctx)
	res := &Result{}
	if len(include) == 0 {
		return res, nil
	}

	matches, err := expand(sourceRoot, include)
	if err != nil {
		return res, err
	}

	c := &copier{
		ctx:     ctx,
		src:     sourceRoot,
		dst:     destRoot,
		exclude: exclude,
		seen:    make(map[string]bool),
		res:     res,
	}
	for _, rel := range matches {
		if err := c.copyTree(rel); err != nil {
			return res, err
		}
	}

	l.Debug("copied files", "copied", len(res.Copied), "skipped", len(res.Skipped))
	return res, nil
}

// expand evaluates patterns against root and returns the sorted, unique matches.
func expand(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	set := make(map[string]bool)
	for _, pat := range patterns {
		found, err := doublestar.Glob(fsys, pat)
		if err != nil {
			return nil, &Error{Op: "match", Path: pat, Err: err}
		}
		for _, m := range found {
			set[m] = true
		}
	}

	matches := make([]string, 0, len(set))
	for m := range set {
		if m != "." {
			matches = append(matches, m)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// excluded reports whether rel or any of its parent directories matches an
// exclude pattern.
func excluded(rel string, exclude []string) bool {
	for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		for _, pat := range exclude {
			if ok, _ := doublestar.Match(pat, p); ok {
				return true
			}
		}
	}
	return false
}

type copier struct {
	ctx     context.Context
	src     string
	dst     string
	exclude []string
	seen    map[string]bool
	res     *Result
}

// copyTree copies rel (slash separated) and, for directories, everything below it.
func (c *copier) copyTree(rel string) error {
	if excluded(rel, c.exclude) {
		return nil
	}

	root := filepath.Join(c.src, filepath.FromSlash(rel))
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return &Error{Op: "read", Path: p, Err: err}
		}
		if ctxErr := c.ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		r, err := filepath.Rel(c.src, p)
		if err != nil {
			return &Error{Op: "resolve", Path: p, Err: err}
		}
		r = filepath.ToSlash(r)

		if excluded(r, c.exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if c.seen[r] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		c.seen[r] = true

		return c.copyEntry(r, p, d)
	})
	return err
}

func (c *copier) copyEntry(rel, src string, d fs.DirEntry) error {
	dst := filepath.Join(c.dst, filepath.FromSlash(rel))

	switch {
	case d.Type()&fs.ModeSymlink != 0:
		ok, err := copySymlink(src, dst)
		if err != nil {
			return &Error{Op: "link", Path: rel, Err: err}
		}
		c.record(rel, ok)
	case d.IsDir():
		// matched directories exist even when nothing below them is copied
		info, err := d.Info()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return &Error{Op: "read", Path: rel, Err: err}
		}
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return &Error{Op: "mkdir", Path: rel, Err: err}
		}
	case d.Type().IsRegular():
		ok, err := copyFile(src, dst)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return &Error{Op: "copy", Path: rel, Err: err}
		}
		c.record(rel, ok)
	}
	return nil
}

func (c *copier) record(rel string, copied bool) {
	if copied {
		c.res.Copied = append(c.res.Copied, rel)
	} else {
		c.res.Skipped = append(c.res.Skipped, rel)
	}
}

// copyFile copies src to dst, creating parent directories as needed.
// Uses O_CREATE|O_EXCL to skip files that already exist (never overwrite).
// Preserves the source file's permission bits.
// Returns true if the file was copied, false if it was skipped (already exists).
func copyFile(src, dst string) (bool, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, err
	}

	// O_EXCL: fail if file exists (never overwrite)
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst) // clean up partial dst
		return false, err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return false, err
	}
	return true, nil
}

// copySymlink recreates the link at dst with the same target.
func copySymlink(src, dst string) (bool, error) {
	target, err := os.Readlink(src)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, err
	}
	if err := os.Symlink(target, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

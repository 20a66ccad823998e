// Package walker discovers documents under a directory tree.
package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the maximum document size to index (4 MB).
const DefaultMaxFileSize int64 = 4 << 20

// FileInfo describes one discovered document.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the root.
	Dir     string // Directory part of RelPath with a trailing slash, or "".
	Name    string // Base name.
	Size    int64
}

// Options controls Walk.
type Options struct {
	Root        string
	Include     []string // Glob patterns; only matching files are kept. Empty means DefaultInclude.
	Exclude     []string // Glob patterns; matching files are dropped.
	MaxFileSize int64    // 0 means DefaultMaxFileSize.
}

// Filter decides which files under a root are documents. Walk and the
// directory watcher share it so both apply the same rules.
type Filter struct {
	Root    string // Absolute root directory.
	include []string
	exclude []string
	maxSize int64
	ignore  gitignore
}

// NewFilter resolves opts.Root and loads its .gitignore.
func NewFilter(opts Options) (*Filter, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	f := &Filter{
		Root:    root,
		include: opts.Include,
		exclude: opts.Exclude,
		maxSize: opts.MaxFileSize,
		ignore:  loadGitignore(filepath.Join(root, ".gitignore")),
	}
	if len(f.include) == 0 {
		f.include = DefaultInclude
	}
	if f.maxSize <= 0 {
		f.maxSize = DefaultMaxFileSize
	}
	return f, nil
}

// Match applies the path-only rules to rel: default-excluded directories,
// .gitignore and the include/exclude globs. It needs no file on disk, so it
// also works for paths that were just removed.
func (f *Filter) Match(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if shouldExcludeDir(dir) {
			return false
		}
	}
	if f.ignore.matches(rel) {
		return false
	}
	return MatchesInclude(rel, f.include) && !MatchesExclude(rel, f.exclude)
}

// Accept reports whether the regular file at absPath, known as rel under
// the root, should be indexed. On top of Match it rejects oversized and
// binary files.
func (f *Filter) Accept(rel, absPath string) (os.FileInfo, bool) {
	if !f.Match(rel) {
		return nil, false
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.Mode().IsRegular() || info.Size() > f.maxSize || isBinary(absPath) {
		return nil, false
	}
	return info, true
}

// Walk returns every text document under opts.Root that passes filtering.
// Binary files, oversized files, default-excluded directories and paths
// matched by the root .gitignore are skipped.
func Walk(opts Options) ([]FileInfo, error) {
	filter, err := NewFilter(opts)
	if err != nil {
		return nil, err
	}
	root := filter.Root
	if st, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	var files []FileInfo
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() {
			if p != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		info, ok := filter.Accept(rel, p)
		if !ok {
			return nil
		}

		dir, name := SplitRelPath(rel)
		files = append(files, FileInfo{
			Path:    p,
			RelPath: rel,
			Dir:     dir,
			Name:    name,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// SplitRelPath splits a slash-separated relative path into a directory with
// a trailing slash and a base name, so that dir+name == rel.
func SplitRelPath(rel string) (dir, name string) {
	rel = filepath.ToSlash(rel)
	dir, name = path.Split(rel)
	return dir, name
}

// HashBytes returns the SHA-256 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// isBinary treats a file as binary if its first 512 bytes contain a NUL.
func isBinary(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	return strings.IndexByte(string(buf[:n]), 0) >= 0
}

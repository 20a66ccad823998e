package walker

import (
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	".agentrag",
	"node_modules",
	"vendor",
	"__pycache__",
	"dist",
	"build",
	".venv",
	".idea",
	".vscode",
}

// DefaultInclude matches the text document types the loader understands.
var DefaultInclude = []string{
	"**/*.txt",
	"**/*.md",
	"**/*.markdown",
	"**/*.mdx",
	"**/*.rst",
	"**/*.adoc",
	"**/*.csv",
	"**/*.json",
	"**/*.yaml",
	"**/*.yml",
}

func shouldExcludeDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// MatchesInclude reports whether relPath matches any pattern. Empty patterns
// include everything.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// MatchesExclude reports whether relPath matches any pattern. Empty patterns
// exclude nothing.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny tries each pattern against the full path and against the base
// name, so "*.md" matches files at any depth.
func matchesAny(relPath string, patterns []string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// gitignore holds simplified .gitignore rules: negation is not supported.
type gitignore []string

func loadGitignore(p string) gitignore {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil
	}

	var rules gitignore
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		rules = append(rules, line)
	}
	return rules
}

// matches reports whether relPath, or one of its parent directories, is
// ignored. Rules without a slash match a single path component at any
// depth; anchored rules match from the root.
func (g gitignore) matches(relPath string) bool {
	if len(g) == 0 {
		return false
	}
	parts := strings.Split(relPath, "/")

	for _, rule := range g {
		dirOnly := strings.HasSuffix(rule, "/")
		rule = strings.TrimSuffix(rule, "/")

		if !strings.Contains(rule, "/") {
			for i, part := range parts {
				// The last component is the file itself.
				if dirOnly && i == len(parts)-1 {
					break
				}
				if ok, _ := doublestar.Match(rule, part); ok {
					return true
				}
			}
			continue
		}

		rule = strings.TrimPrefix(rule, "/")
		for i := range parts {
			prefix := strings.Join(parts[:i+1], "/")
			if dirOnly && i == len(parts)-1 {
				break
			}
			if ok, _ := doublestar.Match(rule, prefix); ok {
				return true
			}
		}
	}
	return false
}

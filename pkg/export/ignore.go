package export

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type ignoreRule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// IgnoreMatcher applies gitignore-like rules with "last rule wins" behavior.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// LoadGitignore builds a matcher from the .gitignore at root. A missing or
// unreadable file yields an empty matcher that ignores nothing.
func LoadGitignore(root string) *IgnoreMatcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &IgnoreMatcher{}
	}
	return NewIgnoreMatcher(strings.Split(string(data), "\n"))
}

// NewIgnoreMatcher builds a matcher from raw .gitignore lines.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	rules := make([]ignoreRule, 0, len(lines))
	for _, line := range lines {
		if parsed, ok := parseIgnoreRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &IgnoreMatcher{rules: rules}
}

func parseIgnoreRule(line string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	parsed := ignoreRule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	// A slash in the middle anchors the pattern to the root too.
	if strings.Contains(line, "/") {
		parsed.anchored = true
	}
	if line == "" {
		return ignoreRule{}, false
	}
	parsed.pattern = line
	return parsed, true
}

// Match reports whether relPath (slash-separated, relative to the root)
// should be excluded.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, rule := range m.rules {
		if ruleMatches(rule, relPath, isDir) {
			ignored = !rule.negated
		}
	}
	return ignored
}

func ruleMatches(rule ignoreRule, relPath string, isDir bool) bool {
	if rule.dirOnly && !isDir {
		// A directory pattern still covers everything beneath the directory.
		return matchBelow(rule, relPath)
	}

	if rule.anchored {
		if ok, _ := doublestar.Match(rule.pattern, relPath); ok {
			return true
		}
	} else {
		if ok, _ := doublestar.Match(rule.pattern, path.Base(relPath)); ok {
			return true
		}
		if ok, _ := doublestar.Match("**/"+rule.pattern, relPath); ok {
			return true
		}
	}
	return matchBelow(rule, relPath)
}

// matchBelow reports whether relPath sits under a directory the pattern
// names.
func matchBelow(rule ignoreRule, relPath string) bool {
	prefix := ""
	if !rule.anchored {
		prefix = "**/"
	}
	ok, _ := doublestar.Match(prefix+rule.pattern+"/**", relPath)
	return ok
}

package orchestrator

import (
	"strings"
	"unicode"
)

const maxDirectoryNameLength = 255

// ApplyBranchPrefix prepends prefix to name unless name already starts with it.
// Applying it twice gives the same result as applying it once.
func ApplyBranchPrefix(name, prefix string) string {
	if prefix == "" || strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + name
}

// ValidateDirectoryName checks a worktree directory name. It must be a single
// path element usable on every common filesystem.
func ValidateDirectoryName(name string) error {
	invalid := func(reason string) error {
		return &ValidationError{Field: "directory", Value: name, Reason: reason}
	}

	switch {
	case strings.TrimSpace(name) == "":
		return invalid("must not be empty")
	case name != strings.TrimSpace(name):
		return invalid("must not start or end with whitespace")
	case name == "." || name == "..":
		return invalid("must not be . or ..")
	case len(name) > maxDirectoryNameLength:
		return invalid("too long")
	}
	if i := strings.IndexAny(name, `/\<>:"|?*`); i >= 0 {
		return invalid("must not contain " + string(name[i]))
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return invalid("must not contain control characters")
	}
	return nil
}

// ValidateBranchName checks name against git's ref naming rules
// (git check-ref-format --branch) without running git.
func ValidateBranchName(name string) error {
	invalid := func(reason string) error {
		return &ValidationError{Field: "branch", Value: name, Reason: reason}
	}

	switch {
	case name == "":
		return invalid("must not be empty")
	case name == "@":
		return invalid("must not be @")
	case strings.HasPrefix(name, "-"):
		return invalid("must not start with -")
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return invalid("must not start or end with /")
	case strings.HasSuffix(name, "."):
		return invalid("must not end with .")
	case strings.Contains(name, ".."):
		return invalid("must not contain ..")
	case strings.Contains(name, "//"):
		return invalid("must not contain //")
	case strings.Contains(name, "@{"):
		return invalid("must not contain @{")
	}
	if i := strings.IndexAny(name, " ~^:?*[\\"); i >= 0 {
		return invalid("must not contain " + quoteChar(name[i]))
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return invalid("must not contain control characters")
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return invalid("path components must not start with .")
		}
		if strings.HasSuffix(part, ".lock") {
			return invalid("path components must not end with .lock")
		}
	}
	return nil
}

func quoteChar(c byte) string {
	if c == ' ' {
		return "spaces"
	}
	return string(c)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

package validate

import (
	"sort"
	"strings"
)

// FieldErrors maps a field path ("email", "experience[0].endDate") to the
// first message reported for it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+e[p])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e FieldErrors) add(path, msg string) {
	if _, ok := e[path]; !ok {
		e[path] = msg
	}
}

// merge copies other into e with every path prefixed.
func (e FieldErrors) merge(prefix string, other FieldErrors) {
	for p, msg := range other {
		e.add(prefix+p, msg)
	}
}

// orNil returns nil for an empty set so callers can return it as error.
func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

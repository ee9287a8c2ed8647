// Package platform defines the shared contracts between the snippet
// sandbox components: the supported languages, the execution result shape,
// the machine interface implemented per language, and the phase events
// emitted while a run is in flight.
package platform

import "fmt"

// Language identifies which parser, package catalog, and execution path
// apply to a snippet. Immutable for the duration of a run.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
)

// Valid reports whether the language is one of the supported set.
func (l Language) Valid() bool {
	switch l {
	case JavaScript, Python:
		return true
	}
	return false
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage normalizes common spellings ("js", "py") to a Language.
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "js", "javascript", "JavaScript":
		return JavaScript, nil
	case "py", "python", "Python":
		return Python, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// Package imports statically scans snippet text and extracts the external
// package identifiers it references. This is a best-effort regex scan, not
// a parser with error recovery: malformed syntax yields partial or empty
// matches, never an error.
package imports

import "github.com/pathlab/coderunner/platform"

// Detect returns the deduplicated set of external package identifiers
// referenced by code, in first-seen order. Host built-ins and standard
// library modules are excluded, as are relative and absolute path
// specifiers. Pure and deterministic; an unknown language yields nil.
func Detect(code string, lang platform.Language) []string {
	switch lang {
	case platform.JavaScript:
		return detectJavaScript(code)
	case platform.Python:
		return detectPython(code)
	default:
		return nil
	}
}

// collector deduplicates identifiers while preserving first-seen order.
type collector struct {
	seen  map[string]struct{}
	names []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(name string) {
	if name == "" {
		return
	}
	if _, ok := c.seen[name]; ok {
		return
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
}

func (c *collector) result() []string {
	if c.names == nil {
		return []string{}
	}
	return c.names
}

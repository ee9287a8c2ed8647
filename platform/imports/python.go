package imports

import (
	"regexp"
	"strings"
)

// The two recognized statement forms. "import a, b as c" captures the whole
// clause for splitting; "from a.b import x" captures the dotted module path.
var (
	pyImportRe = regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z_][\w.]*(?:\s+as\s+[\w]+)?(?:\s*,\s*[A-Za-z_][\w.]*(?:\s+as\s+[\w]+)?)*)`)
	pyFromRe   = regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z_][\w.]*)\s+import\b`)
)

// pyStdlib lists standard-library modules the runtime always provides.
var pyStdlib = map[string]struct{}{
	"abc":         {},
	"argparse":    {},
	"array":       {},
	"ast":         {},
	"asyncio":     {},
	"base64":      {},
	"bisect":      {},
	"calendar":    {},
	"cmath":       {},
	"collections": {},
	"copy":        {},
	"csv":         {},
	"dataclasses": {},
	"datetime":    {},
	"decimal":     {},
	"enum":        {},
	"fractions":   {},
	"functools":   {},
	"hashlib":     {},
	"heapq":       {},
	"html":        {},
	"io":          {},
	"itertools":   {},
	"json":        {},
	"logging":     {},
	"math":        {},
	"operator":    {},
	"os":          {},
	"pathlib":     {},
	"pickle":      {},
	"queue":       {},
	"random":      {},
	"re":          {},
	"secrets":     {},
	"shutil":      {},
	"socket":      {},
	"sqlite3":     {},
	"statistics":  {},
	"string":      {},
	"struct":      {},
	"sys":         {},
	"textwrap":    {},
	"threading":   {},
	"time":        {},
	"traceback":   {},
	"typing":      {},
	"unittest":    {},
	"urllib":      {},
	"uuid":        {},
	"warnings":    {},
	"xml":         {},
	"zlib":        {},
}

func detectPython(code string) []string {
	c := newCollector()

	for _, match := range pyImportRe.FindAllStringSubmatch(code, -1) {
		for _, clause := range strings.Split(match[1], ",") {
			c.add(reducePyModule(clause))
		}
	}
	for _, match := range pyFromRe.FindAllStringSubmatch(code, -1) {
		c.add(reducePyModule(match[1]))
	}

	return c.result()
}

// reducePyModule strips an "as" alias and keeps only the root module
// segment before the first dot. Standard-library modules reduce to "".
func reducePyModule(clause string) string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return ""
	}
	if idx := strings.Index(clause, " as "); idx >= 0 {
		clause = clause[:idx]
	}
	clause = strings.TrimSpace(clause)

	root, _, _ := strings.Cut(clause, ".")
	if root == "" {
		return ""
	}
	if _, stdlib := pyStdlib[root]; stdlib {
		return ""
	}
	return root
}

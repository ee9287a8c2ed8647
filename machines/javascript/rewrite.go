package javascript

import (
	"regexp"
	"strings"
)

// The isolated scope has no module system, so each import syntax recognized
// by the parser is mechanically rewritten to an equivalent call against the
// package lookup function before execution. Order matters: the combined
// default+named form must be rewritten before the named-only and
// default-only forms, and require() last so it never touches the calls the
// earlier rewrites insert.
var (
	rewriteNamespaceRe    = regexp.MustCompile(`import\s*\*\s*as\s+([\w$]+)\s+from\s*['"]([^'"]+)['"]\s*;?`)
	rewriteDefaultNamedRe = regexp.MustCompile(`import\s+([\w$]+)\s*,\s*\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]\s*;?`)
	rewriteNamedRe        = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]\s*;?`)
	rewriteDefaultRe      = regexp.MustCompile(`import\s+([\w$]+)\s+from\s*['"]([^'"]+)['"]\s*;?`)
	rewriteDynamicRe      = regexp.MustCompile(`import\s*\(\s*(['"][^'"]+['"])\s*\)`)
	rewriteRequireRe      = regexp.MustCompile(`\brequire\s*\(\s*(['"][^'"]+['"])\s*\)`)
)

func rewriteImports(code string) string {
	code = rewriteNamespaceRe.ReplaceAllString(code,
		`const $1 = `+lookupFnName+`("$2");`)

	code = rewriteDefaultNamedRe.ReplaceAllStringFunc(code, func(match string) string {
		parts := rewriteDefaultNamedRe.FindStringSubmatch(match)
		return `const ` + parts[1] + ` = ` + lookupFnName + `("` + parts[3] + `"); ` +
			`const {` + rewriteNamedBindings(parts[2]) + `} = ` + lookupFnName + `("` + parts[3] + `");`
	})

	code = rewriteNamedRe.ReplaceAllStringFunc(code, func(match string) string {
		parts := rewriteNamedRe.FindStringSubmatch(match)
		return `const {` + rewriteNamedBindings(parts[1]) + `} = ` + lookupFnName + `("` + parts[2] + `");`
	})

	code = rewriteDefaultRe.ReplaceAllString(code,
		`const $1 = `+lookupFnName+`("$2");`)

	code = rewriteDynamicRe.ReplaceAllString(code,
		`Promise.resolve(`+lookupFnName+`($1))`)

	code = rewriteRequireRe.ReplaceAllString(code,
		lookupFnName+`($1)`)

	return code
}

// rewriteNamedBindings converts ES import bindings to destructuring
// bindings: "chunk, zip as zipper" becomes "chunk, zip: zipper".
func rewriteNamedBindings(spec string) string {
	parts := strings.Split(spec, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, strings.Replace(part, " as ", ": ", 1))
	}
	return strings.Join(out, ", ")
}

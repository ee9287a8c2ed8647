package imports

import (
	"regexp"
	"strings"
)

// The four recognized import syntaxes. Each regex captures the quoted
// module specifier.
var (
	// import X from 'mod'; import {a, b} from 'mod'; import X, {a} from 'mod'
	jsStaticImportRe = regexp.MustCompile(
		`import\s+(?:[\w$]+\s*,\s*\{[^}]*\}|\{[^}]*\}|[\w$]+)\s*from\s*['"]([^'"]+)['"]`)

	// import * as X from 'mod'
	jsNamespaceImportRe = regexp.MustCompile(
		`import\s*\*\s*as\s+[\w$]+\s+from\s*['"]([^'"]+)['"]`)

	// import('mod')
	jsDynamicImportRe = regexp.MustCompile(
		`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)

	// require('mod')
	jsRequireRe = regexp.MustCompile(
		`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

var jsImportRes = []*regexp.Regexp{
	jsStaticImportRe,
	jsNamespaceImportRe,
	jsDynamicImportRe,
	jsRequireRe,
}

// jsBuiltins lists host-provided modules that must never be reported as
// external packages, including the node compatibility set commonly typed in
// pedagogical snippets.
var jsBuiltins = map[string]struct{}{
	"assert":         {},
	"buffer":         {},
	"child_process":  {},
	"cluster":        {},
	"console":        {},
	"crypto":         {},
	"dns":            {},
	"events":         {},
	"fs":             {},
	"http":           {},
	"https":          {},
	"net":            {},
	"os":             {},
	"path":           {},
	"perf_hooks":     {},
	"process":        {},
	"querystring":    {},
	"readline":       {},
	"repl":           {},
	"stream":         {},
	"string_decoder": {},
	"timers":         {},
	"tls":            {},
	"tty":            {},
	"url":            {},
	"util":           {},
	"vm":             {},
	"worker_threads": {},
	"zlib":           {},
}

func detectJavaScript(code string) []string {
	c := newCollector()
	for _, re := range jsImportRes {
		for _, match := range re.FindAllStringSubmatch(code, -1) {
			c.add(reduceJSSpecifier(match[1]))
		}
	}
	return c.result()
}

// reduceJSSpecifier reduces a module specifier to its package identifier:
// scoped specifiers keep their first two path segments, unscoped ones keep
// only the first, so a deep submodule import still resolves to its
// top-level package. Path specifiers and built-ins reduce to "".
func reduceJSSpecifier(spec string) string {
	if spec == "" {
		return ""
	}
	// Relative and absolute specifiers are local files, not packages.
	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return ""
	}

	spec = strings.TrimPrefix(spec, "node:")

	segments := strings.Split(spec, "/")
	var name string
	if strings.HasPrefix(spec, "@") {
		if len(segments) < 2 {
			return ""
		}
		name = segments[0] + "/" + segments[1]
	} else {
		name = segments[0]
	}

	if _, builtin := jsBuiltins[name]; builtin {
		return ""
	}
	return name
}

// Package catalog holds the static, language-scoped package registries: the
// set of loadable packages, how each one is loaded, and the alias map from
// import-time identifiers to canonical package names. Catalogs are built
// once and never mutated at runtime.
package catalog

import (
	"sort"
	"strings"

	"github.com/pathlab/coderunner/platform"
)

// LoadMethod describes how a catalog entry is materialized in the sandbox.
type LoadMethod string

const (
	// CDNScript entries are fetched from a fixed, versioned CDN URL and
	// expose themselves under a global binding named in the entry.
	CDNScript LoadMethod = "cdn-script"

	// RuntimeBuiltin entries ship with the WASM engine image and only need
	// a bulk availability probe.
	RuntimeBuiltin LoadMethod = "runtime-builtin"

	// FallbackInstaller entries are installed individually through the
	// runtime's package installer.
	FallbackInstaller LoadMethod = "fallback-installer"
)

// Entry is one registry record.
type Entry struct {
	// CanonicalName is the distributable package name (npm or PyPI).
	CanonicalName string

	// Method selects the load path.
	Method LoadMethod

	// Locator is the CDN URL for CDNScript entries and the registry package
	// name for FallbackInstaller entries. Empty for builtins.
	Locator string

	// Binding is the global identifier a CDNScript artifact installs under.
	// These differ per package: lodash binds "_", ramda binds "R".
	Binding string
}

// Catalog is an immutable registry for one language.
type Catalog struct {
	language platform.Language
	entries  map[string]Entry
	aliases  map[string]string
}

// New builds a catalog from entries and an alias map. The alias map sends
// import-time identifiers to canonical names (e.g. "bs4" to
// "beautifulsoup4"); lookups consult it before the entry table.
func New(lang platform.Language, entries []Entry, aliases map[string]string) *Catalog {
	table := make(map[string]Entry, len(entries))
	for _, e := range entries {
		table[e.CanonicalName] = e
	}
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Catalog{
		language: lang,
		entries:  table,
		aliases:  aliases,
	}
}

// Language returns the language this catalog serves.
func (c *Catalog) Language() platform.Language {
	return c.language
}

// Resolve maps an identifier through the alias table to its canonical name.
// Identifiers without an alias resolve to themselves.
func (c *Catalog) Resolve(name string) string {
	if canonical, ok := c.aliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup resolves the identifier (alias-aware, then case-insensitive) and
// returns its entry.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	canonical := c.Resolve(name)
	if e, ok := c.entries[canonical]; ok {
		return e, true
	}
	if e, ok := c.entries[strings.ToLower(canonical)]; ok {
		return e, true
	}
	return Entry{}, false
}

// Supported partitions identifiers into a requested-identifier-to-entry
// mapping and a list of unsupported names. Unsupported identifiers are not
// an error: the caller reports them as skipped and the run proceeds.
func (c *Catalog) Supported(names []string) (map[string]Entry, []string) {
	supported := make(map[string]Entry, len(names))
	var unsupported []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if e, ok := c.Lookup(name); ok {
			supported[name] = e
		} else {
			unsupported = append(unsupported, name)
		}
	}
	return supported, unsupported
}

// ImportName returns the identifier a snippet would import for the
// canonical package name: the alphabetically first alias pointing at it, or
// the canonical name itself when no alias exists. Used where a canonical
// name (e.g. "scikit-learn") is not itself a valid import identifier.
func (c *Catalog) ImportName(canonical string) string {
	best := ""
	for alias, target := range c.aliases {
		if target != canonical {
			continue
		}
		if best == "" || alias < best {
			best = alias
		}
	}
	if best != "" {
		return best
	}
	return canonical
}

// Names returns the sorted canonical names in the catalog.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

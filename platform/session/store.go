// Package session holds the per-session loaded-package tracking shared by
// the machines. The store is the sole source of truth for "already
// satisfied, skip loading": entries are added as packages load successfully
// and are only removed when a language's runtime is re-initialized.
package session

import (
	"sort"
	"sync"

	"github.com/pathlab/coderunner/platform"
)

// Store tracks which packages have been loaded per language. It is owned by
// the orchestrator and injected into the machines rather than living as
// module-level state, so independent sessions never share loading history.
type Store struct {
	mu     sync.RWMutex
	loaded map[platform.Language]map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		loaded: make(map[platform.Language]map[string]struct{}),
	}
}

// MarkLoaded records the given names as loaded for the language. Callers
// record every spelling that should short-circuit future loads (requested
// identifier, canonical name, lowercase form).
func (s *Store) MarkLoaded(lang platform.Language, names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.loaded[lang]
	if !ok {
		set = make(map[string]struct{}, len(names))
		s.loaded[lang] = set
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
}

// IsLoaded reports whether the name was previously marked loaded.
func (s *Store) IsLoaded(lang platform.Language, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.loaded[lang][name]
	return ok
}

// Loaded returns a sorted snapshot of the loaded names for the language.
func (s *Store) Loaded(lang platform.Language) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.loaded[lang]))
	for name := range s.loaded[lang] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the loaded set for one language. Called when that language's
// runtime is re-initialized: a fresh engine instance starts with nothing
// marked loaded.
func (s *Store) Reset(lang platform.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.loaded, lang)
}

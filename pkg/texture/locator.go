// Package texture finds texture files referenced by a scene and inspects them.
package texture

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/rawscene/pkg/encoding"
)

// Locator maps native texture references to files on the local filesystem.
// Results are cached by the native texture ID together with the candidate
// names, so textures without an ID never share an entry.
type Locator struct {
	searchPaths []string
	cache       map[cacheKey]string
	log         *zap.Logger
}

type cacheKey struct {
	id   uint64
	refs string
}

func newCacheKey(id uint64, candidates []string) cacheKey {
	refs := make([]string, len(candidates))
	for i, c := range candidates {
		refs[i] = encoding.PathKey(c)
	}
	return cacheKey{id: id, refs: strings.Join(refs, "\x00")}
}

// NewLocator creates a locator that also looks in each of searchPaths.
func NewLocator(log *zap.Logger, searchPaths ...string) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{
		searchPaths: searchPaths,
		cache:       make(map[cacheKey]string),
		log:         log,
	}
}

// AddSearchPath appends a directory to the search list.
func (l *Locator) AddSearchPath(dir string) {
	l.searchPaths = append(l.searchPaths, dir)
}

// Locate returns the first existing file among candidates. Each candidate is
// tried as written, then by base name in every search path; the last step
// matches file names case-insensitively. An empty result means not found.
func (l *Locator) Locate(id uint64, candidates ...string) (string, bool) {
	key := newCacheKey(id, candidates)
	if p, ok := l.cache[key]; ok {
		return p, p != ""
	}

	found := l.search(candidates)
	l.cache[key] = found
	if found == "" {
		l.log.Debug("texture not found", zap.Uint64("id", id), zap.Strings("candidates", candidates))
	}
	return found, found != ""
}

func (l *Locator) search(candidates []string) string {
	var names []string
	for _, c := range candidates {
		c = encoding.NormalizePath(c)
		if c == "" || c == "." {
			continue
		}
		local := filepath.FromSlash(c)
		if isFile(local) {
			return local
		}
		names = append(names, path.Base(c))
	}

	for _, dir := range l.searchPaths {
		for _, name := range names {
			if p := filepath.Join(dir, name); isFile(p) {
				return p
			}
		}
	}
	for _, dir := range l.searchPaths {
		for _, name := range names {
			if p := findFold(dir, name); p != "" {
				return p
			}
		}
	}
	return ""
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// findFold looks for name in dir ignoring case.
func findFold(dir, name string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

package templates

import "sync"

// Templates are parsed once per distinct string and cached, so the caller
// side of a log call pays the parse cost only on first use. The cache is
// bounded; when full it is reset rather than evicted entry by entry, which
// is cheap and good enough for the realistic case of a fixed template set.
const maxCacheSize = 4096

var cache = struct {
	sync.RWMutex
	m map[string]*cacheEntry
}{m: make(map[string]*cacheEntry)}

type cacheEntry struct {
	tmpl *Template
	err  error
}

// ParseCached parses raw, consulting the process-wide template cache.
// Parse errors are cached too: a malformed template logged in a loop
// should not re-parse on every call.
func ParseCached(raw string) (*Template, error) {
	cache.RLock()
	e, ok := cache.m[raw]
	cache.RUnlock()
	if ok {
		return e.tmpl, e.err
	}

	tmpl, err := Parse(raw)

	cache.Lock()
	if len(cache.m) >= maxCacheSize {
		cache.m = make(map[string]*cacheEntry)
	}
	cache.m[raw] = &cacheEntry{tmpl: tmpl, err: err}
	cache.Unlock()
	return tmpl, err
}

// ResetCache clears the template cache. Intended for tests.
func ResetCache() {
	cache.Lock()
	cache.m = make(map[string]*cacheEntry)
	cache.Unlock()
}

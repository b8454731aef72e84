package tabsync

import (
	"net/url"
	"sync"
)

// Params reads and replaces query parameters of an address.
type Params interface {
	Get(key string) string
	Replace(key, value string)
}

// Location is the server-side copy of a page's address bar. Replace swaps
// the current entry; there is no history.
type Location struct {
	mu     sync.RWMutex
	path   string
	values url.Values
	writes int
}

// NewLocation seeds a location with the path and query the page was loaded with.
func NewLocation(path string, query url.Values) *Location {
	values := url.Values{}
	for k, v := range query {
		values[k] = append([]string(nil), v...)
	}
	return &Location{path: path, values: values}
}

func (l *Location) Get(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.values.Get(key)
}

func (l *Location) Replace(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values.Set(key, value)
	l.writes++
}

// URL renders the location as path?query.
func (l *Location) URL() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.values) == 0 {
		return l.path
	}
	return l.path + "?" + l.values.Encode()
}

// Writes counts calls to Replace.
func (l *Location) Writes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.writes
}

package midware

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/codegangsta/negroni"
)

// ResponseCodes counts response codes per request path.
type ResponseCodes struct {
	m      sync.Mutex
	counts map[string]map[string]int
}

// NewResponseCodes returns an empty ResponseCodes negroni.Handler.
func NewResponseCodes() *ResponseCodes {
	return &ResponseCodes{
		counts: make(map[string]map[string]int),
	}
}

// ServeHTTP implements negroni.Handler
func (s *ResponseCodes) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	next(w, r)

	nw, ok := w.(negroni.ResponseWriter)
	if !ok {
		return
	}

	s.m.Lock()
	defer s.m.Unlock()
	byCode := s.counts[r.URL.Path]
	if byCode == nil {
		byCode = make(map[string]int)
		s.counts[r.URL.Path] = byCode
	}
	byCode[strconv.Itoa(nw.Status())]++
}

// Count returns how many responses to path had the given status code.
func (s *ResponseCodes) Count(path string, code int) int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.counts[path][strconv.Itoa(code)]
}

// Snapshot returns a copy of the counts, keyed by path then status code.
func (s *ResponseCodes) Snapshot() map[string]map[string]int {
	s.m.Lock()
	defer s.m.Unlock()
	out := make(map[string]map[string]int, len(s.counts))
	for path, byCode := range s.counts {
		c := make(map[string]int, len(byCode))
		for code, n := range byCode {
			c[code] = n
		}
		out[path] = c
	}
	return out
}

// Paths returns the paths seen so far, sorted.
func (s *ResponseCodes) Paths() []string {
	s.m.Lock()
	defer s.m.Unlock()
	paths := make([]string, 0, len(s.counts))
	for path := range s.counts {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
